package usecase

import (
	"fmt"
	"strings"

	"petrorag/internal/domain"
)

// PromptChunk transports a context chunk and the metadata annotations
// rendered ahead of it in the generation prompt.
type PromptChunk struct {
	Document string
	Metadata domain.ChunkMetadata
}

// contextSeparator divides annotated chunks inside the CONTEXT DATA block.
const contextSeparator = "\n\n---\n\n"

// PromptBuilder composes the user prompt sent to the LLM.
type PromptBuilder interface {
	Build(question string, chunks []PromptChunk) string
}

// ProductionPromptBuilder renders context chunks with bracketed metadata
// annotations followed by a fixed instruction block.
type ProductionPromptBuilder struct {
	additionalInstructions []string
}

// NewProductionPromptBuilder creates a prompt builder with optional extra
// numbered instructions appended after the standard set.
func NewProductionPromptBuilder(additionalInstructions ...string) PromptBuilder {
	return &ProductionPromptBuilder{
		additionalInstructions: additionalInstructions,
	}
}

var standardInstructions = []string{
	"Answer based ONLY on the context provided below",
	"If you find specific data, cite it with exact values and units",
	"If data is missing or incomplete, clearly state what's missing",
	"For production queries, include: well name, flowstation, values with units",
	"For date-based queries, verify the date matches what was asked",
	"If you see multiple records, analyze all of them",
	"Be precise with numbers - don't round unnecessarily",
	"Use markdown tables for multiple data points",
}

// Build renders the full user prompt: instructions, annotated context, question.
func (b *ProductionPromptBuilder) Build(question string, chunks []PromptChunk) string {
	var sb strings.Builder

	sb.WriteString("You are analyzing petroleum engineering production data from a database.\n\n")

	sb.WriteString("**IMPORTANT INSTRUCTIONS:**\n")
	for i, inst := range append(standardInstructions, b.additionalInstructions...) {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, inst)
	}

	sb.WriteString("\n**CONTEXT DATA:**\n")
	sb.WriteString(b.renderContext(chunks))

	sb.WriteString("\n\n**USER QUESTION:**\n")
	sb.WriteString(question)

	sb.WriteString("\n\n**YOUR ANSWER:**")

	return sb.String()
}

func (b *ProductionPromptBuilder) renderContext(chunks []PromptChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if prefix := annotate(chunk.Metadata); prefix != "" {
			parts = append(parts, prefix+"\n"+chunk.Document)
		} else {
			parts = append(parts, chunk.Document)
		}
	}
	return strings.Join(parts, contextSeparator)
}

// annotate renders the bracketed metadata summary for a chunk. Absent fields
// are omitted rather than padded with placeholders.
func annotate(meta domain.ChunkMetadata) string {
	var tags []string
	if meta.Collection != "" {
		tags = append(tags, fmt.Sprintf("[Collection: %s]", meta.Collection))
	}
	if meta.Asset != "" {
		tags = append(tags, fmt.Sprintf("[Asset: %s]", meta.Asset))
	}
	if meta.FlowStation != "" {
		tags = append(tags, fmt.Sprintf("[Flowstation: %s]", meta.FlowStation))
	}
	if meta.ProductionDate != "" {
		tags = append(tags, fmt.Sprintf("[Date: %s]", meta.ProductionDate))
	}
	return strings.Join(tags, " ")
}
