package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"petrorag/internal/domain"
	"petrorag/internal/usecase/retrieval"
)

const (
	// DefaultTopK is the total candidate budget shared across expanded queries.
	DefaultTopK = 30
	// DefaultMaxContextTokens caps the raw chunk text packed into the prompt.
	DefaultMaxContextTokens = 4000
)

// noDataMessage is returned verbatim when retrieval yields nothing; the
// reranker and the LLM are never consulted in that case.
const noDataMessage = "❌ No relevant information found in the database for your query."

const systemPersona = `You are a petroleum engineering data assistant.
Provide accurate, specific answers based strictly on the data provided.
When referencing production values, always include units (barrels, Mscf, etc.).
When data is incomplete or missing, clearly state what's missing.
Format numbers with appropriate precision (2-4 decimal places).
Use markdown tables when presenting multiple data points.`

// AnswerQuestionUsecase runs the full question answering pipeline. Execute
// never returns an error: every failure mode is folded into the answer string.
type AnswerQuestionUsecase interface {
	Execute(ctx context.Context, question string, debug bool) string
}

type answerQuestionUsecase struct {
	encoder          domain.VectorEncoder
	index            domain.VectorIndex
	reranker         domain.Reranker
	llm              domain.LLMClient
	tokens           domain.TokenCounter
	promptBuilder    PromptBuilder
	topK             int
	maxContextTokens int
	logger           *slog.Logger
}

// NewAnswerQuestionUsecase wires together the components of the answer
// pipeline. Non-positive topK and maxContextTokens fall back to the defaults.
func NewAnswerQuestionUsecase(
	encoder domain.VectorEncoder,
	index domain.VectorIndex,
	reranker domain.Reranker,
	llm domain.LLMClient,
	tokens domain.TokenCounter,
	promptBuilder PromptBuilder,
	topK, maxContextTokens int,
	logger *slog.Logger,
) AnswerQuestionUsecase {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if maxContextTokens <= 0 {
		maxContextTokens = DefaultMaxContextTokens
	}
	return &answerQuestionUsecase{
		encoder:          encoder,
		index:            index,
		reranker:         reranker,
		llm:              llm,
		tokens:           tokens,
		promptBuilder:    promptBuilder,
		topK:             topK,
		maxContextTokens: maxContextTokens,
		logger:           logger,
	}
}

func (u *answerQuestionUsecase) Execute(ctx context.Context, question string, debug bool) string {
	answer, err := u.answer(ctx, question, debug)
	if err != nil {
		u.logger.Error("query_processing_failed",
			slog.String("question", question),
			slog.String("error", err.Error()))
		return fmt.Sprintf("⚠️ Error processing query: %v", err)
	}
	return answer
}

func (u *answerQuestionUsecase) answer(ctx context.Context, question string, debug bool) (string, error) {
	queries := retrieval.ExpandQuery(question)
	u.stageLog(ctx, debug, "query_expanded",
		slog.Int("query_count", len(queries)),
		slog.Any("queries", queries))

	candidates, err := retrieval.MultiQueryRetrieve(ctx, queries, u.encoder, u.index, u.topK, u.logger)
	if err != nil {
		return "", err
	}

	unique := retrieval.Dedupe(candidates)
	u.stageLog(ctx, debug, "candidates_deduplicated",
		slog.Int("retrieved", len(candidates)),
		slog.Int("unique", len(unique)))
	if len(unique) == 0 {
		return noDataMessage, nil
	}

	ranked, err := retrieval.Rerank(ctx, question, unique, u.reranker)
	if err != nil {
		return "", err
	}
	u.stageLog(ctx, debug, "candidates_reranked",
		slog.Float64("top_score", float64(ranked[0].Score)))

	selected, tokenCount := retrieval.BudgetContext(ranked, u.tokens, u.maxContextTokens)
	u.stageLog(ctx, debug, "context_budgeted",
		slog.Int("chunks", len(selected)),
		slog.Int("tokens", tokenCount))

	promptChunks := make([]PromptChunk, len(selected))
	for i, chunk := range selected {
		promptChunks[i] = PromptChunk{Document: chunk.Document, Metadata: chunk.Metadata}
	}
	prompt := u.promptBuilder.Build(question, promptChunks)

	return u.synthesize(ctx, prompt), nil
}

// synthesize calls the LLM and folds any failure into the answer itself so a
// working retrieval is never thrown away over a generation hiccup.
func (u *answerQuestionUsecase) synthesize(ctx context.Context, prompt string) string {
	resp, err := u.llm.Complete(ctx, systemPersona, prompt, domain.SamplingParams{
		Temperature: 0.3,
		TopP:        0.9,
		MaxTokens:   1024,
	})
	if err != nil {
		u.logger.Error("llm_completion_failed", slog.String("error", err.Error()))
		return fmt.Sprintf("⚠️ Error generating response: %v", err)
	}
	if resp == nil || resp.Text == "" {
		return "⚠️ Error generating response: empty response from model"
	}
	return resp.Text
}

// stageLog records pipeline progress at debug level, elevated to info when
// the caller asked for debug output.
func (u *answerQuestionUsecase) stageLog(ctx context.Context, debug bool, msg string, attrs ...slog.Attr) {
	level := slog.LevelDebug
	if debug {
		level = slog.LevelInfo
	}
	u.logger.LogAttrs(ctx, level, msg, attrs...)
}
