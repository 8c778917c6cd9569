package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"petrorag/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Record is one JSONL line of the ingestion input. Metadata keys accept the
// same spelling variants the retrieval side understands.
type Record struct {
	ID             string `json:"id,omitempty"`
	Document       string `json:"document"`
	Collection     string `json:"collection,omitempty"`
	Asset          string `json:"asset,omitempty"`
	FlowStation    string `json:"flowStation,omitempty"`
	Flowstation    string `json:"flowstation,omitempty"`
	Date           string `json:"date,omitempty"`
	ProductionDate string `json:"productionDate,omitempty"`
}

func (r Record) metadata() domain.ChunkMetadata {
	raw := map[string]string{}
	if r.Collection != "" {
		raw[domain.MetaKeyCollection] = r.Collection
	}
	if r.Asset != "" {
		raw[domain.MetaKeyAsset] = r.Asset
	}
	if r.FlowStation != "" {
		raw[domain.MetaKeyFlowStation] = r.FlowStation
	}
	if r.Flowstation != "" {
		raw[domain.MetaKeyFlowStationAlt] = r.Flowstation
	}
	if r.Date != "" {
		raw[domain.MetaKeyDate] = r.Date
	}
	if r.ProductionDate != "" {
		raw[domain.MetaKeyProductionDate] = r.ProductionDate
	}
	return domain.MetadataFromStrings(raw)
}

// Ingestor streams JSONL records into the vector index, embedding them in
// batches. Embedding calls run concurrently but are rate limited to protect
// the embedding service.
type Ingestor struct {
	encoder     domain.VectorEncoder
	index       domain.VectorIndex
	batchSize   int
	concurrency int
	limiter     *rate.Limiter
	logger      *slog.Logger
}

func New(encoder domain.VectorEncoder, index domain.VectorIndex, batchSize, concurrency int, requestsPerSecond float64, logger *slog.Logger) *Ingestor {
	if batchSize <= 0 {
		batchSize = 64
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Ingestor{
		encoder:     encoder,
		index:       index,
		batchSize:   batchSize,
		concurrency: concurrency,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger,
	}
}

// Run reads JSONL from r until EOF and returns the number of chunks stored.
// A malformed line aborts the run with its line number.
func (i *Ingestor) Run(ctx context.Context, r io.Reader) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)

	var stored atomic.Int64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var batch []Record
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return int(stored.Load()), fmt.Errorf("malformed record at line %d: %w", lineNo, err)
		}
		if strings.TrimSpace(rec.Document) == "" {
			i.logger.Warn("skipping_empty_document", slog.Int("line", lineNo))
			continue
		}

		batch = append(batch, rec)
		if len(batch) >= i.batchSize {
			i.submit(ctx, g, batch, &stored)
			batch = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return int(stored.Load()), fmt.Errorf("failed to read input: %w", err)
	}
	if len(batch) > 0 {
		i.submit(ctx, g, batch, &stored)
	}

	if err := g.Wait(); err != nil {
		return int(stored.Load()), err
	}

	total := int(stored.Load())
	i.logger.Info("ingestion_completed", slog.Int("chunks", total))
	return total, nil
}

func (i *Ingestor) submit(ctx context.Context, g *errgroup.Group, batch []Record, stored *atomic.Int64) {
	g.Go(func() error {
		if err := i.limiter.Wait(ctx); err != nil {
			return err
		}

		texts := make([]string, len(batch))
		for j, rec := range batch {
			texts[j] = rec.Document
		}

		embeddings, err := i.encoder.Encode(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed batch: %w", err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("expected %d embeddings, got %d", len(batch), len(embeddings))
		}

		records := make([]domain.VectorRecord, len(batch))
		for j, rec := range batch {
			id := rec.ID
			if id == "" {
				id = uuid.NewString()
			}
			records[j] = domain.VectorRecord{
				ID:        id,
				Document:  rec.Document,
				Embedding: embeddings[j],
				Metadata:  rec.metadata(),
			}
		}

		if err := i.index.Upsert(ctx, records); err != nil {
			return fmt.Errorf("failed to store batch: %w", err)
		}

		stored.Add(int64(len(records)))
		i.logger.Debug("batch_stored", slog.Int("count", len(records)))
		return nil
	})
}
