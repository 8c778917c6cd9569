package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"petrorag/internal/adapter/embedding"
	"petrorag/internal/adapter/llm"
	"petrorag/internal/adapter/reranker"
	"petrorag/internal/adapter/vectorstore"
	"petrorag/internal/domain"
	"petrorag/internal/infra"
	"petrorag/internal/infra/config"
	"petrorag/internal/infra/httpclient"
	"petrorag/internal/infra/tokenizer"
	"petrorag/internal/ingest"
	"petrorag/internal/usecase"
)

var (
	version = "dev"

	// Global flags
	verbose bool

	// Ingest command flags
	inputFile   string
	batchSize   int
	concurrency int
	rps         float64

	// Export command flags
	sourceBackend string
	sourcePath    string
	sourceURL     string
	destBackend   string
	destPath      string
	destURL       string
	exportBatch   int

	// Ask command flags
	debugOutput bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "ragctl",
	Short:   "Manage the production data index and query it from the terminal",
	Version: version,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest JSONL production chunks into the vector index",
	Long: `Ingest JSONL production chunks into the vector index.

Each line is one record:
  {"document":"...", "collection":"...", "asset":"...", "flowStation":"...", "date":"YYYY-MM-DD"}

Examples:
  # Ingest from a file
  ragctl ingest --file chunks.jsonl

  # Ingest from stdin
  cat chunks.jsonl | ragctl ingest`,
	RunE: runIngest,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Copy all chunks from one vector backend to another",
	Long: `Copy all chunks, embeddings included, from one vector backend to another.

Examples:
  # Move a qdrant index into a local embedded index
  ragctl export --source qdrant --source-url http://localhost:6333 --dest embedded --dest-path ./data/chunks

  # Move pgvector data into qdrant
  ragctl export --source pgvector --dest qdrant --dest-url http://localhost:6333`,
	RunE: runExport,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question from the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	ingestCmd.Flags().StringVar(&inputFile, "file", "-", "JSONL input file, - for stdin")
	ingestCmd.Flags().IntVar(&batchSize, "batch-size", 64, "chunks per embedding batch")
	ingestCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent embedding batches")
	ingestCmd.Flags().Float64Var(&rps, "rps", 0, "embedding requests per second, 0 for unlimited")

	exportCmd.Flags().StringVar(&sourceBackend, "source", "", "source backend (embedded|qdrant|pgvector)")
	exportCmd.Flags().StringVar(&sourcePath, "source-path", "", "source data path for the embedded backend")
	exportCmd.Flags().StringVar(&sourceURL, "source-url", "", "source qdrant URL")
	exportCmd.Flags().StringVar(&destBackend, "dest", "", "destination backend (embedded|qdrant|pgvector)")
	exportCmd.Flags().StringVar(&destPath, "dest-path", "", "destination data path for the embedded backend")
	exportCmd.Flags().StringVar(&destURL, "dest-url", "", "destination qdrant URL")
	exportCmd.Flags().IntVar(&exportBatch, "batch-size", 500, "chunks per export batch")

	askCmd.Flags().BoolVar(&debugOutput, "debug", false, "log pipeline stage details")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(askCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// buildIndex creates a vector index for the given backend, falling back to
// the environment configuration where no override flag is set.
func buildIndex(ctx context.Context, cfg *config.Config, log *slog.Logger, backend, dataPath, qdrantURL string) (domain.VectorIndex, func(), error) {
	if backend == "" {
		backend = cfg.VectorBackend
	}
	if dataPath == "" {
		dataPath = cfg.VectorDataPath
	}
	if qdrantURL == "" {
		qdrantURL = cfg.QdrantURL
	}

	cleanup := func() {}
	opts := vectorstore.Options{
		Backend:    backend,
		Collection: cfg.Collection,
		VectorSize: cfg.VectorSize,
		DataPath:   dataPath,
		QdrantURL:  qdrantURL,
		Logger:     log,
	}

	if dsn := cfg.PostgresDSN(); dsn != "" && (backend == vectorstore.BackendPgvector || backend == vectorstore.BackendAuto) {
		pool, err := infra.NewPostgresDB(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to db: %w", err)
		}
		opts.PostgresPool = pool
		cleanup = pool.Close
	}

	index, err := vectorstore.New(ctx, opts)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return index, cleanup, nil
}

func newEncoder(cfg *config.Config, log *slog.Logger) (domain.VectorEncoder, error) {
	embedder := embedding.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel, 30, log)
	embedder.Client = httpclient.NewPooledClient(30 * time.Second)
	return embedding.NewCachedEncoder(embedder, cfg.EmbeddingCacheSize, log)
}

func runIngest(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	cfg := config.Load()
	log := newLogger()

	ctx, cancel := signalContext()
	defer cancel()

	index, cleanup, err := buildIndex(ctx, cfg, log, "", "", "")
	if err != nil {
		return fmt.Errorf("initialize vector index: %w", err)
	}
	defer cleanup()

	encoder, err := newEncoder(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize encoder: %w", err)
	}

	var input io.Reader = os.Stdin
	if inputFile != "" && inputFile != "-" {
		f, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	stored, err := ingest.New(encoder, index, batchSize, concurrency, rps, log).Run(ctx, input)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	fmt.Printf("Stored %d chunks\n", stored)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	cfg := config.Load()
	log := newLogger()

	if sourceBackend == "" || destBackend == "" {
		return fmt.Errorf("--source and --dest are required")
	}

	ctx, cancel := signalContext()
	defer cancel()

	source, sourceCleanup, err := buildIndex(ctx, cfg, log, sourceBackend, sourcePath, sourceURL)
	if err != nil {
		return fmt.Errorf("initialize source: %w", err)
	}
	defer sourceCleanup()

	exporter, ok := source.(domain.VectorIndexExporter)
	if !ok {
		return fmt.Errorf("backend %s does not support export", sourceBackend)
	}

	dest, destCleanup, err := buildIndex(ctx, cfg, log, destBackend, destPath, destURL)
	if err != nil {
		return fmt.Errorf("initialize destination: %w", err)
	}
	defer destCleanup()

	copied := 0
	err = exporter.Dump(ctx, exportBatch, func(batch []domain.VectorRecord) error {
		if err := dest.Upsert(ctx, batch); err != nil {
			return err
		}
		copied += len(batch)
		log.Info("batch_copied", slog.Int("total", copied))
		return nil
	})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Printf("Copied %d chunks from %s to %s\n", copied, sourceBackend, destBackend)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	cfg := config.Load()
	log := newLogger()

	if cfg.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY environment variable is required")
	}

	ctx, cancel := signalContext()
	defer cancel()

	index, cleanup, err := buildIndex(ctx, cfg, log, "", "", "")
	if err != nil {
		return fmt.Errorf("initialize vector index: %w", err)
	}
	defer cleanup()

	encoder, err := newEncoder(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize encoder: %w", err)
	}

	rerankerClient := reranker.NewHTTPReranker(cfg.RerankerURL, cfg.RerankerModel, 60*time.Second, log,
		httpclient.NewPooledClient(60*time.Second))

	groqClient := llm.NewGroqClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.LLMModel, 90*time.Second, log)
	groqClient.Client = httpclient.NewPooledClient(90 * time.Second)

	counter, err := tokenizer.New(cfg.TokenizerModel)
	if err != nil {
		return fmt.Errorf("initialize tokenizer: %w", err)
	}

	answerUsecase := usecase.NewAnswerQuestionUsecase(
		encoder,
		index,
		rerankerClient,
		groqClient,
		counter,
		usecase.NewProductionPromptBuilder(),
		cfg.TopK,
		cfg.MaxContextTokens,
		log,
	)

	question := strings.Join(args, " ")
	fmt.Println(answerUsecase.Execute(ctx, question, debugOutput))
	return nil
}
