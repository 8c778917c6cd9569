package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"petrorag/internal/adapter/embedding"
	"petrorag/internal/adapter/httpapi"
	"petrorag/internal/adapter/llm"
	"petrorag/internal/adapter/repository"
	"petrorag/internal/adapter/reranker"
	"petrorag/internal/adapter/vectorstore"
	"petrorag/internal/infra"
	"petrorag/internal/infra/config"
	"petrorag/internal/infra/httpclient"
	"petrorag/internal/infra/logger"
	"petrorag/internal/infra/tokenizer"
	"petrorag/internal/usecase"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	// 1. Load Config
	_ = godotenv.Load()
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.NewWithOTel(cfg.OTelEnabled)
	slog.SetDefault(log)

	if cfg.GroqAPIKey == "" {
		log.Error("GROQ_API_KEY is required")
		os.Exit(1)
	}

	ctx := context.Background()

	// 3. Initialize Vector Index
	var pool *pgxpool.Pool
	if dsn := cfg.PostgresDSN(); dsn != "" {
		var err error
		pool, err = infra.NewPostgresDB(ctx, dsn)
		if err != nil {
			log.Error("failed to connect to db", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	index, err := vectorstore.New(ctx, vectorstore.Options{
		Backend:      cfg.VectorBackend,
		Collection:   cfg.Collection,
		VectorSize:   cfg.VectorSize,
		DataPath:     cfg.VectorDataPath,
		QdrantURL:    cfg.QdrantURL,
		PostgresPool: pool,
		Logger:       log,
	})
	if err != nil {
		log.Error("failed to initialize vector index", "error", err)
		os.Exit(1)
	}

	// 4. Initialize Adapters
	embedder := embedding.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel, 30, log)
	embedder.Client = httpclient.NewPooledClient(30 * time.Second)
	encoder, err := embedding.NewCachedEncoder(embedder, cfg.EmbeddingCacheSize, log)
	if err != nil {
		log.Error("failed to initialize embedding cache", "error", err)
		os.Exit(1)
	}

	rerankerClient := reranker.NewHTTPReranker(cfg.RerankerURL, cfg.RerankerModel, 60*time.Second, log,
		httpclient.NewPooledClient(60*time.Second))

	groqClient := llm.NewGroqClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.LLMModel, 90*time.Second, log)
	groqClient.Client = httpclient.NewPooledClient(90 * time.Second)

	counter, err := tokenizer.New(cfg.TokenizerModel)
	if err != nil {
		log.Error("failed to initialize tokenizer", "error", err)
		os.Exit(1)
	}

	feedbackRepo, err := repository.NewFeedbackRepository(cfg.FeedbackDBPath)
	if err != nil {
		log.Error("failed to open feedback db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = feedbackRepo.Close() }()

	// 5. Initialize Usecase
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

	// 6. Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	handler := httpapi.NewHandler(answerUsecase, index, feedbackRepo)
	handler.RegisterRoutes(e)

	// 7. Start Server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("starting server", "addr", addr, "backend", cfg.VectorBackend)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	// 8. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Fatal(err)
	}
}
