package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env  string
	Port string

	// Vector index.
	VectorBackend  string
	VectorDataPath string
	QdrantURL      string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	Collection     string
	VectorSize     int

	// Embedding.
	OllamaURL          string
	EmbeddingModel     string
	EmbeddingCacheSize int

	// Reranking.
	RerankerURL   string
	RerankerModel string

	// Generation.
	GroqBaseURL string
	GroqAPIKey  string
	LLMModel    string

	// Context budgeting.
	TokenizerModel   string
	TopK             int
	MaxContextTokens int

	FeedbackDBPath string
	OTelEnabled    bool
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),

		VectorBackend:  getEnv("VECTOR_BACKEND", "auto"),
		VectorDataPath: getEnv("VECTOR_DATA_PATH", "./data/chunks"),
		QdrantURL:      getEnv("QDRANT_URL", ""),
		DBHost:         getEnv("DB_HOST", ""),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "petrorag_user"),
		DBPassword:     getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", ""),
		DBName:         getEnv("DB_NAME", "petrorag_db"),
		Collection:     getEnv("COLLECTION_NAME", "rada_chatbot_data"),
		VectorSize:     getEnvInt("VECTOR_SIZE", 384),

		OllamaURL:          getEnv("OLLAMA_URL", "http://localhost:11434"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "all-minilm"),
		EmbeddingCacheSize: getEnvInt("EMBEDDING_CACHE_SIZE", 1024),

		RerankerURL:   getEnv("RERANKER_URL", "http://localhost:8001"),
		RerankerModel: getEnv("RERANKER_MODEL", "cross-encoder/ms-marco-MiniLM-L-6-v2"),

		GroqBaseURL: getEnv("GROQ_BASE_URL", ""),
		GroqAPIKey:  getSecret("GROQ_API_KEY", "GROQ_API_KEY_FILE", ""),
		LLMModel:    getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),

		TokenizerModel:   getEnv("TOKENIZER_MODEL", "gpt-3.5-turbo"),
		TopK:             getEnvInt("RETRIEVAL_TOP_K", 30),
		MaxContextTokens: getEnvInt("MAX_CONTEXT_TOKENS", 4000),

		FeedbackDBPath: getEnv("FEEDBACK_DB_PATH", "./data/feedback.db"),
		OTelEnabled:    getEnvBool("OTEL_ENABLED", false),
	}
}

// PostgresDSN assembles the pgvector connection string. Empty when the
// postgres backend is not configured.
func (c *Config) PostgresDSN() string {
	if c.DBHost == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
