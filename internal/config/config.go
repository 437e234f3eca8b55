package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "openai" or "ollama"
	EmbeddingModel    string
	OpenAIAPIKey      string
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string
	RequestTimeoutSec int
}

type RetrievalConfig struct {
	TopK               int
	MaxContextChars    int
	MaxHistoryMessages int
	ProfileCacheTTLSec int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
			RequestTimeoutSec: getEnvAsInt("AI_REQUEST_TIMEOUT_SEC", 60),
		},
		Retrieval: RetrievalConfig{
			TopK:               getEnvAsInt("RETRIEVAL_TOP_K", 10),
			MaxContextChars:    getEnvAsInt("RETRIEVAL_MAX_CONTEXT_CHARS", 8000),
			MaxHistoryMessages: getEnvAsInt("RETRIEVAL_MAX_HISTORY_MESSAGES", 10),
			ProfileCacheTTLSec: getEnvAsInt("PROFILE_CACHE_TTL_SEC", 300),
		},
	}
}

// Validate rejects values the retrieval pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.MaxContextChars <= 0 {
		return fmt.Errorf("RETRIEVAL_MAX_CONTEXT_CHARS must be positive, got %d", c.Retrieval.MaxContextChars)
	}
	if c.Retrieval.MaxHistoryMessages < 0 {
		return fmt.Errorf("RETRIEVAL_MAX_HISTORY_MESSAGES must not be negative, got %d", c.Retrieval.MaxHistoryMessages)
	}
	if c.Ai.RequestTimeoutSec <= 0 {
		return fmt.Errorf("AI_REQUEST_TIMEOUT_SEC must be positive, got %d", c.Ai.RequestTimeoutSec)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
