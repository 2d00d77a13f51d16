package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Retrieval modes selectable via RETRIEVAL_MODE.
const (
	ModeEmbedding = "embedding"
	ModeLexical   = "lexical"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	GigaChat  GigaChatConfig
	Retrieval RetrievalConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	EmbeddingModel     string
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
}

type RetrievalConfig struct {
	Mode        string  // embedding or lexical
	CatalogPath string  // knowledge catalog JSON file
	MinScore    float64 // accept threshold, per-request overridable
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env is fine, environment variables may be set directly (Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	llmTimeout, _ := strconv.Atoi(getEnv("GIGACHAT_TIMEOUT", "30"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	mode := getEnv("RETRIEVAL_MODE", ModeEmbedding)
	if mode != ModeEmbedding && mode != ModeLexical {
		return nil, fmt.Errorf("invalid RETRIEVAL_MODE %q: must be %q or %q", mode, ModeEmbedding, ModeLexical)
	}

	// The lexical scorer produces systematically lower cosine scores than the
	// embedding scorer, so the default accept threshold depends on the mode.
	defaultMinScore := "0.35"
	if mode == ModeLexical {
		defaultMinScore = "0.28"
	}
	minScore, err := strconv.ParseFloat(getEnv("RETRIEVAL_MIN_SCORE", defaultMinScore), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRIEVAL_MIN_SCORE: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "campus_companion"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			EmbeddingModel:     getEnv("GIGACHAT_EMBEDDING_MODEL", "Embeddings"),
			InsecureSkipVerify: insecureSkipVerify,
			RequestTimeout:     time.Duration(llmTimeout) * time.Second,
		},
		Retrieval: RetrievalConfig{
			Mode:        mode,
			CatalogPath: getEnv("KNOWLEDGE_CATALOG_PATH", "knowledge_base.json"),
			MinScore:    minScore,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
