// Package config gathers all environment configuration into a single
// startup phase so the rest of the process never touches os.Getenv.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type PostgresConfig struct {
	Host   string
	Port   int
	User   string
	Pass   string
	DBName string
}

func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Pass, c.DBName)
}

type EmbeddingConfig struct {
	URL       string
	Model     string
	Dimension int
}

type LLMConfig struct {
	URL   string
	Model string
}

type Config struct {
	ServerAddr string

	// VectorBackend selects the index implementation: "postgres" or "memory".
	VectorBackend  string
	CollectionName string
	Postgres       PostgresConfig

	UploadDir    string
	ConverterURL string

	Embedding EmbeddingConfig
	LLM       LLMConfig

	ChunkSize    int
	ChunkOverlap int
	TopK         int

	// CompanyName is interpolated into the answer prompt and its fixed
	// fallback replies.
	CompanyName string
}

// Load reads the full configuration from the environment, applying
// defaults that mirror a local single-node setup. It fails fast on
// values that would break chunking invariants.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8000"),
		VectorBackend:  getEnv("VECTOR_BACKEND", "postgres"),
		CollectionName: getEnv("COLLECTION_NAME", "company_documents"),
		Postgres: PostgresConfig{
			Host:   getEnv("PG_HOST", "localhost"),
			Port:   getEnvInt("PG_PORT", 5432),
			User:   getEnv("PG_USER", "postgres"),
			Pass:   getEnv("PG_PASS", "postgres"),
			DBName: getEnv("PG_DB_NAME", "rag"),
		},
		UploadDir:    getEnv("UPLOAD_DIR", "./documents"),
		ConverterURL: getEnv("CONVERTER_URL", "http://localhost:5001/v1/convert/file"),
		Embedding: EmbeddingConfig{
			URL:       getEnv("OLLAMA_EMBEDDING_URL", "http://localhost:11434"),
			Model:     getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			Dimension: getEnvInt("EMBEDDING_DIMENSION", 768),
		},
		LLM: LLMConfig{
			URL:   getEnv("LLM_URL", "http://localhost:11434"),
			Model: getEnv("LLM_MODEL", "llama3.1"),
		},
		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		TopK:         getEnvInt("TOP_K_RESULTS", 5),
		CompanyName:  getEnv("COMPANY_NAME", "the company"),
	}

	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", cfg.ChunkOverlap)
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("TOP_K_RESULTS must be positive, got %d", cfg.TopK)
	}
	if cfg.VectorBackend != "postgres" && cfg.VectorBackend != "memory" {
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q", cfg.VectorBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
