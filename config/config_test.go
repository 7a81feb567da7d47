package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.ServerAddr)
	assert.Equal(t, "postgres", cfg.VectorBackend)
	assert.Equal(t, "company_documents", cfg.CollectionName)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 768, cfg.Embedding.Dimension)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("VECTOR_BACKEND", "memory")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("CHUNK_OVERLAP", "50")
	t.Setenv("TOP_K_RESULTS", "3")
	t.Setenv("COMPANY_NAME", "Acme Corp")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.VectorBackend)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.ChunkOverlap)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, "Acme Corp", cfg.CompanyName)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Run("overlap at chunk size", func(t *testing.T) {
		t.Setenv("CHUNK_SIZE", "100")
		t.Setenv("CHUNK_OVERLAP", "100")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CHUNK_OVERLAP")
	})

	t.Run("negative overlap", func(t *testing.T) {
		t.Setenv("CHUNK_OVERLAP", "-1")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("zero topK", func(t *testing.T) {
		t.Setenv("TOP_K_RESULTS", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("VECTOR_BACKEND", "redis")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestPostgresConnString(t *testing.T) {
	pg := PostgresConfig{Host: "db", Port: 5433, User: "u", Pass: "p", DBName: "rag"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=rag sslmode=disable", pg.ConnString())
}
