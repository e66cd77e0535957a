package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, StoreBackendFile, cfg.StoreBackend)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 4, cfg.BatchConcurrency)
	assert.Equal(t, 30*time.Second, cfg.InferenceTimeout)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("STORE_BACKEND", "dynamodb")
	t.Setenv("DYNAMODB_TABLE", "graphs")
	t.Setenv("ENRICHMENT_BATCH_SIZE", "10")
	t.Setenv("INFERENCE_TIMEOUT", "5s")
	t.Setenv("ENABLE_AUTH", "true")
	t.Setenv("JWT_SECRET", "sekret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ServerAddress)
	assert.Equal(t, StoreBackendDynamoDB, cfg.StoreBackend)
	assert.Equal(t, "graphs", cfg.DynamoDBTable)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.InferenceTimeout)
	assert.True(t, cfg.EnableAuth)
}

func TestLoadConfig_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BACKEND")
}

func TestLoadConfig_RejectsNonPositiveBatchSize(t *testing.T) {
	t.Setenv("ENRICHMENT_BATCH_SIZE", "-3")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidate_ProductionAuthNeedsSecret(t *testing.T) {
	cfg := &Config{
		Environment:      "production",
		StoreBackend:     StoreBackendFile,
		BatchSize:        20,
		BatchConcurrency: 4,
		EnableAuth:       true,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.JWTSecret = "sekret"
	assert.NoError(t, cfg.Validate())
}
