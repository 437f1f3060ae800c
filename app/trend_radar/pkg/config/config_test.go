package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
llm:
  provider: openai
  base_url: https://api.example.com/v1
  api_key: from-file
  model: gpt-4o
concurrency:
  qps: 2
  rpm: 30
db:
  driver: postgres
  host: localhost
  port: 5432
  user: radar
  name: trends
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("TREND_RADAR_LLM_API_KEY", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.True(t, cfg.LLM.Enabled())
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, 2, cfg.Concurrency.QPS)
	assert.Equal(t, 2, cfg.Concurrency.Workers, "unset fields keep defaults")
	assert.Equal(t, 50, cfg.Extraction.MinImageSize)
	assert.Equal(t, 60*time.Second, cfg.LLM.TimeoutDuration())
	assert.Equal(t, "host=localhost port=5432 user=radar password= dbname=trends sslmode=disable", cfg.DB.DSN())
}

func TestDBConfig_SourceOverridesFields(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, Source: "postgres://radar@db/trends?sslmode=disable"}
	assert.Equal(t, "postgres://radar@db/trends?sslmode=disable", c.DSN())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault_NoLLM(t *testing.T) {
	assert.False(t, Default().LLM.Enabled())
}
