package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
db:
  uri: "postgres://localhost/newscrawl"
  database: "newscrawl"
seeds:
  - "https://lenta.ru/"
  - "https://rbc.ru/"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "pages", cfg.DB.PagesCollection)
	require.Equal(t, "queue", cfg.DB.QueueCollection)
	require.Equal(t, 4, cfg.Logic.Workers)
	require.Equal(t, 20, cfg.Logic.RequestTimeout)
	require.Equal(t, 3, cfg.Logic.MaxRetries)
	require.Equal(t, 7*86400, cfg.Logic.RecrawlAfterSeconds)
	require.Equal(t, 120, cfg.Logic.NonArticleRefetchSeconds)
	require.Equal(t, 500, cfg.Logic.LinksPerPage)
	require.Equal(t, 0.7, cfg.Logic.DelaySeconds)
	require.Len(t, cfg.Seeds, 2)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeTempConfig(t, `
db:
  uri: "postgres://localhost/newscrawl"
bogus_field: true
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEnvOverridesDBURI(t *testing.T) {
	path := writeTempConfig(t, `
db:
  uri: "postgres://localhost/newscrawl"
`)

	t.Setenv("CRAWL_DB_URI", "postgres://override/newscrawl")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://override/newscrawl", cfg.DB.URI)
}
