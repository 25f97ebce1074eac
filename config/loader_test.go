package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load("../config.yml")
	require.NoError(t, err)

	assert.Equal(t, 16181, cfg.Server.Port)
	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, "default", cfg.Feeds[0].Name)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 30, cfg.Query.DefaultWindowMinutes)
}

func TestLoad_DefaultsFillGaps(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
feeds:
  - name: city
    path: ./feed.zip
`))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.Cache, cfg.Cache)
	assert.Equal(t, def.Query, cfg.Query)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRANSIT_FEED_PATH", "/data/other")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("PORT", "9000")

	cfg, err := Load(writeConfig(t, `
feeds:
  - name: city
    path: ./feed.zip
`))
	require.NoError(t, err)

	assert.Equal(t, "/data/other", cfg.Feeds[0].Path)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "cache.internal", cfg.Cache.Redis.Host)
	assert.Equal(t, 6380, cfg.Cache.Redis.Port)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, "secret", cfg.Cache.Redis.Password)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoad_FeedPathFromEnvOnly(t *testing.T) {
	t.Setenv("TRANSIT_FEED_PATH", "/data/feed")

	cfg, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	require.NoError(t, err)
	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, "default", cfg.Feeds[0].Name)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no feeds", body: "server:\n  port: 8080\n"},
		{name: "feed without source", body: "feeds:\n  - name: city\n"},
		{name: "feed with bad url", body: "feeds:\n  - name: city\n    url: not a url\n"},
		{name: "port out of range", body: "server:\n  port: 70000\nfeeds:\n  - name: city\n    path: x\n"},
		{name: "unknown cache backend", body: "feeds:\n  - name: city\n    path: x\ncache:\n  backend: disk\n"},
		{name: "redis without host", body: "feeds:\n  - name: city\n    path: x\ncache:\n  backend: redis\n  redis:\n    host: \"\"\n"},
		{name: "max radius below default", body: "feeds:\n  - name: city\n    path: x\nquery:\n  defaultRadiusKM: 5\n  maxRadiusKM: 1\n"},
		{name: "bad timezone", body: "feeds:\n  - name: city\n    path: x\nquery:\n  timezone: Mars/Olympus\n"},
		{name: "malformed yaml", body: "feeds: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestSelectFeed(t *testing.T) {
	cfg := &AppConfig{Feeds: []FeedConfig{{Name: "city", Path: "a"}, {Name: "region", URL: "https://example.com/gtfs.zip"}}}

	f, err := cfg.SelectFeed("")
	require.NoError(t, err)
	assert.Equal(t, "city", f.Name)

	f, err = cfg.SelectFeed("region")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/gtfs.zip", f.URL)

	_, err = cfg.SelectFeed("moon")
	assert.True(t, errors.Is(err, ErrFeedNotFound))

	_, err = (&AppConfig{}).SelectFeed("")
	assert.ErrorIs(t, err, ErrFeedNotFound)
}
