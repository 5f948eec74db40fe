package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
logLevel = "debug"

[server]
addr = ":9090"
sessionSecret = "file-secret"

[database]
driver = "mysql"
dsn = "user:pass@tcp(127.0.0.1:3306)/yatube?parseTime=True"

[cache]
indexSeconds = 30

[kafka]
brokers = ["k1:9092", "k2:9092"]
topic = "events"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Cache.IndexSeconds)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.LogLevel)
	// 文件里没写的保留默认值
	assert.Equal(t, "disk", cfg.Storage.Type)
	assert.Equal(t, "dev-access-secret", cfg.JWT.AccessSecret)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("YATUBE_ADDR", ":7070")
	t.Setenv("YATUBE_CACHE_INDEX_SECONDS", "5")
	t.Setenv("YATUBE_KAFKA_BROKERS", "a:1, b:2")
	t.Setenv("YATUBE_DEBUG", "yes")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Cache.IndexSeconds)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Server.Debug)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Cache.IndexSeconds)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoad_BadFile(t *testing.T) {
	_, err := Load(writeConfig(t, "[server\naddr ="))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		ok     bool
	}{
		{name: "defaults", modify: func(c *Config) {}, ok: true},
		{name: "unknown driver", modify: func(c *Config) { c.Database.Driver = "oracle" }},
		{name: "empty dsn", modify: func(c *Config) { c.Database.DSN = "" }},
		{name: "empty session secret", modify: func(c *Config) { c.Server.SessionSecret = "" }},
		{name: "empty jwt secret", modify: func(c *Config) { c.JWT.RefreshSecret = "" }},
		{name: "s3 without bucket", modify: func(c *Config) { c.Storage.Type = "s3" }},
		{name: "s3 complete", modify: func(c *Config) {
			c.Storage = Storage{Type: "s3", Bucket: "media", Region: "eu-west-1"}
		}, ok: true},
		{name: "negative ttl", modify: func(c *Config) { c.Cache.IndexSeconds = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	cfg := Default()
	cfg.SMTP.Password = "hunter2"

	s := cfg.String()
	assert.False(t, strings.Contains(s, "hunter2"))
	assert.False(t, strings.Contains(s, "dev-access-secret"))
	assert.True(t, strings.Contains(s, "*******"))
}
