package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/matryer/is"
)

func TestParseLevel(t *testing.T) {
	is := is.New(t)
	is.Equal(ParseLevel("debug"), slog.LevelDebug)
	is.Equal(ParseLevel("info"), slog.LevelInfo)
	is.Equal(ParseLevel("warn"), slog.LevelWarn)
	is.Equal(ParseLevel("error"), slog.LevelError)
	is.Equal(ParseLevel("nonsense"), slog.LevelError)
}

func TestNew(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	logger, err := New(Config{LogLevel: slog.LevelInfo, Output: &buf})
	is.NoErr(err)

	logger.Debug("dropped")
	logger.Info("cache entry expired", "key", "a")

	var line map[string]any
	is.NoErr(json.Unmarshal(buf.Bytes(), &line))
	is.Equal(line["msg"], "cache entry expired")
	is.Equal(line["key"], "a")
}

func TestConfigFromEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("LOG_LEVEL", "debug")
	c, err := ConfigFromEnv()
	is.NoErr(err)
	is.Equal(c.LogLevel, slog.LevelDebug)
	is.Equal(c.SentryConfig.Dsn, "")
}
