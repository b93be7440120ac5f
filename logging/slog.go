package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"

	"github.com/amirrezaask/cachestore/env"
	"github.com/amirrezaask/cachestore/errors"
)

type Config struct {
	LogLevel     slog.Level
	SentryConfig sentry.ClientOptions
	// Output defaults to os.Stdout.
	Output io.Writer
}

type envConfig struct {
	Level             string `env:"LOG_LEVEL" envDefault:"info"`
	SentryDsn         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT"`
}

// ConfigFromEnv reads LOG_LEVEL, SENTRY_DSN and SENTRY_ENVIRONMENT.
func ConfigFromEnv() (Config, error) {
	var ec envConfig
	if err := env.Load(&ec); err != nil {
		return Config{}, errors.Wrap(err, "cannot read logging configuration")
	}
	return Config{
		LogLevel: ParseLevel(ec.Level),
		SentryConfig: sentry.ClientOptions{
			Dsn:         ec.SentryDsn,
			Environment: ec.SentryEnvironment,
		},
	}, nil
}

func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

// New builds a JSON logger, fanned out to Sentry for warnings and above when
// both a DSN and an environment are configured.
func New(c Config) (*slog.Logger, error) {
	out := c.Output
	if out == nil {
		out = os.Stdout
	}
	handlers := []slog.Handler{
		slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:     c.LogLevel,
			AddSource: true,
		}),
	}

	if c.SentryConfig.Dsn != "" && c.SentryConfig.Environment != "" {
		if err := sentry.Init(c.SentryConfig); err != nil {
			return nil, errors.Wrap(err, "cannot initialize sentry")
		}
		handlers = append(handlers, slogsentry.Option{
			Level:     slog.LevelWarn,
			AddSource: true,
		}.NewSentryHandler())
	}

	return slog.New(slogmulti.Fanout(handlers...)), nil
}

// Init builds the logger and installs it as the slog default.
func Init(c Config) (*slog.Logger, error) {
	logger, err := New(c)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
