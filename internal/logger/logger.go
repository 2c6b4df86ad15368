package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup configures the global logger. Console output goes to out; a log file,
// when configured, is rotated by time. The returned closer releases the file.
func Setup(cfg config.LoggingConfig, out io.Writer) (io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var console io.Writer = out
	if cfg.Format != "json" {
		console = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	writers := []io.Writer{console}
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		rotationTime := cfg.RotationTime
		if rotationTime <= 0 {
			rotationTime = 24 * time.Hour
		}
		opts := []rotatelogs.Option{
			rotatelogs.WithLinkName(cfg.File),
			rotatelogs.WithRotationTime(rotationTime),
		}
		if cfg.MaxAge > 0 {
			opts = append(opts, rotatelogs.WithMaxAge(cfg.MaxAge))
		}

		rl, err := rotatelogs.New(cfg.File+".%Y%m%d%H%M", opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, rl)
		closer = rl
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger()

	return closer, nil
}
