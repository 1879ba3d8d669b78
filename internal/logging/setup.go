// Package logging configures zerolog for sitectl and carries loggers in contexts.
//
// The helpers follow the github.com/bnema/zerowrap API so call sites read the
// same and can switch to it once a release is pinned:
//
//	Setup         zerowrap.New / zerowrap.NewWithFile
//	WithCtx       zerowrap.WithCtx
//	FromCtx       zerowrap.FromCtx
//	CtxWithFields zerowrap.CtxWithFields
//	WrapErr       zerowrap.Logger.WrapErr, with the logger taken from ctx
//	Field*        zerowrap.Field* constants of the same name
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Standard field names shared by every layer. FieldComponent names the CLI
// command being run.
const (
	FieldLayer     = "layer"
	FieldComponent = "component"
	FieldUseCase   = "usecase"
	FieldAdapter   = "adapter"
	FieldAction    = "action"
	FieldDomain    = "domain"
	FieldExitCode  = "exit_code"
	FieldCommand   = "command"
)

// Config controls log level, format and the optional rotating file.
type Config struct {
	Level  string     `mapstructure:"level"`
	Format string     `mapstructure:"format"`
	File   FileConfig `mapstructure:"file"`
}

// FileConfig controls the rotating log file.
type FileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Setup builds the application logger. Console output goes to w.
// The returned cleanup closes the log file, if any.
func Setup(cfg Config, w io.Writer) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.WarnLevel
	}

	var console io.Writer = w
	if cfg.Format != "json" {
		console = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	if !cfg.File.Enabled {
		return zerolog.New(console).Level(level).With().Timestamp().Logger(), func() {}, nil
	}

	if cfg.File.Path == "" {
		return zerolog.Nop(), nil, fmt.Errorf("log file enabled but no path configured")
	}

	// Owner-only.
	if err := os.MkdirAll(filepath.Dir(cfg.File.Path), 0700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File.Path,
		MaxSize:    cfg.File.MaxSize,
		MaxBackups: cfg.File.MaxBackups,
		MaxAge:     cfg.File.MaxAge,
		Compress:   cfg.File.Compress,
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(console, fileWriter)).Level(level).With().Timestamp().Logger()

	if err := os.Chmod(cfg.File.Path, 0600); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("file", cfg.File.Path).Msg("failed to set permissions on log file")
	}

	cleanup := func() {
		_ = fileWriter.Close()
	}
	return logger, cleanup, nil
}

// WithCtx attaches logger to ctx.
func WithCtx(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromCtx returns the logger carried by ctx, or a disabled logger.
func FromCtx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// CtxWithFields returns a context whose logger carries the extra fields.
func CtxWithFields(ctx context.Context, fields map[string]any) context.Context {
	logger := zerolog.Ctx(ctx).With().Fields(fields).Logger()
	return logger.WithContext(ctx)
}

// WrapErr logs err at error level with msg and returns it wrapped with msg.
func WrapErr(ctx context.Context, err error, msg string) error {
	zerolog.Ctx(ctx).Error().Err(err).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}
