package obslog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalLogger = zap.NewNop()

// L returns the process-wide logger. It discards everything until Init or
// InitFromEnv runs.
func L() *zap.Logger { return globalLogger }

func Sync() { _ = globalLogger.Sync() }

// Options selects the outputs and encoding of the logger.
type Options struct {
	Level    zapcore.Level
	Console  bool
	File     bool
	FilePath string
	// Format is legacy, json or console.
	Format string
	Caller bool
	// Color enables level colors on the console output only.
	Color bool
}

// OptionsFromEnv reads LOG_LEVEL, LOG_TO_CONSOLE, LOG_TO_FILE, LOG_FILE,
// LOG_FORMAT, LOG_CALLER and LOG_COLOR.
func OptionsFromEnv() Options {
	o := Options{
		Level:    parseLevel(os.Getenv("LOG_LEVEL")),
		Console:  envBool("LOG_TO_CONSOLE", true),
		File:     envBool("LOG_TO_FILE", true),
		FilePath: filepath.Join("logs", "match.log"),
		Format:   strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT"))),
		Caller:   envBool("LOG_CALLER", false),
		Color:    envBool("LOG_COLOR", false),
	}
	if p := strings.TrimSpace(os.Getenv("LOG_FILE")); p != "" {
		o.FilePath = p
	}
	return o
}

func InitFromEnv() error { return Init(OptionsFromEnv()) }

// Init replaces the process-wide logger.
func Init(o Options) error {
	logger, err := Build(o)
	if err != nil {
		return err
	}
	globalLogger = logger
	return nil
}

// Build assembles a logger writing to every enabled output. With no output
// enabled it falls back to a development console logger.
func Build(o Options) (*zap.Logger, error) {
	switch o.Format {
	case "json", "console":
	default:
		o.Format = "legacy"
		o.Caller = true
	}

	var cores []zapcore.Core
	if o.Console {
		cores = append(cores, zapcore.NewCore(encoder(o.Format, o.Color), zapcore.Lock(os.Stdout), o.Level))
	}
	if o.File {
		f, err := openLogFile(o.FilePath)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(encoder(o.Format, false), zapcore.AddSync(f), o.Level))
	}
	if len(cores) == 0 {
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stdout), o.Level))
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if o.Caller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...), nil
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func encoder(format string, color bool) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	switch format {
	case "json":
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(cfg)
	case "console":
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		if color {
			cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		return zapcore.NewConsoleEncoder(cfg)
	default:
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.ConsoleSeparator = " | "
		return zapcore.NewConsoleEncoder(cfg)
	}
}

func parseLevel(s string) zapcore.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return zapcore.WarnLevel
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1"
}
