// Package logging builds the zap logger used by the command line tools.
package logging

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Level is one of debug, info, warn or error.
	Level string
	Color bool

	// File enables a rotating log file in addition to the console.
	File       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

func newEncoder(color bool) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:       "message",
		LevelKey:         "level",
		TimeKey:          "time",
		CallerKey:        "caller",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	if color {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func newFileCore(cfg Config, level zapcore.Level) zapcore.Core {
	logFile := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		LocalTime:  true,
	}
	return zapcore.NewCore(newEncoder(false), zapcore.AddSync(logFile), level)
}

// New returns a logger writing to console. Console output goes to stderr so
// generated programs can be piped from stdout.
func New(cfg Config) (*zap.Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg Config, console io.Writer) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, err
		}
	}

	core := zapcore.NewCore(newEncoder(cfg.Color), zapcore.Lock(zapcore.AddSync(console)), level)
	if cfg.File != "" {
		core = zapcore.NewTee(core, newFileCore(cfg, level))
	}
	return zap.New(core, zap.AddCaller()), nil
}
