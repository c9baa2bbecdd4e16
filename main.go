package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"jira-merge-gate/models"
)

// version is set at build time via ldflags.
var version = "dev"

var Logger = zap.NewNop()

// InitLogger initializes the global logger with appropriate configuration.
// Logs go to stderr; stdout carries workflow commands and command output.
func InitLogger(level models.LogLevel, format models.LogFormat) {
	// Create encoder config based on format
	var encoderConfig zapcore.EncoderConfig
	if format == models.LogFormatJSON {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		// Console format (default)
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var encoder zapcore.Encoder
	if format == models.LogFormatJSON {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	Logger = zap.New(zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), getLogLevel(level)))
}

// getLogLevel returns the log level based on config
func getLogLevel(level models.LogLevel) zapcore.Level {
	switch level {
	case models.LogLevelDebug:
		return zapcore.DebugLevel
	case models.LogLevelInfo:
		return zapcore.InfoLevel
	case models.LogLevelWarn:
		return zapcore.WarnLevel
	case models.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = Logger.Sync()
	if err != nil {
		stop()
		os.Exit(1)
	}
}
