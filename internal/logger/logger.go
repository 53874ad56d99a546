package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. "production" yields JSON output; anything else a
// colored console encoder. LOG_LEVEL overrides the level.
func New(environment string) (*zap.Logger, error) {
	return build(environment, []string{"stdout"})
}

// NewCLI builds a logger that writes to stderr so command output stays clean.
func NewCLI(environment string) (*zap.Logger, error) {
	return build(environment, []string{"stderr"})
}

func build(environment string, outputs []string) (*zap.Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = outputs
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(lvl)); err == nil {
			config.Level.SetLevel(level)
		}
	}

	return config.Build()
}
