// Package util carries process-level glue shared by the dynwg binaries.
package util

import (
	"go.uber.org/zap"
)

// S is the process-wide sugared logger. SetupLog must be called before use.
var S *zap.SugaredLogger

// SetupLog configures the global zap logger.
func SetupLog(debug bool) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	S = zap.S()
}
