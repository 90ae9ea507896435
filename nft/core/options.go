package core

import (
	"io"
	"runtime"

	"github.com/sirupsen/logrus"
)

// RunConfig holds execution settings that never change numerical results.
type RunConfig struct {
	// Workers bounds the number of goroutines used by one call.
	Workers int
	// Logger receives debug diagnostics.
	Logger logrus.FieldLogger
}

// RunOption mutates a RunConfig.
type RunOption func(*RunConfig)

// DefaultRunConfig uses one worker per available CPU and discards logs.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Workers: runtime.GOMAXPROCS(0),
		Logger:  discardLogger(),
	}
}

// WithWorkers sets the worker count. Non-positive values are ignored.
func WithWorkers(n int) RunOption {
	return func(cfg *RunConfig) {
		if n > 0 {
			cfg.Workers = n
		}
	}
}

// WithLogger sets the diagnostics logger. nil is ignored.
func WithLogger(l logrus.FieldLogger) RunOption {
	return func(cfg *RunConfig) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// ApplyRunOptions applies zero or more options to the default config.
func ApplyRunOptions(opts ...RunOption) RunConfig {
	cfg := DefaultRunConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}
