package logger

import (
	"os"

	kitlog "github.com/go-kit/log"
)

type Config struct {
	Service string
	Version string
}

// New creates a new structured logger using go-kit/log
func New(config Config) kitlog.Logger {
	// Logfmt format, human readable and easy to parse by log aggregators
	logger := kitlog.NewLogfmtLogger(os.Stderr)
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	logger = kitlog.With(logger, "caller", kitlog.DefaultCaller)
	logger = kitlog.With(logger, "service", config.Service, "version", config.Version)
	return logger
}
