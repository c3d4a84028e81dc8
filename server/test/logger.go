package test

import (
	"github.com/sigrelay/sigrelay/server/logformatter"
	"github.com/sigrelay/sigrelay/server/logger"
)

// NewLogger returns a logger configured from SIGRELAY_LOG, disabled when the
// variable is not set.
func NewLogger() logger.Logger {
	return logger.NewFromEnv("SIGRELAY_LOG").WithFormatter(logformatter.New())
}
