package config

import (
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger returns a stderr logger at the configured level. Unknown levels
// fall back to info.
func (c Config) NewLogger() *log.Logger {
	logger := log.New(os.Stderr)
	switch c.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	logger.SetReportTimestamp(true)
	return logger
}
