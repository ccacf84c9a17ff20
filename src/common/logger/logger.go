package logger

import (
	"os"

	"github.com/op/go-logging"
)

var (
	initialized bool
	backend     logging.Backend
)

// InitGlobalLogger initializes the logging backend and formatter
func InitGlobalLogger(logLevel string) error {
	if initialized {
		return nil
	}

	backend = logging.NewLogBackend(os.Stderr, "", 0)

	// %{module} will be the prefix set in logging.MustGetLogger(prefix)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05.000} [%{color}%{level:.5s}%{color:reset}] %{module}: %{message}`,
	)

	backendFormatter := logging.NewBackendFormatter(backend, format)

	backendLeveled := logging.AddModuleLevel(backendFormatter)
	logLevelCode, err := logging.LogLevel(logLevel)
	if err != nil {
		return err
	}

	backendLeveled.SetLevel(logLevelCode, "")

	logging.SetBackend(backendLeveled)

	initialized = true
	return nil
}

// GetLoggerWithPrefix returns a new logger with its own prefix (per component)
func GetLoggerWithPrefix(prefix string) *logging.Logger {
	return logging.MustGetLogger(prefix)
}
