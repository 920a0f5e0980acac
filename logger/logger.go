// logger/logger.go
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"project/host-services/config"
)

// Setup installs the default logger described by cfg. Without a file the
// logger writes to stderr; with one it writes to a rotating log file.
// The returned closer releases the file, if any.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var (
		output io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		output, closer = rotating, rotating
	}

	log.SetDefault(log.NewWithOptions(output, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "2006/01/02 15:04:05",
	}))
	return closer, nil
}
