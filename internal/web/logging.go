package web

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig selects the server log level and destination.
type LogConfig struct {
	Level string // logrus level name, default "info"
	File  string // rotated log file; empty logs to stderr
	JSON  bool
}

// NewLogger builds the server logger. The returned closer flushes the log
// file and is a no-op when logging to stderr.
func NewLogger(cfg LogConfig) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level := logrus.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = logrus.ParseLevel(cfg.Level); err != nil {
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
	}
	log.SetLevel(level)

	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return log, nopCloser{}, nil
	}

	logfile, err := filepath.Abs(cfg.File)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logfile), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	output := &lumberjack.Logger{
		Filename:   logfile,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		LocalTime:  true,
	}
	log.SetOutput(output)
	gin.DefaultWriter = output
	return log, output, nil
}

// requestLogger logs one line per request. Form values are never logged.
func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		}
		if id := c.GetString(sessionIDKey); id != "" {
			fields["session"] = id
		}
		entry := log.WithFields(fields)

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request")
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
