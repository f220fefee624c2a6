package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultDir        = "logs"
	fileBufferSize    = 32 * 1024
	consoleBufferSize = 1000
)

var serviceNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

type Options struct {
	ServiceName string
	Dir         string
	Level       string
	Console     bool
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_DIR. The returned
// func flushes and closes the async writers.
func NewLogger(serviceName string) (*logrus.Logger, func(), error) {
	return NewLoggerWithOptions(Options{
		ServiceName: serviceName,
		Dir:         os.Getenv("LOG_DIR"),
		Level:       os.Getenv("LOG_LEVEL"),
		Console:     true,
	})
}

func NewLoggerWithOptions(opts Options) (*logrus.Logger, func(), error) {
	if !serviceNamePattern.MatchString(opts.ServiceName) {
		return nil, nil, fmt.Errorf("invalid service name %q", opts.ServiceName)
	}
	dir := opts.Dir
	if dir == "" {
		dir = defaultDir
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	if opts.Level == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	logFile := filepath.Join(filepath.Clean(dir), opts.ServiceName+".log")
	fileWriter, err := NewAsyncFileWriter(logFile, fileBufferSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(fileWriter)

	var consoleHook *AsyncConsoleHook
	if opts.Console {
		consoleHook = NewAsyncConsoleHook(consoleBufferSize)
		logger.AddHook(consoleHook)
	}

	closer := func() {
		if consoleHook != nil {
			consoleHook.Close()
		}
		fileWriter.Close()
	}
	return logger, closer, nil
}
