package loadtest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/assessor/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends log output to stdout and to logFile. An empty logFile
// gets a timestamped name; "-" logs to stdout only. The returned closer
// releases the file.
func SetupLogging(logFile, level string) (io.Closer, error) {
	if logFile == "-" {
		return nopCloser{}, logger.Init(logger.WithLevel(level))
	}
	if logFile == "" {
		logFile = "assess_load_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file)), logger.WithLevel(level)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
