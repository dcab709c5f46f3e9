package seedevents

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/quietweek/quietweek/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seeding tool.
func ShowHelp() {
	os.Stdout.WriteString(`QuietWeek Seed Tool
===================

Seeds a running quietweek service with a demo week of events, runs the
classifier and the week optimizer, and prints the resulting proposal.

Usage:
  go run cmd/seed-events/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -workers int
        Number of concurrent submit workers (default 4)
  -timeout duration
        HTTP request timeout (default 30s)
  -apply
        Apply the optimizer proposal after printing it
  -log string
        Log file for output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help

Examples:
  go run cmd/seed-events/main.go
  go run cmd/seed-events/main.go -url http://localhost:8080 -apply
`)
}
