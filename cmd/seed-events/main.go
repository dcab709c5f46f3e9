package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/quietweek/quietweek/internal/seedevents"
)

// Default configuration constants.
const (
	defaultWorkers    = 4
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8080", "Base URL of the service")
		workers = flag.Int("workers", defaultWorkers, "Number of concurrent submit workers")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		apply   = flag.Bool("apply", false, "Apply the optimizer proposal after printing it")
		logFile = flag.String("log", "", "Log file for output (default: seed_log_TIMESTAMP.log)")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seedevents.ShowHelp()
		return
	}

	// Setup logging
	if err := seedevents.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &seedevents.Config{
		BaseURL: *baseURL,
		Workers: *workers,
		Timeout: *timeout,
		Apply:   *apply,
		LogFile: *logFile,
		Verbose: *verbose,
	}

	if err := seedevents.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		return
	}
}
