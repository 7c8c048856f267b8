package sampledata

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/mailboard/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging logs to stdout and, when logFile is set, to that file.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.InitWith(w, logger.FormatText); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// DefaultOutputFile returns a timestamped file name for format.
func DefaultOutputFile(format string) string {
	return "sample_campaigns_" + time.Now().Format("20060102_150405") + "." + format
}

// ShowHelp prints usage information for the sample data tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Mailboard Sample Data Tool
==========================

Generates a synthetic campaign export and uploads it to a running dashboard.

Usage:
  go run ./cmd/sample-data [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -rows int
        Number of rows to generate (default 5000)
  -seed uint
        Generator seed; equal seeds produce identical files (default 42)
  -format string
        csv or xlsx (default "csv")
  -top string
        Breakdown truncation for the summary: 5, 10, 20 or all (default "5")
  -timeout duration
        HTTP request timeout (default 60s)
  -output string
        Keep the generated file at this path
  -log string
        Also write log output to this file
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/sample-data -rows 20000 -format xlsx -output data/sample.xlsx
`)
}
