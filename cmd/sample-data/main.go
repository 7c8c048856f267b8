package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/mailboard/internal/domain/model"
	"github.com/okian/mailboard/internal/sampledata"
)

// Default configuration constants.
const (
	defaultRows       = 5000
	defaultSeed       = 42
	defaultTimeout    = 60 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		rows       = flag.Int("rows", defaultRows, "Number of rows to generate")
		seed       = flag.Uint64("seed", defaultSeed, "Generator seed")
		format     = flag.String("format", string(model.FormatCSV), "csv or xlsx")
		top        = flag.String("top", "5", "Breakdown truncation for the summary")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Keep the generated file at this path")
		logFile    = flag.String("log", "", "Also write log output to this file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sampledata.ShowHelp()
		return
	}

	if err := sampledata.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &sampledata.Config{
		BaseURL:    *baseURL,
		Rows:       *rows,
		Seed:       *seed,
		Format:     model.Format(*format),
		Top:        *top,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := sampledata.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Sample upload failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
