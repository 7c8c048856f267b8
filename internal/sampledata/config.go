package sampledata

import (
	"time"

	"github.com/okian/mailboard/internal/domain/model"
)

// Config holds configuration for a sample upload run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Rows       int           // Number of rows to generate
	Seed       uint64        // Generator seed
	Format     model.Format  // csv or xlsx
	Top        string        // Breakdown truncation requested from the summary
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Where the generated file is kept; empty keeps nothing
	LogFile    string        // Log file for run output
	Verbose    bool          // Enable verbose logging
}

// UploadResponse mirrors the dataset creation response.
type UploadResponse struct {
	ID           string             `json:"id"`
	Rows         int                `json:"rows"`
	Cached       bool               `json:"cached"`
	Capabilities model.Capabilities `json:"capabilities"`
	Source       model.Source       `json:"source"`
}

// SummaryResponse is the subset of the dashboard response the runner prints.
type SummaryResponse struct {
	Rows      int               `json:"rows"`
	Display   map[string]string `json:"display"`
	Takeaways []string          `json:"takeaways"`
}
