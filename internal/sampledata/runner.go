package sampledata

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/mailboard/pkg/logger"
)

const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run generates a file, uploads it and logs the returned summary.
func Run(ctx context.Context, config *Config) error {
	start := time.Now()
	log := logger.Get()
	log.Info(ctx, "starting sample upload",
		logger.String("baseURL", config.BaseURL),
		logger.Int("rows", config.Rows),
		logger.String("format", string(config.Format)),
		logger.Any("seed", config.Seed))

	client := NewClient(config.BaseURL, config.Timeout)
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	var buf bytes.Buffer
	rows := NewGenerator(config.Seed).Rows(config.Rows)
	if err := Write(&buf, config.Format, rows); err != nil {
		return fmt.Errorf("generate file: %w", err)
	}
	if config.OutputFile != "" {
		if err := saveFile(config.OutputFile, buf.Bytes()); err != nil {
			log.Warn(ctx, "failed to save generated file", logger.Error(err))
		} else {
			log.Info(ctx, "generated file saved", logger.String("filename", config.OutputFile))
		}
	}

	name := fmt.Sprintf("sample_%d.%s", config.Seed, config.Format)
	up, err := client.Upload(ctx, name, buf.Bytes())
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	log.Info(ctx, "dataset uploaded",
		logger.String("id", up.ID),
		logger.Int("rows", up.Rows),
		logger.Bool("cached", up.Cached),
		logger.Int("bouncedRows", up.Source.BouncedRows))

	sum, err := client.Summary(ctx, up.ID, config.Top)
	if err != nil {
		return fmt.Errorf("summary retrieval failed: %w", err)
	}
	for _, k := range []string{"campaigns", "prospects", "open_rate", "click_rate", "reply_rate"} {
		if config.Verbose || sum.Display[k] != "" {
			log.Info(ctx, "summary", logger.String("metric", k), logger.String("value", sum.Display[k]))
		}
	}
	for _, t := range sum.Takeaways {
		log.Info(ctx, "takeaway", logger.String("text", t))
	}
	log.Info(ctx, "sample upload completed", logger.Duration("duration", time.Since(start)))
	return nil
}

func saveFile(name string, data []byte) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return os.WriteFile(name, data, filePermission)
}
