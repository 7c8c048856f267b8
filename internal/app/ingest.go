package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mailboard/internal/adapters/repository"
	"github.com/okian/mailboard/internal/domain/ingest"
	"github.com/okian/mailboard/internal/domain/model"
	"github.com/okian/mailboard/pkg/logger"
	"github.com/okian/mailboard/pkg/metrics"
)

// Upload is the outcome of Ingest.
type Upload struct {
	Table  *model.Table
	Cached bool // the same bytes were already normalized
}

// Ingest spools r to disk while hashing it, then returns the cached table
// for that digest or normalizes the file. size is the declared length, or
// -1 when unknown; the spooled length is checked either way.
func (s *Service) Ingest(ctx context.Context, name string, r io.Reader, size int64) (*Upload, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	start := time.Now()

	if name == "" {
		return nil, ErrNoFilename
	}
	format, err := ingest.ParseFormat(name)
	if err != nil {
		return nil, s.loadFailed(ctx, name, err)
	}
	if size >= 0 {
		if err := ingest.CheckSize(size, s.maxUploadBytes); err != nil {
			return nil, s.loadFailed(ctx, name, err)
		}
	}

	f, err := os.CreateTemp(s.uploadDir, "upload-"+uuid.NewString()+"-*")
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	h := sha256.New()
	src := r
	if s.maxUploadBytes > 0 {
		src = io.LimitReader(r, s.maxUploadBytes+1)
	}
	n, err := io.Copy(io.MultiWriter(f, h), src)
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	if err := ingest.CheckSize(n, s.maxUploadBytes); err != nil {
		return nil, s.loadFailed(ctx, name, err)
	}
	id := hex.EncodeToString(h.Sum(nil))

	if t, err := store.Get(ctx, id); err == nil {
		s.logger.Info(ctx, "dataset served from cache", logger.String("dataset", id), logger.String("file", name))
		return &Upload{Table: t, Cached: true}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}
	chunks := 0
	t, err := ingest.Load(ctx, f, format,
		ingest.WithChunkSize(s.chunkSize),
		ingest.WithChunkHook(func(rows int) {
			chunks++
			s.logger.Debug(ctx, "chunk normalized", logger.String("dataset", id), logger.Int("rows", rows))
		}),
	)
	if err != nil {
		return nil, s.loadFailed(ctx, name, err)
	}
	t.Source.ID = id
	t.Source.Name = name
	t.Source.SizeBytes = n

	evicted, err := store.Put(ctx, t)
	if err != nil {
		return nil, err
	}
	for _, old := range evicted {
		s.logger.Info(ctx, "dataset evicted", logger.String("dataset", old))
	}

	elapsed := time.Since(start)
	metrics.RecordDatasetIngested(t.Len(), n, float64(elapsed.Milliseconds()))
	s.logger.Info(ctx, "dataset ingested",
		logger.String("dataset", id),
		logger.String("file", name),
		logger.String("format", string(format)),
		logger.Int("rows", t.Len()),
		logger.Int("chunks", chunks),
		logger.Int("blankRows", t.Source.BlankRows),
		logger.Int("bouncedRows", t.Source.BouncedRows),
		logger.Duration("elapsed", elapsed),
	)
	return &Upload{Table: t}, nil
}

func (s *Service) loadFailed(ctx context.Context, name string, err error) error {
	metrics.RecordLoadError()
	metrics.RecordErrorByComponent("ingest", "load")
	s.logger.Warn(ctx, "upload rejected", logger.String("file", name), logger.Error(err))
	return err
}

// Dataset returns the cached table for id.
func (s *Service) Dataset(ctx context.Context, id string) (*model.Table, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, id)
}

// DropDataset removes id from the cache.
func (s *Service) DropDataset(ctx context.Context, id string) error {
	store, err := s.store()
	if err != nil {
		return err
	}
	if _, err := store.Get(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "dataset dropped", logger.String("dataset", id))
	return store.Delete(ctx, id)
}
