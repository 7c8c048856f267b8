package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/mailboard/internal/domain/model"
	"github.com/okian/mailboard/pkg/metrics"
)

// rowSource yields raw rows, header first, then io.EOF.
type rowSource interface {
	Next() ([]string, error)
	Close() error
}

type loader struct {
	chunkSize int
	loc       *time.Location
	sheet     string
	onChunk   func(rows int)
}

// ParseFormat maps a file name to its upload format.
func ParseFormat(filename string) (model.Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return model.FormatCSV, nil
	case ".xlsx", ".xls", ".xlsm":
		return model.FormatXLSX, nil
	default:
		return "", loadErr("format", fmt.Errorf("%w: %q", ErrUnknownFormat, filename))
	}
}

// CheckSize rejects uploads larger than limit bytes.
func CheckSize(n, limit int64) error {
	if limit > 0 && n > limit {
		return loadErr("size", fmt.Errorf("%w: %d bytes > %d bytes", ErrFileTooLarge, n, limit))
	}
	return nil
}

// Load parses r as the given format into a normalized table. Rows are read
// and normalized in bounded chunks, one chunk at a time. On any failure no
// partial table is returned.
func Load(ctx context.Context, r io.Reader, format model.Format, opts ...Option) (*model.Table, error) {
	l := &loader{chunkSize: DefaultChunkSize, loc: time.UTC}
	for _, opt := range opts {
		opt(l)
	}

	n := &normalizer{loc: l.loc}
	var src rowSource
	switch format {
	case model.FormatCSV:
		src = newCSVSource(r)
	case model.FormatXLSX:
		xs, err := newXLSXSource(r, l.sheet)
		if err != nil {
			return nil, err
		}
		n.serials, n.date1904 = true, xs.use1904()
		src = xs
	default:
		return nil, loadErr("format", fmt.Errorf("%w: %q", ErrUnknownFormat, format))
	}
	defer func() { _ = src.Close() }()

	cols, err := src.Next()
	if errors.Is(err, io.EOF) {
		return nil, loadErr("header", ErrNoHeader)
	}
	if err != nil {
		return nil, err
	}
	n.h = newHeader(cols)
	if err := n.h.missing(); err != nil {
		return nil, &LoadError{Op: "header", Row: 1, Cause: err}
	}
	caps := n.h.capabilities()
	n.hasStatus = caps.HasStatus

	rows, err := l.readChunks(ctx, src, n)
	if err != nil {
		return nil, err
	}

	metrics.RecordRowsDropped("blank", n.blank)
	metrics.RecordRowsDropped("bounced", n.bounced)

	return &model.Table{
		Rows:         rows,
		Capabilities: caps,
		Source: model.Source{
			Format:      format,
			Columns:     append([]string(nil), cols...),
			BlankRows:   n.blank,
			BouncedRows: n.bounced,
		},
	}, nil
}

func (l *loader) readChunks(ctx context.Context, src rowSource, n *normalizer) ([]model.Record, error) {
	var (
		out   []model.Record
		chunk = make([][]string, 0, min(l.chunkSize, 4096))
		line  = 2 // first data row; the header is row 1
	)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		var err error
		out, err = n.normalize(chunk, line, out)
		if err != nil {
			return err
		}
		line += len(chunk)
		chunk = chunk[:0]
		metrics.RecordIngestionChunk()
		if l.onChunk != nil {
			l.onChunk(len(out))
		}
		return nil
	}

	for {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		chunk = append(chunk, row)
		if len(chunk) < l.chunkSize {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, loadErr("read", err)
		}
		if err := flush(); err != nil {
			return nil, err
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}
