package ingest

import (
	"encoding/csv"
	"errors"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// csvSource streams records from delimited text. A UTF-8 or UTF-16 byte
// order mark selects the decoding; without one the input must be UTF-8.
type csvSource struct {
	r   *csv.Reader
	row int
}

func newCSVSource(r io.Reader) *csvSource {
	decoded := transform.NewReader(r, unicode.BOMOverride(encoding.UTF8Validator))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return &csvSource{r: cr}
}

func (s *csvSource) Next() ([]string, error) {
	rec, err := s.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		s.row++
		return nil, s.wrap(err)
	}
	s.row++
	return rec, nil
}

func (s *csvSource) Close() error { return nil }

func (s *csvSource) wrap(err error) error {
	if errors.Is(err, encoding.ErrInvalidUTF8) {
		return &LoadError{Op: "decode", Row: s.row, Cause: ErrInvalidEncoding}
	}
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &LoadError{Op: "parse", Row: perr.StartLine, Cause: perr.Err}
	}
	return &LoadError{Op: "read", Row: s.row, Cause: err}
}
