package ingest

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// xlsxSource streams rows of one worksheet with excelize's row iterator.
type xlsxSource struct {
	f    *excelize.File
	rows *excelize.Rows
}

func newXLSXSource(r io.Reader, sheet string) (*xlsxSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, loadErr("open", err)
	}
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		_ = f.Close()
		return nil, loadErr("open", errors.New("workbook has no sheets"))
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, loadErr("open", fmt.Errorf("sheet %q: %w", sheet, err))
	}
	return &xlsxSource{f: f, rows: rows}, nil
}

func (s *xlsxSource) Next() ([]string, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, loadErr("read", err)
		}
		return nil, io.EOF
	}
	cols, err := s.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, loadErr("read", err)
	}
	return cols, nil
}

func (s *xlsxSource) Close() error {
	rerr := s.rows.Close()
	ferr := s.f.Close()
	return errors.Join(rerr, ferr)
}

// use1904 reports whether the workbook counts serial dates from 1904.
func (s *xlsxSource) use1904() bool {
	props, err := s.f.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}
