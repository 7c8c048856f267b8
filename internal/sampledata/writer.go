package sampledata

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/mailboard/internal/domain/model"
)

const sheetName = "Sheet1"

// Write encodes Header plus rows in the given format.
func Write(w io.Writer, format model.Format, rows [][]string) error {
	switch format {
	case model.FormatCSV:
		return WriteCSV(w, rows)
	case model.FormatXLSX:
		return WriteXLSX(w, rows)
	default:
		return fmt.Errorf("sampledata: unsupported format %q", format)
	}
}

// WriteCSV writes Header plus rows as comma separated text.
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes Header plus rows into the first sheet of a workbook.
func WriteXLSX(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}
	for i, row := range append([][]string{Header}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
