// Package export renders test cases as spreadsheets, one column per property.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/schema"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Test cases"

// ErrUnsupportedFormat is returned for formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a format name or a file name with extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "xlsx" || strings.HasSuffix(s, ".xlsx"):
		return FormatXLSX, nil
	case s == "csv" || strings.HasSuffix(s, ".csv"):
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Header returns Title, Description and then every property title in schema order.
func Header(sch *schema.Schema) []string {
	header := []string{"Title", "Description"}
	for _, cfg := range sch.All() {
		header = append(header, cfg.Title)
	}
	return header
}

// Rows renders one row per test case aligned with Header. Unset values and
// values of deleted properties are not exported.
func Rows(sch *schema.Schema, cases []domain.TestCase) [][]string {
	configs := sch.All()
	rows := make([][]string, 0, len(cases))
	for _, tc := range cases {
		row := make([]string, 0, len(configs)+2)
		row = append(row, tc.Title, tc.Description)
		for _, cfg := range configs {
			row = append(row, tc.PropertyValues.Resolve(cfg.ID))
		}
		rows = append(rows, row)
	}
	return rows
}

// Write encodes cases in format f.
func Write(w io.Writer, f Format, sch *schema.Schema, cases []domain.TestCase) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, sch, cases)
	case FormatXLSX:
		return WriteXLSX(w, sch, cases)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// WriteCSV writes a header row followed by one record per test case.
func WriteCSV(w io.Writer, sch *schema.Schema, cases []domain.TestCase) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(Header(sch)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := csvWriter.WriteAll(Rows(sch, cases)); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// WriteXLSX writes a single worksheet workbook.
func WriteXLSX(w io.Writer, sch *schema.Schema, cases []domain.TestCase) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := sw.SetRow("A1", cells(Header(sch)), excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range Rows(sch, cases) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
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

func cells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
