// Package spreadsheet builds xlsx workbooks in memory.
package spreadsheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of xlsx files.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DefaultFilename is used when a workbook has no file name.
const DefaultFilename = "export.xlsx"

const (
	maxSheetName = 31
	maxColWidth  = 60
)

// ErrNoSheets is returned when a workbook has nothing to write.
var ErrNoSheets = errors.New("workbook has no sheets")

// Sheet is one worksheet: a header row followed by data rows.
type Sheet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// Workbook is a set of sheets written to a single xlsx file.
type Workbook struct {
	Filename string  `json:"filename"`
	Sheets   []Sheet `json:"sheets"`
}

// FileName returns a safe base file name ending in .xlsx.
func (w Workbook) FileName() string {
	name := filepath.Base(strings.TrimSpace(w.Filename))
	name = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return DefaultFilename
	}
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		name += ".xlsx"
	}
	return name
}

// Build renders the workbook to xlsx bytes. Header rows are bold and
// column widths follow the longest header or value.
func Build(w Workbook) ([]byte, error) {
	if len(w.Sheets) == 0 {
		return nil, ErrNoSheets
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	used := make(map[string]bool)
	for i, s := range w.Sheets {
		name := uniqueName(SanitizeSheetName(s.Name, i), used)

		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, s, bold); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, s Sheet, headerStyle int) error {
	widths := make([]int, len(s.Headers))
	for i, h := range s.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}

	row := 1
	if len(s.Headers) > 0 {
		header := make([]any, len(s.Headers))
		for i, h := range s.Headers {
			header[i] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header of %q: %w", name, err)
		}
		if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %q: %w", name, err)
		}
		row++
	}

	for _, values := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := values
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", row, name, err)
		}
		for i, v := range values {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], utf8.RuneCountInString(fmt.Sprint(v)))
		}
		row++
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, col, col, float64(min(w+2, maxColWidth))); err != nil {
			return fmt.Errorf("failed to size column %s of %q: %w", col, name, err)
		}
	}
	return nil
}

// SanitizeSheetName strips characters Excel rejects in sheet names and caps
// the length at 31 characters. Empty names become SheetN.
func SanitizeSheetName(name string, index int) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Sheet" + strconv.Itoa(index+1)
	}
	if utf8.RuneCountInString(name) > maxSheetName {
		name = string([]rune(name)[:maxSheetName])
	}
	return name
}

// uniqueName appends a counter to names already taken. Excel compares sheet
// names case-insensitively.
func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
