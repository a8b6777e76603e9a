package data

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelReader turns a worksheet into a list of rows keyed by the header row
type ExcelReader struct {
	// TrimSpace trims cell values and header names
	TrimSpace bool
}

func NewExcelReader() *ExcelReader {
	return &ExcelReader{TrimSpace: true}
}

// Read opens the workbook at path. An empty selector reads the first sheet.
// Blank rows and columns with an empty header are skipped.
func (r *ExcelReader) Read(ctx context.Context, path, sheet string) (any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			list := f.GetSheetList()
			if len(list) == 0 {
				return nil, fmt.Errorf("no sheets found in %s", path)
			}
			sheet = list[0]
		}
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return []map[string]any{}, nil
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = r.clean(header[i])
	}

	records := make([]map[string]any, 0)
	rowNum := 1
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rowNum++

		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		record := make(map[string]any, len(header))
		empty := true
		for i, name := range header {
			if name == "" {
				continue
			}
			value := ""
			if i < len(cols) {
				value = r.clean(cols[i])
			}
			if value != "" {
				empty = false
			}
			record[name] = value
		}
		if empty {
			continue
		}
		records = append(records, record)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return records, nil
}

func (r *ExcelReader) clean(s string) string {
	if r.TrimSpace {
		return strings.TrimSpace(s)
	}
	return s
}
