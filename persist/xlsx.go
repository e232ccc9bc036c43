// Package persist writes forecast tables to spreadsheet files and reads them back.
package persist

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"forecast-scraper/models"
	"forecast-scraper/tabulate"

	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet every new workbook starts with
const defaultSheet = "Sheet1"

// ErrCellValue is returned for text a worksheet cell cannot hold unchanged
var ErrCellValue = errors.New("value cannot be stored in a cell")

// WriteXLSX writes the table to a single-sheet workbook at path, replacing
// any existing file. The first row holds the column names. Text that a cell
// would truncate or rewrite fails with ErrCellValue and nothing is written.
func WriteXLSX(path, sheet string, table *models.ForecastTable) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
	}

	header := make([]interface{}, len(models.Columns))
	for i, c := range models.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		texts := []string{row.Period, row.ShortDescription, row.TemperatureText, row.DetailedDescription}
		for j, text := range texts {
			if err := checkCellText(text); err != nil {
				return fmt.Errorf("row %d column %s: %w", i, models.Columns[j], err)
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i, err)
		}
		values := []interface{}{
			row.Period,
			row.ShortDescription,
			row.TemperatureText,
			row.DetailedDescription,
			row.TemperatureNumber,
			row.IsNight,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func checkCellText(text string) error {
	if n := utf8.RuneCountInString(text); n > excelize.TotalCellChars {
		return fmt.Errorf("%w: %d characters, limit is %d", ErrCellValue, n, excelize.TotalCellChars)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: invalid UTF-8", ErrCellValue)
	}
	for _, r := range text {
		if !isXMLChar(r) {
			return fmt.Errorf("%w: character %U", ErrCellValue, r)
		}
	}
	return nil
}

// isXMLChar reports whether r may appear in XML 1.0 character data
func isXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// ReadXLSX reads a table written by WriteXLSX
func ReadXLSX(path, sheet string) (*models.ForecastTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	header := rows[0]
	if len(header) != len(models.Columns) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}
	for i, c := range models.Columns {
		if header[i] != c {
			return nil, fmt.Errorf("unexpected header %v", header)
		}
	}

	// trailing empty cells are not returned by GetRows
	cols := make([][]string, len(models.Columns))
	for _, r := range rows[1:] {
		for i := range cols {
			v := ""
			if i < len(r) {
				v = r[i]
			}
			cols[i] = append(cols[i], v)
		}
	}

	table, err := tabulate.FromColumns(cols[0], cols[1], cols[2], cols[3])
	if err != nil {
		return nil, err
	}

	for i := range table.Rows {
		n, err := strconv.Atoi(cols[4][i])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid temp_num %q: %w", i, cols[4][i], err)
		}
		night, err := strconv.ParseBool(cols[5][i])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid is_night %q: %w", i, cols[5][i], err)
		}
		table.Rows[i].TemperatureNumber = n
		table.Rows[i].IsNight = night
	}
	table.Derived = true

	return table, nil
}
