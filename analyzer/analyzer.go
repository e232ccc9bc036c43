// Package analyzer computes the derived forecast columns and summary figures.
package analyzer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"forecast-scraper/models"
)

// nightMarker is matched case-sensitively against the temperature text
const nightMarker = "Low"

var digitRun = regexp.MustCompile(`[0-9]+`)

// TemperatureParseError is returned when a temperature text has no usable number
type TemperatureParseError struct {
	Row  int // -1 when not parsing a table
	Text string
	Err  error
}

func (e *TemperatureParseError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("temperature parse error: %q: %v", e.Text, e.Err)
	}
	return fmt.Sprintf("temperature parse error: row %d: %q: %v", e.Row, e.Text, e.Err)
}

func (e *TemperatureParseError) Unwrap() error {
	return e.Err
}

// ErrNoDigits is wrapped by TemperatureParseError when the text has no digits
var ErrNoDigits = errors.New("no digits found")

// TemperatureNumber returns the integer value of the first run of decimal
// digits in text. A leading minus sign is not part of the run.
func TemperatureNumber(text string) (int, error) {
	digits := digitRun.FindString(text)
	if digits == "" {
		return 0, &TemperatureParseError{Row: -1, Text: text, Err: ErrNoDigits}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, &TemperatureParseError{Row: -1, Text: text, Err: err}
	}
	return n, nil
}

// IsNight reports whether the temperature text describes a night period
func IsNight(text string) bool {
	return strings.Contains(text, nightMarker)
}

// Derive fills the derived columns of every row in place. It stops at the
// first row whose temperature cannot be parsed and leaves the table underived.
func Derive(table *models.ForecastTable) error {
	nums := make([]int, len(table.Rows))
	for i, row := range table.Rows {
		n, err := TemperatureNumber(row.TemperatureText)
		if err != nil {
			var parseErr *TemperatureParseError
			if errors.As(err, &parseErr) {
				parseErr.Row = i
			}
			return err
		}
		nums[i] = n
	}

	for i := range table.Rows {
		table.Rows[i].TemperatureNumber = nums[i]
		table.Rows[i].IsNight = IsNight(table.Rows[i].TemperatureText)
	}
	table.Derived = true
	return nil
}

// Mean returns the arithmetic mean of the temperature column. It reports
// false for an empty table.
func Mean(table *models.ForecastTable) (float64, bool) {
	if len(table.Rows) == 0 {
		return 0, false
	}
	sum := 0
	for _, row := range table.Rows {
		sum += row.TemperatureNumber
	}
	return float64(sum) / float64(len(table.Rows)), true
}

// NightRows returns the night rows in their original order
func NightRows(table *models.ForecastTable) []models.ForecastRow {
	var night []models.ForecastRow
	for _, i := range NightIndices(table) {
		night = append(night, table.Rows[i])
	}
	return night
}

// NightIndices returns the positions of the night rows in the table
func NightIndices(table *models.ForecastTable) []int {
	var indices []int
	for i, row := range table.Rows {
		if row.IsNight {
			indices = append(indices, i)
		}
	}
	return indices
}

// Summary holds the figures reported after a run
type Summary struct {
	Rows            int                  `json:"rows"`
	MeanTemperature float64              `json:"meanTemperature"`
	HasMean         bool                 `json:"hasMean"`
	Night           []models.ForecastRow `json:"night"`
}

// Summarize computes the summary of a derived table
func Summarize(table *models.ForecastTable) Summary {
	mean, ok := Mean(table)
	return Summary{
		Rows:            table.Len(),
		MeanTemperature: mean,
		HasMean:         ok,
		Night:           NightRows(table),
	}
}
