// Package tabulate turns extracted forecast fields into a forecast table.
package tabulate

import (
	"fmt"

	"forecast-scraper/models"
)

// AlignmentError is returned when the field sequences do not line up
type AlignmentError struct {
	Periods           int
	ShortDescriptions int
	Temperatures      int
	Descriptions      int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("misaligned extraction: %d periods, %d short descriptions, %d temperatures, %d descriptions",
		e.Periods, e.ShortDescriptions, e.Temperatures, e.Descriptions)
}

// FromItems builds a table with one row per item, in order
func FromItems(items []models.ForecastItem) *models.ForecastTable {
	table := &models.ForecastTable{
		Rows: make([]models.ForecastRow, len(items)),
	}
	for i, item := range items {
		table.Rows[i] = models.ForecastRow{ForecastItem: item}
	}
	return table
}

// FromColumns zips four parallel sequences into a table. The sequences must
// have equal length; nothing is truncated or padded.
func FromColumns(periods, shortDescs, temps, descs []string) (*models.ForecastTable, error) {
	n := len(periods)
	if len(shortDescs) != n || len(temps) != n || len(descs) != n {
		return nil, &AlignmentError{
			Periods:           len(periods),
			ShortDescriptions: len(shortDescs),
			Temperatures:      len(temps),
			Descriptions:      len(descs),
		}
	}

	items := make([]models.ForecastItem, n)
	for i := range items {
		items[i] = models.ForecastItem{
			Period:              periods[i],
			ShortDescription:    shortDescs[i],
			TemperatureText:     temps[i],
			DetailedDescription: descs[i],
		}
	}
	return FromItems(items), nil
}
