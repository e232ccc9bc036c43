package models

import (
	"time"
)

// Columns is the fixed column order of a forecast table
var Columns = []string{"period", "short_desc", "temp", "desc", "temp_num", "is_night"}

// ForecastItem represents one tombstone block of the seven-day forecast
type ForecastItem struct {
	Period              string `json:"period"`              // e.g. "Tonight"
	ShortDescription    string `json:"shortDescription"`    // e.g. "Mostly Clear"
	TemperatureText     string `json:"temperatureText"`     // e.g. "Low: 49 °F"
	DetailedDescription string `json:"detailedDescription"` // image title text
}

// ForecastRow is a forecast item plus its derived columns
type ForecastRow struct {
	ForecastItem
	TemperatureNumber int  `json:"temperatureNumber"`
	IsNight           bool `json:"isNight"`
}

// ForecastTable is the ordered set of rows built from one page
type ForecastTable struct {
	Rows    []ForecastRow `json:"rows"`
	Derived bool          `json:"derived"` // derived columns have been filled
}

// Len returns the number of rows in the table
func (t *ForecastTable) Len() int {
	return len(t.Rows)
}

// Run represents one archived pipeline execution
type Run struct {
	ID              int64         `json:"id"`
	Location        string        `json:"location"`
	SourceURL       string        `json:"sourceUrl"`
	FetchedAt       time.Time     `json:"fetchedAt"`
	MeanTemperature float64       `json:"meanTemperature"`
	Table           ForecastTable `json:"table"`
}

// RunSummary is run metadata without the forecast rows
type RunSummary struct {
	ID              int64     `json:"id"`
	Location        string    `json:"location"`
	SourceURL       string    `json:"sourceUrl"`
	FetchedAt       time.Time `json:"fetchedAt"`
	MeanTemperature float64   `json:"meanTemperature"`
	RowCount        int       `json:"rowCount"`
}
