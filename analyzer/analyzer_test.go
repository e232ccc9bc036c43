package analyzer

import (
	"errors"
	"testing"

	"forecast-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(period, temp string) models.ForecastRow {
	return models.ForecastRow{ForecastItem: models.ForecastItem{Period: period, TemperatureText: temp}}
}

func sampleTable() *models.ForecastTable {
	return &models.ForecastTable{Rows: []models.ForecastRow{
		row("Tonight", "Low: 49 °F"),
		row("Friday", "High: 68 °F"),
		row("Friday Night", "Low: 51 °F"),
		row("Saturday", "High: 70 °F"),
	}}
}

func TestTemperatureNumber(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Low: 49 °F", 49},
		{"High: 68 °F", 68},
		{"High: 100 °F", 100},
		{"Low: 7 °F", 7},
		{"Low: -5 °F", 5},
		{"Lows 40 to 45", 40},
		{"007", 7},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := TemperatureNumber(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemperatureNumberNoDigits(t *testing.T) {
	_, err := TemperatureNumber("Low: -- °F")

	var parseErr *TemperatureParseError
	require.True(t, errors.As(err, &parseErr))
	assert.True(t, errors.Is(err, ErrNoDigits))
	assert.Equal(t, "Low: -- °F", parseErr.Text)
}

func TestTemperatureNumberOverflow(t *testing.T) {
	_, err := TemperatureNumber("High: 99999999999999999999999 °F")

	var parseErr *TemperatureParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestIsNight(t *testing.T) {
	assert.True(t, IsNight("Low: 49 °F"))
	assert.False(t, IsNight("High: 68 °F"))
	assert.False(t, IsNight("low: 40 °F"))
	assert.False(t, IsNight(""))
}

func TestDerive(t *testing.T) {
	table := sampleTable()
	require.NoError(t, Derive(table))

	assert.True(t, table.Derived)
	want := []int{49, 68, 51, 70}
	for i, r := range table.Rows {
		assert.Equal(t, want[i], r.TemperatureNumber)
	}
	assert.True(t, table.Rows[0].IsNight)
	assert.False(t, table.Rows[1].IsNight)
	assert.True(t, table.Rows[2].IsNight)
	assert.False(t, table.Rows[3].IsNight)
}

func TestDeriveFailsOnRowWithoutDigits(t *testing.T) {
	table := sampleTable()
	table.Rows[2].TemperatureText = "Low: N/A"

	err := Derive(table)

	var parseErr *TemperatureParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Row)
	assert.Contains(t, err.Error(), "row 2")
	assert.False(t, table.Derived)
	assert.Equal(t, 0, table.Rows[0].TemperatureNumber)
}

func TestMean(t *testing.T) {
	table := sampleTable()
	require.NoError(t, Derive(table))

	mean, ok := Mean(table)
	require.True(t, ok)
	assert.Equal(t, 59.5, mean)

	_, ok = Mean(&models.ForecastTable{})
	assert.False(t, ok)
}

func TestNightRows(t *testing.T) {
	table := sampleTable()
	require.NoError(t, Derive(table))

	night := NightRows(table)
	require.Len(t, night, 2)
	assert.Equal(t, "Tonight", night[0].Period)
	assert.Equal(t, "Friday Night", night[1].Period)
	assert.Equal(t, []int{0, 2}, NightIndices(table))
}

func TestSummarize(t *testing.T) {
	table := sampleTable()
	require.NoError(t, Derive(table))

	s := Summarize(table)
	assert.Equal(t, 4, s.Rows)
	assert.True(t, s.HasMean)
	assert.Equal(t, 59.5, s.MeanTemperature)
	assert.Len(t, s.Night, 2)

	empty := Summarize(&models.ForecastTable{})
	assert.Equal(t, 0, empty.Rows)
	assert.False(t, empty.HasMean)
	assert.Empty(t, empty.Night)
}
