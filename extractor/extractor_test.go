package extractor

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"forecast-scraper/markup"
	"forecast-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type block struct {
	period, short, temp, title string
}

var week = []block{
	{"Tonight", "Mostly Clear", "Low: 49 °F", "Tonight: Mostly clear, with a low around 49."},
	{"Friday", "Sunny", "High: 68 °F", "Friday: Sunny, with a high near 68."},
	{"Friday Night", "Partly Cloudy", "Low: 51 °F", "Friday Night: Partly cloudy, with a low around 51."},
	{"Saturday", "Chance Rain", "High: 70 °F", "Saturday: A chance of rain. Cloudy, with a high near 70."},
}

// forecastPage renders blocks the way forecast.weather.gov lays out its tombstones
func forecastPage(blocks []block) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="current-conditions"><p class="temp">Now: 55 &deg;F</p></div>`)
	b.WriteString(`<div id="seven-day-forecast" class="panel panel-default"><div class="panel-body" id="seven-day-forecast-body">`)
	b.WriteString(`<ul id="seven-day-forecast-list" class="list-unstyled">`)
	for _, bl := range blocks {
		tempClass := "temp temp-high"
		if strings.HasPrefix(bl.temp, "Low") {
			tempClass = "temp temp-low"
		}
		fmt.Fprintf(&b, `<li class="forecast-tombstone"><div class="tombstone-container">
<p class="period-name">%s<br><br></p>
<p><img src="newimages/medium/nfew.png" alt="%s" title="%s" class="forecast-icon"></p>
<p class="short-desc">%s</p>
<p class="%s">%s</p>
</div></li>`, bl.period, bl.title, bl.title, bl.short, tempClass, bl.temp)
	}
	b.WriteString(`</ul></div></div></body></html>`)
	return b.String()
}

func extract(t *testing.T, page string) ([]models.ForecastItem, error) {
	t.Helper()
	doc, err := markup.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return Extract(doc, DefaultMarkup())
}

func TestExtractDocumentOrder(t *testing.T) {
	for n := 1; n <= len(week); n++ {
		t.Run(fmt.Sprintf("%d blocks", n), func(t *testing.T) {
			items, err := extract(t, forecastPage(week[:n]))
			require.NoError(t, err)
			require.Len(t, items, n)
			for i, item := range items {
				assert.Equal(t, week[i].period, item.Period)
				assert.Equal(t, week[i].short, item.ShortDescription)
				assert.Equal(t, week[i].temp, item.TemperatureText)
				assert.Equal(t, week[i].title, item.DetailedDescription)
			}
		})
	}
}

func TestExtractDetailComesFromTitle(t *testing.T) {
	page := `<div id="seven-day-forecast"><div class="tombstone-container">
<p class="period-name">Tonight</p>
<p><img src="x.png" title="From the title" alt="From the alt">Image caption text</p>
<p class="short-desc">Clear</p>
<p class="temp temp-low">Low: 40 &deg;F</p>
</div></div>`

	items, err := extract(t, page)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "From the title", items[0].DetailedDescription)
	assert.Equal(t, "Clear", items[0].ShortDescription)
	assert.Equal(t, "Low: 40 °F", items[0].TemperatureText)
}

func TestExtractIgnoresMarkersOutsideContainer(t *testing.T) {
	items, err := extract(t, forecastPage(week[:2]))
	require.NoError(t, err)
	for _, item := range items {
		assert.NotEqual(t, "Now: 55 °F", item.TemperatureText)
	}
}

func TestExtractMissingContainer(t *testing.T) {
	_, err := extract(t, `<html><body><div id="other"></div></body></html>`)

	var shapeErr *MarkupShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "#seven-day-forecast", shapeErr.Marker)
	assert.Equal(t, -1, shapeErr.Block)
}

func TestExtractNoBlocks(t *testing.T) {
	_, err := extract(t, `<div id="seven-day-forecast"><p>Forecast unavailable</p></div>`)

	var shapeErr *MarkupShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, ".tombstone-container", shapeErr.Marker)
}

func TestExtractBlockMissingImage(t *testing.T) {
	page := forecastPage(week[:3])
	// drop the image of the last block only
	i := strings.LastIndex(page, "<img")
	j := strings.Index(page[i:], ">")
	page = page[:i] + page[i+j+1:]

	_, err := extract(t, page)

	var shapeErr *MarkupShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, 2, shapeErr.Block)
	assert.Equal(t, "img", shapeErr.Marker)
	assert.Contains(t, err.Error(), "block 2")
}

func TestExtractBlockMissingTitle(t *testing.T) {
	page := strings.Replace(forecastPage(week[:1]), `title="`, `data-title="`, 1)

	_, err := extract(t, page)

	var shapeErr *MarkupShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "img[title]", shapeErr.Marker)
	assert.Equal(t, 0, shapeErr.Block)
}

func TestExtractBlockMissingTemperature(t *testing.T) {
	page := strings.Replace(forecastPage(week[:2]), `class="temp temp-high"`, `class="warm"`, 1)

	_, err := extract(t, page)

	var shapeErr *MarkupShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, ".temp", shapeErr.Marker)
	assert.Equal(t, 1, shapeErr.Block)
}
