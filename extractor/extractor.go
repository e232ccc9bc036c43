// Package extractor reads forecast items out of the NWS seven-day forecast markup.
package extractor

import (
	"fmt"

	"forecast-scraper/markup"
	"forecast-scraper/models"
)

// Markup names the markers that locate the forecast on the page
type Markup struct {
	ContainerID     string // id of the seven-day forecast panel
	BlockClass      string // one block per forecast period
	PeriodClass     string
	ShortDescClass  string
	TempClass       string
	ImageTag        string
	DetailAttribute string // attribute of the image holding the detailed description
}

// DefaultMarkup returns the markers used by forecast.weather.gov
func DefaultMarkup() Markup {
	return Markup{
		ContainerID:     "seven-day-forecast",
		BlockClass:      "tombstone-container",
		PeriodClass:     "period-name",
		ShortDescClass:  "short-desc",
		TempClass:       "temp",
		ImageTag:        "img",
		DetailAttribute: "title",
	}
}

// MarkupShapeError is returned when the page does not have the expected structure
type MarkupShapeError struct {
	Marker string
	Block  int // -1 when the failure is not tied to a block
	Reason string
}

func (e *MarkupShapeError) Error() string {
	if e.Block < 0 {
		return fmt.Sprintf("markup shape error: %s %s", e.Marker, e.Reason)
	}
	return fmt.Sprintf("markup shape error: block %d: %s %s", e.Block, e.Marker, e.Reason)
}

// Extract reads one item per forecast block, in page order. All four fields of
// a block are read together so a field can never land in another block's row.
func Extract(doc *markup.Document, m Markup) ([]models.ForecastItem, error) {
	container, ok := doc.FindByID(m.ContainerID)
	if !ok {
		return nil, &MarkupShapeError{Marker: "#" + m.ContainerID, Block: -1, Reason: "not found"}
	}

	blocks := container.FindAll(markup.HasClass(m.BlockClass))
	if len(blocks) == 0 {
		return nil, &MarkupShapeError{Marker: "." + m.BlockClass, Block: -1, Reason: "not found"}
	}

	period := markup.HasClass(m.PeriodClass)
	shortDesc := markup.HasClass(m.ShortDescClass)
	temp := markup.HasClass(m.TempClass)
	image := markup.HasTag(m.ImageTag)

	items := make([]models.ForecastItem, 0, len(blocks))
	for i, block := range blocks {
		var item models.ForecastItem
		var err error

		if item.Period, err = textOf(block, period, "."+m.PeriodClass, i); err != nil {
			return nil, err
		}
		if item.ShortDescription, err = textOf(block, shortDesc, "."+m.ShortDescClass, i); err != nil {
			return nil, err
		}
		if item.TemperatureText, err = textOf(block, temp, "."+m.TempClass, i); err != nil {
			return nil, err
		}

		img, ok := block.FindFirst(image)
		if !ok {
			return nil, &MarkupShapeError{Marker: m.ImageTag, Block: i, Reason: "not found"}
		}
		detail, ok := img.Attr(m.DetailAttribute)
		if !ok {
			return nil, &MarkupShapeError{Marker: m.ImageTag + "[" + m.DetailAttribute + "]", Block: i, Reason: "attribute missing"}
		}
		item.DetailedDescription = detail

		items = append(items, item)
	}

	return items, nil
}

func textOf(block markup.Node, p markup.Predicate, marker string, index int) (string, error) {
	n, ok := block.FindFirst(p)
	if !ok {
		return "", &MarkupShapeError{Marker: marker, Block: index, Reason: "not found"}
	}
	return n.Text(), nil
}
