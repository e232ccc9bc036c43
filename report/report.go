// Package report prints diagnostic console output for a pipeline run.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"forecast-scraper/analyzer"
	"forecast-scraper/models"
)

// Print writes the extracted items, the table, the derived columns, the
// mean temperature and the night rows to w
func Print(w io.Writer, run models.Run, summary analyzer.Summary) error {
	p := &printer{w: w}

	p.section("Forecast for %s", run.Location)
	p.line("source: %s", run.SourceURL)
	p.line("fetched: %s", run.FetchedAt.Format("2006-01-02 15:04:05 MST"))

	p.section("Periods")
	p.list(run.Table.Rows, func(r models.ForecastRow) string { return r.Period })
	p.section("Short descriptions")
	p.list(run.Table.Rows, func(r models.ForecastRow) string { return r.ShortDescription })
	p.section("Temperatures")
	p.list(run.Table.Rows, func(r models.ForecastRow) string { return r.TemperatureText })
	p.section("Detailed descriptions")
	p.list(run.Table.Rows, func(r models.ForecastRow) string { return r.DetailedDescription })

	positions := make([]int, run.Table.Len())
	for i := range positions {
		positions[i] = i
	}
	p.section("Weather report")
	p.table(run.Table.Rows, positions, false)

	p.section("Temperature numbers")
	for i, r := range run.Table.Rows {
		p.line("%d\t%d", i, r.TemperatureNumber)
	}

	p.section("Mean temperature")
	if summary.HasMean {
		p.line("%g", summary.MeanTemperature)
	} else {
		p.line("n/a")
	}

	p.section("Night rows")
	p.table(run.Table.Rows, analyzer.NightIndices(&run.Table), true)

	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) section(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	p.line("\n%s\n%s", title, strings.Repeat("=", len(title)))
}

func (p *printer) list(rows []models.ForecastRow, field func(models.ForecastRow) string) {
	values := make([]string, len(rows))
	for i, r := range rows {
		values[i] = fmt.Sprintf("%q", field(r))
	}
	p.line("[%s]", strings.Join(values, ", "))
}

// table prints the rows at the given positions, labelled with those positions
func (p *printer) table(rows []models.ForecastRow, indices []int, derived bool) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	header := "\tperiod\tshort_desc\ttemp\tdesc"
	if derived {
		header += "\ttemp_num\tis_night"
	}
	fmt.Fprintln(tw, header)
	for _, i := range indices {
		r := rows[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s", i, r.Period, r.ShortDescription, r.TemperatureText, r.DetailedDescription)
		if derived {
			fmt.Fprintf(tw, "\t%d\t%t", r.TemperatureNumber, r.IsNight)
		}
		fmt.Fprintln(tw)
	}
	p.err = tw.Flush()
}
