package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"forecast-scraper/analyzer"
	"forecast-scraper/models"
	"forecast-scraper/persist"
	"forecast-scraper/report"
)

func main() {
	file := flag.String("file", "weatherreport.xlsx", "Spreadsheet written by forecast-scraper")
	sheet := flag.String("sheet", "weather", "Sheet name")
	flag.Parse()

	table, err := persist.ReadXLSX(*file, *sheet)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}

	info, err := os.Stat(*file)
	if err != nil {
		log.Fatalf("Failed to stat %s: %v", *file, err)
	}

	summary := analyzer.Summarize(table)
	run := models.Run{
		Location:        *sheet,
		SourceURL:       *file,
		FetchedAt:       info.ModTime().In(time.Local),
		MeanTemperature: summary.MeanTemperature,
		Table:           *table,
	}

	if err := report.Print(os.Stdout, run, summary); err != nil {
		log.Fatalf("Failed to print report: %v", err)
	}
	fmt.Printf("\n%d rows read from %s\n", table.Len(), *file)
}
