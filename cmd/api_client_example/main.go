package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the forecast API")
	refresh := flag.Bool("refresh", false, "Ask the server to fetch a fresh forecast first")
	flag.Parse()

	fmt.Println("Forecast API Client Example")
	fmt.Println("===========================")

	client := &http.Client{Timeout: 60 * time.Second}

	if *refresh {
		fmt.Println("\nRequesting a fresh forecast...")
		resp, err := client.Post(*baseURL+"/api/forecast/refresh", "application/json", nil)
		if err != nil {
			fmt.Printf("Error requesting refresh: %v\n", err)
			os.Exit(1)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			fmt.Printf("Refresh failed (status %d): %s\n", resp.StatusCode, body)
			os.Exit(1)
		}
	}

	// List archived runs
	fmt.Println("\nFetching archived runs...")
	var runs struct {
		Runs []struct {
			ID              int64     `json:"id"`
			FetchedAt       time.Time `json:"fetchedAt"`
			MeanTemperature float64   `json:"meanTemperature"`
			RowCount        int       `json:"rowCount"`
		} `json:"runs"`
		Count int `json:"count"`
	}
	if err := getJSON(client, *baseURL+"/api/forecast/runs?limit=5", &runs); err != nil {
		fmt.Printf("Error fetching runs: %v\n", err)
		os.Exit(1)
	}
	if runs.Count == 0 {
		fmt.Println("No runs archived yet. Try again with -refresh.")
		return
	}
	for _, r := range runs.Runs {
		fmt.Printf("  run %d  %s  %d rows  mean %.1f°F\n", r.ID, r.FetchedAt.Local().Format(time.RFC822), r.RowCount, r.MeanTemperature)
	}

	// Get the latest forecast
	fmt.Println("\nFetching latest forecast...")
	var latest map[string]interface{}
	if err := getJSON(client, *baseURL+"/api/forecast/latest", &latest); err != nil {
		fmt.Printf("Error fetching latest forecast: %v\n", err)
		os.Exit(1)
	}

	prettyJSON, _ := json.MarshalIndent(latest, "", "  ")
	fmt.Printf("\nLatest forecast:\n%s\n", string(prettyJSON))
}

func getJSON(client *http.Client, url string, v interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return json.Unmarshal(body, v)
}
