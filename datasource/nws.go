package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the National Weather Service point forecast page
const DefaultBaseURL = "https://forecast.weather.gov/MapClick.php"

// NetworkError is returned when the forecast page cannot be fetched
type NetworkError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error fetching %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NWSPageSource fetches the seven-day forecast page for one point
type NWSPageSource struct {
	pageURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNWSPageSource creates a page source for the given coordinates
func NewNWSPageSource(baseURL string, latitude, longitude float64, userAgent string, timeout time.Duration) *NWSPageSource {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(longitude, 'f', -1, 64))

	return &NWSPageSource{
		pageURL:   baseURL + "?" + params.Encode(),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the source name
func (s *NWSPageSource) Name() string {
	return "NWS"
}

// URL returns the page address including the coordinates
func (s *NWSPageSource) URL() string {
	return s.pageURL
}

// FetchPage issues a single GET for the forecast page. There are no retries.
func (s *NWSPageSource) FetchPage(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: s.pageURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: s.pageURL, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: s.pageURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{URL: s.pageURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response status %s", resp.Status)}
	}

	return body, nil
}

var _ PageSource = (*NWSPageSource)(nil)
