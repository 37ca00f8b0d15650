package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"vtcland/services/fare"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

var (
	ErrMissingAPIKey = errors.New("maps: API key is not configured")
	ErrNoResult      = errors.New("maps: no result")
)

// Client talks to the Google Geocoding and Distance Matrix APIs.
type Client struct {
	APIKey  string
	Region  string // ccTLD bias, e.g. "fr"
	BaseURL string
	HTTP    *http.Client
}

func NewClient(apiKey, region string) *Client {
	return &Client{
		APIKey:  apiKey,
		Region:  region,
		BaseURL: defaultBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// ResolveAddress returns the best formatted address for partial text.
func (c *Client) ResolveAddress(ctx context.Context, partial string) (string, error) {
	q := url.Values{}
	q.Set("address", partial)
	if c.Region != "" {
		q.Set("region", c.Region)
	}

	var resp geocodeResponse
	if err := c.get(ctx, "/geocode/json", q, &resp); err != nil {
		return "", err
	}
	if resp.Status == "ZERO_RESULTS" || len(resp.Results) == 0 {
		return "", ErrNoResult
	}
	if resp.Status != "OK" {
		return "", fmt.Errorf("maps: geocode status %s", resp.Status)
	}
	return resp.Results[0].FormattedAddress, nil
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Text  string  `json:"text"`
				Value float64 `json:"value"` // metres
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

// Distance returns the driving distance between two addresses.
func (c *Client) Distance(ctx context.Context, origin, destination string) (fare.Route, error) {
	q := url.Values{}
	q.Set("origins", origin)
	q.Set("destinations", destination)
	q.Set("mode", "driving")
	q.Set("units", "metric")
	if c.Region != "" {
		q.Set("region", c.Region)
	}

	var resp distanceMatrixResponse
	if err := c.get(ctx, "/distancematrix/json", q, &resp); err != nil {
		return fare.Route{}, err
	}
	if resp.Status != "OK" {
		return fare.Route{}, fmt.Errorf("maps: distance matrix status %s", resp.Status)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return fare.Route{}, ErrNoResult
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return fare.Route{}, fmt.Errorf("maps: route status %s", el.Status)
	}
	return fare.Route{Text: el.Distance.Text, Km: el.Distance.Value / 1000}, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	q.Set("key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("maps: build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("maps: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps: unexpected HTTP status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("maps: decode response: %w", err)
	}
	return nil
}
