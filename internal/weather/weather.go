// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

// Package weather fetches current conditions from the OpenWeather API.
package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
)

// DefaultBaseURL is the OpenWeather API endpoint.
const DefaultBaseURL = "https://api.openweathermap.org"

// Conditions is the subset of the OpenWeather response the assistant uses.
type Conditions struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature_celsius"`
	Humidity    int     `json:"humidity_percent"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed_ms"`
}

// Provider returns current conditions for a city.
type Provider interface {
	Current(ctx context.Context, city string) (*Conditions, error)
}

// Client calls the OpenWeather current-weather endpoint. Requests use
// metric units.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient creates a weather client. An empty baseURL falls back to
// DefaultBaseURL. The API key is checked at call time so a keyless
// client constructs fine but reports a coded error when used.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Current fetches the current conditions for city.
func (c *Client) Current(ctx context.Context, city string) (*Conditions, error) {
	if strings.TrimSpace(city) == "" {
		return nil, oops.Code("WEATHER_INVALID_INPUT").Errorf("city must not be empty")
	}
	if c.apiKey == "" {
		return nil, oops.Code("WEATHER_BAD_CREDENTIALS").Errorf("weather API key not configured")
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")
	endpoint := c.baseURL + "/data/2.5/weather?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, oops.Code("WEATHER_REQUEST_FAILED").With("city", city).Wrap(err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, oops.Code("WEATHER_REQUEST_FAILED").With("city", city).Wrap(err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is not actionable

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		return nil, oops.Code("WEATHER_CITY_NOT_FOUND").
			With("city", city).
			Errorf("no weather data for %q", city)
	case http.StatusUnauthorized:
		return nil, oops.Code("WEATHER_BAD_CREDENTIALS").
			Errorf("weather API rejected the configured key")
	default:
		return nil, oops.Code("WEATHER_BACKEND_ERROR").
			With("city", city).
			With("status", resp.StatusCode).
			Errorf("weather API returned status %d", resp.StatusCode)
	}

	var body openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, oops.Code("WEATHER_DECODE_FAILED").With("city", city).Wrap(err)
	}

	cond := &Conditions{
		City:        body.Name,
		Temperature: body.Main.Temp,
		Humidity:    body.Main.Humidity,
		WindSpeed:   body.Wind.Speed,
	}
	if cond.City == "" {
		cond.City = city
	}
	if len(body.Weather) > 0 {
		cond.Description = body.Weather[0].Description
	}
	return cond, nil
}

// Ping verifies the API key and connectivity with a probe lookup.
// Used by the status command.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Current(ctx, "London")
	return err
}

// openWeatherResponse mirrors the fields of the OpenWeather current
// weather payload that Conditions is built from.
type openWeatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

var _ Provider = (*Client)(nil)
