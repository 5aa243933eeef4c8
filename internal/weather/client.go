// Package weather fetches current conditions from OpenWeatherMap and keeps the last
// known report per city for readers and subscribers.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

var (
	// ErrAPIKeyMissing is returned when no API key is configured.
	ErrAPIKeyMissing = errors.New("weather api key is not configured")
	// ErrUnavailable wraps any failure to obtain a fresh report.
	ErrUnavailable = errors.New("weather unavailable")
	// ErrCityRequired is returned for a blank city.
	ErrCityRequired = errors.New("city is required")
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Report is one observation of current conditions.
type Report struct {
	City          string    `json:"city"`
	Temperature   float64   `json:"temperature"`
	FeelsLike     float64   `json:"feels_like"`
	Humidity      int       `json:"humidity"`
	WindSpeedMs   float64   `json:"wind_speed_ms"`
	PressureHPa   int       `json:"pressure_hpa"`
	CloudinessPct int       `json:"cloudiness_pct"`
	IconCode      string    `json:"icon_code"`
	Description   string    `json:"description,omitempty"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// IconURL returns the OpenWeatherMap image for the icon code.
func (r Report) IconURL() string {
	if r.IconCode == "" {
		return ""
	}
	return "https://openweathermap.org/img/wn/" + r.IconCode + "@2x.png"
}

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Icon        string `json:"icon"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Message string `json:"message"`
}

// Client talks to the current weather endpoint.
type Client struct {
	http    httpDoer
	baseURL string
	apiKey  string
	now     func() time.Time
}

// NewClient builds a client with a 10s timeout against DefaultBaseURL.
func NewClient(apiKey string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: DefaultBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		now:     time.Now,
	}
}

func (c *Client) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 10 * time.Second}
		return
	}
	c.http = client
}

func (c *Client) SetBaseURL(base string) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	c.baseURL = base
}

// Fetch requests metric conditions for city.
func (c *Client) Fetch(ctx context.Context, city string) (Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Report{}, ErrCityRequired
	}
	if c.apiKey == "" {
		return Report{}, ErrAPIKeyMissing
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")
	endpoint := c.baseURL + "/weather?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Report{}, fmt.Errorf("build weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "healthlog-weather/1.0")

	logWeatherExchange(city, "request", c.baseURL+"/weather?q="+url.QueryEscape(city)+"&units=metric")

	resp, err := c.http.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("%w: request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Report{}, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	logWeatherExchange(city, "response "+resp.Status, string(body))

	var decoded currentResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Report{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := strings.TrimSpace(decoded.Message)
		if msg == "" {
			msg = resp.Status
		}
		return Report{}, fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}

	report := Report{
		City:          decoded.Name,
		Temperature:   decoded.Main.Temp,
		FeelsLike:     decoded.Main.FeelsLike,
		Humidity:      decoded.Main.Humidity,
		WindSpeedMs:   decoded.Wind.Speed,
		PressureHPa:   decoded.Main.Pressure,
		CloudinessPct: decoded.Clouds.All,
		FetchedAt:     c.now().UTC(),
	}
	if report.City == "" {
		report.City = city
	}
	if len(decoded.Weather) > 0 {
		report.IconCode = decoded.Weather[0].Icon
		report.Description = decoded.Weather[0].Description
	}
	return report, nil
}
