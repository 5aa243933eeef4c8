package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/healthlog/internal/service"
	"github.com/healthlog/internal/weather"
)

type stubFetcher struct {
	mu     sync.Mutex
	fail   bool
	temp   float64
	cities []string
}

func (s *stubFetcher) Fetch(_ context.Context, city string) (weather.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities = append(s.cities, city)
	if s.fail {
		return weather.Report{}, fmt.Errorf("%w: stub failure", weather.ErrUnavailable)
	}
	return weather.Report{City: city, Temperature: s.temp, Humidity: 70, IconCode: "01d", FetchedAt: time.Now()}, nil
}

func (s *stubFetcher) setFail(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

func (s *stubFetcher) lastCity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cities) == 0 {
		return ""
	}
	return s.cities[len(s.cities)-1]
}

func TestGetWeatherUsesProfileCity(t *testing.T) {
	fetcher := &stubFetcher{temp: 21.5}
	svc := weather.NewService(fetcher, nil, "Taipei")
	api, user := setupHealthAPI(t, Options{Weather: svc})

	if _, err := api.profiles.Update(user.ID, service.ProfileInput{City: "Hualien"}); err != nil {
		t.Fatalf("failed to set city: %v", err)
	}

	c, w := newJSONContext(http.MethodGet, "/api/weather", nil, user.ID)
	api.GetWeather(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	report := decodeBody(t, w)["weather"].(map[string]any)
	if report["city"] != "Hualien" || report["temperature"].(float64) != 21.5 {
		t.Fatalf("unexpected report %v", report)
	}
	if report["icon_url"] != "https://openweathermap.org/img/wn/01d@2x.png" {
		t.Fatalf("unexpected icon url %v", report["icon_url"])
	}
	if fetcher.lastCity() != "Hualien" {
		t.Fatalf("expected fetch for profile city, got %q", fetcher.lastCity())
	}
}

func TestRefreshWeatherKeepsLastKnownOnFailure(t *testing.T) {
	fetcher := &stubFetcher{temp: 18}
	svc := weather.NewService(fetcher, nil, "Taipei")
	api, user := setupHealthAPI(t, Options{Weather: svc})

	c, w := newJSONContext(http.MethodPost, "/api/weather/refresh", nil, user.ID)
	api.RefreshWeather(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	fetcher.setFail(true)
	c, w = newJSONContext(http.MethodPost, "/api/weather/refresh", nil, user.ID)
	api.RefreshWeather(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected stale report, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["stale"] != true {
		t.Fatalf("expected stale flag, got %v", body)
	}
	if temp := body["weather"].(map[string]any)["temperature"].(float64); temp != 18 {
		t.Fatalf("expected last known temperature, got %v", temp)
	}

	c, w = newJSONContext(http.MethodPost, "/api/weather/refresh?city=Nowhere", nil, user.ID)
	api.RefreshWeather(c)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 without cached report, got %d", w.Code)
	}
}

func TestWeatherNotConfigured(t *testing.T) {
	api, user := setupHealthAPI(t, Options{})

	c, w := newJSONContext(http.MethodGet, "/api/weather", nil, user.ID)
	api.GetWeather(c)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	svc := weather.NewService(weather.NewClient(""), nil, "Taipei")
	api, user = setupHealthAPI(t, Options{Weather: svc})
	c, w = newJSONContext(http.MethodGet, "/api/weather", nil, user.ID)
	api.GetWeather(c)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without api key, got %d", w.Code)
	}
}

func TestStreamWeatherPushesCachedThenFresh(t *testing.T) {
	fetcher := &stubFetcher{temp: 10}
	svc := weather.NewService(fetcher, nil, "Taipei")
	api, user := setupHealthAPI(t, Options{Weather: svc})

	if _, err := svc.Refresh(context.Background(), "Taipei"); err != nil {
		t.Fatalf("failed to prime cache: %v", err)
	}

	engine := gin.New()
	engine.GET("/api/weather/stream", func(c *gin.Context) {
		c.Set(userIDContextKey, user.ID)
		api.StreamWeather(c)
	})
	server := httptest.NewServer(engine)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/weather/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first map[string]map[string]any
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("failed to read cached report: %v", err)
	}
	if first["weather"]["temperature"].(float64) != 10 {
		t.Fatalf("unexpected cached report %v", first)
	}

	deadline := time.Now().Add(2 * time.Second)
	for svc.Subscribers("Taipei") == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	fetcher.mu.Lock()
	fetcher.temp = 12
	fetcher.mu.Unlock()
	if _, err := svc.Refresh(context.Background(), "Taipei"); err != nil {
		t.Fatalf("failed to refresh: %v", err)
	}

	var second map[string]map[string]any
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("failed to read pushed report: %v", err)
	}
	if second["weather"]["temperature"].(float64) != 12 {
		t.Fatalf("unexpected pushed report %v", second)
	}
}
