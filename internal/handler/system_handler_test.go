package handler

import (
	"net/http"
	"testing"
)

func TestHealthCheck(t *testing.T) {
	api, _ := setupHealthAPI(t, Options{})

	c, w := newJSONContext(http.MethodGet, "/healthz", nil, 0)
	api.HealthCheck(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if decodeBody(t, w)["status"] != "ok" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestAppearanceScreens(t *testing.T) {
	api, user := setupHealthAPI(t, Options{})

	c, w := newJSONContext(http.MethodGet, "/api/appearance", nil, user.ID)
	api.Appearance(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if got := len(body["screens"].([]any)); got != 6 {
		t.Fatalf("expected 6 screens, got %d", got)
	}
	types := body["types"].([]any)
	exercise := types[0].(map[string]any)
	if exercise["icon"] != "heart.fill" {
		t.Fatalf("unexpected exercise style %v", exercise)
	}

	c, w = newJSONContext(http.MethodGet, "/api/appearance?screen=goals&lang=zh", nil, user.ID)
	api.Appearance(c)
	screen := decodeBody(t, w)["screen"].(map[string]any)
	if screen["key"] != "goals" {
		t.Fatalf("expected goals screen, got %v", screen["key"])
	}

	c, w = newJSONContext(http.MethodGet, "/api/appearance?screen=settings", nil, user.ID)
	api.Appearance(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown screen, got %d", w.Code)
	}
}
