package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func newAuthEngine(api *API) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.POST("/api/register", api.Register)
	r.POST("/api/login", api.Login)
	r.POST("/api/logout", api.Logout)

	auth := r.Group("/api")
	auth.Use(AuthRequired())
	auth.GET("/profile", api.GetProfile)
	auth.PUT("/profile/password", api.ChangePassword)
	return r
}

func performJSON(r *gin.Engine, method, path string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterValidation(t *testing.T) {
	api, _ := setupHealthAPI(t, Options{})
	r := newAuthEngine(api)

	cases := []struct {
		name    string
		payload map[string]any
		status  int
	}{
		{"blank", map[string]any{"username": " ", "password": "pw", "confirm_password": "pw"}, http.StatusBadRequest},
		{"mismatch", map[string]any{"username": "bob", "password": "pw1", "confirm_password": "pw2"}, http.StatusBadRequest},
		{"taken", map[string]any{"username": "tester", "password": "pw", "confirm_password": "pw"}, http.StatusConflict},
		{"ok", map[string]any{"username": "bob", "password": "pw", "confirm_password": "pw"}, http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performJSON(r, http.MethodPost, "/api/register", tc.payload, nil)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestLoginLogoutAndPasswordChange(t *testing.T) {
	api, _ := setupHealthAPI(t, Options{})
	r := newAuthEngine(api)

	w := performJSON(r, http.MethodPost, "/api/register", map[string]any{
		"username": "carol", "password": "old-pass", "confirm_password": "old-pass",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", w.Code, w.Body.String())
	}

	w = performJSON(r, http.MethodPost, "/api/login", map[string]any{"username": "carol", "password": "wrong"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", w.Code)
	}

	w = performJSON(r, http.MethodPost, "/api/login", map[string]any{"username": "carol", "password": "old-pass"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected login success, got %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()

	w = performJSON(r, http.MethodGet, "/api/profile", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected profile with session, got %d", w.Code)
	}

	w = performJSON(r, http.MethodPut, "/api/profile/password", map[string]any{
		"current_password": "nope", "new_password": "new-pass", "confirm_password": "new-pass",
	}, cookies)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong current password, got %d", w.Code)
	}

	w = performJSON(r, http.MethodPut, "/api/profile/password", map[string]any{
		"current_password": "old-pass", "new_password": "new-pass", "confirm_password": "new-pass",
	}, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected password change, got %d: %s", w.Code, w.Body.String())
	}

	w = performJSON(r, http.MethodPost, "/api/login", map[string]any{"username": "carol", "password": "new-pass"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected login with new password, got %d", w.Code)
	}

	w = performJSON(r, http.MethodPost, "/api/logout", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected logout, got %d", w.Code)
	}
	w = performJSON(r, http.MethodGet, "/api/profile", nil, w.Result().Cookies())
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}
