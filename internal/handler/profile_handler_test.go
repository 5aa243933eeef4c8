package handler

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGetProfileDefaults(t *testing.T) {
	api, user := setupHealthAPI(t, Options{DefaultCity: "Kaohsiung"})

	c, w := newJSONContext(http.MethodGet, "/api/profile", nil, user.ID)
	api.GetProfile(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	profile := decodeBody(t, w)["profile"].(map[string]any)
	if profile["display_name"] != "tester" || profile["city"] != "Kaohsiung" {
		t.Fatalf("unexpected default profile %v", profile)
	}
}

func TestUpdateProfile(t *testing.T) {
	api, user := setupHealthAPI(t, Options{})

	c, w := newJSONContext(http.MethodPut, "/api/profile", map[string]any{
		"display_name": "Tess",
		"city":         "Tainan",
	}, user.ID)
	api.UpdateProfile(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	profile := decodeBody(t, w)["profile"].(map[string]any)
	if profile["display_name"] != "Tess" || profile["city"] != "Tainan" {
		t.Fatalf("unexpected profile %v", profile)
	}

	c, w = newJSONContext(http.MethodPut, "/api/profile", map[string]any{
		"display_name": strings.Repeat("x", 101),
	}, user.ID)
	api.UpdateProfile(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for long display name, got %d", w.Code)
	}
}

func newUploadContext(t *testing.T, field, filename string, data []byte, userID uint) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/profile/avatar", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(userIDContextKey, userID)
	return c, w
}

func TestUploadAvatarStoresSquarePNG(t *testing.T) {
	uploadDir := t.TempDir()
	api, user := setupHealthAPI(t, Options{UploadDir: uploadDir, UploadURL: "/uploads"})

	src := image.NewRGBA(image.Rect(0, 0, 300, 120))
	for x := 0; x < 300; x++ {
		for y := 0; y < 120; y++ {
			src.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("failed to encode source image: %v", err)
	}

	c, w := newUploadContext(t, "avatar", "me.png", buf.Bytes(), user.ID)
	api.UploadAvatar(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	url := decodeBody(t, w)["avatar_url"].(string)
	if !strings.HasPrefix(url, "/uploads/avatars/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected avatar url %q", url)
	}

	stored, err := os.Open(filepath.Join(uploadDir, "avatars", filepath.Base(url)))
	if err != nil {
		t.Fatalf("avatar file missing: %v", err)
	}
	defer stored.Close()
	cfg, err := png.DecodeConfig(stored)
	if err != nil {
		t.Fatalf("stored avatar is not a png: %v", err)
	}
	if cfg.Width != 256 || cfg.Height != 256 {
		t.Fatalf("expected 256x256 avatar, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestUploadAvatarRejectsNonImage(t *testing.T) {
	api, user := setupHealthAPI(t, Options{UploadDir: t.TempDir(), UploadURL: "/uploads"})

	c, w := newUploadContext(t, "avatar", "notes.txt", []byte("just some text"), user.ID)
	api.UploadAvatar(c)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d: %s", w.Code, w.Body.String())
	}

	c, w = newUploadContext(t, "photo", "me.png", []byte("x"), user.ID)
	api.UploadAvatar(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing avatar field, got %d", w.Code)
	}
}
