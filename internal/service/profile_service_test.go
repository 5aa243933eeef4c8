package service

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProfileServiceDefaultsAndUpdate(t *testing.T) {
	gdb := setupHealthTestDB(t)
	user := createTestUser(t, gdb, "alice")
	svc := NewProfileService(gdb, "Taipei")

	profile, err := svc.Get(user.ID)
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if profile.City != "Taipei" {
		t.Fatalf("expected default city, got %q", profile.City)
	}

	updated, err := svc.Update(user.ID, ProfileInput{DisplayName: " Alice ", City: "Tokyo"})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.DisplayName != "Alice" || updated.City != "Tokyo" {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	reset, err := svc.Update(user.ID, ProfileInput{DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if reset.City != "Taipei" {
		t.Fatalf("expected empty city to fall back to default, got %q", reset.City)
	}

	if _, err := svc.Update(user.ID, ProfileInput{DisplayName: strings.Repeat("a", 101)}); !errors.Is(err, ErrProfileInvalidInput) {
		t.Fatalf("expected ErrProfileInvalidInput, got %v", err)
	}
}

func TestProfileServiceCities(t *testing.T) {
	gdb := setupHealthTestDB(t)
	alice := createTestUser(t, gdb, "alice")
	bob := createTestUser(t, gdb, "bob")
	carol := createTestUser(t, gdb, "carol")
	svc := NewProfileService(gdb, "Taipei")

	if _, err := svc.Update(alice.ID, ProfileInput{City: "Tokyo"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := svc.Update(bob.ID, ProfileInput{City: "tokyo"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := svc.Get(carol.ID); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	cities, err := svc.Cities()
	if err != nil {
		t.Fatalf("cities failed: %v", err)
	}
	if len(cities) != 2 || cities[0] != "Taipei" || !strings.EqualFold(cities[1], "tokyo") {
		t.Fatalf("expected Taipei and Tokyo once each, got %v", cities)
	}
}

func TestProfileServiceSaveAvatar(t *testing.T) {
	gdb := setupHealthTestDB(t)
	user := createTestUser(t, gdb, "alice")
	dir := t.TempDir()
	svc := NewProfileService(gdb, "Taipei").WithAvatarStorage(dir, "/uploads/")

	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		for y := 0; y < 200; y++ {
			src.Set(x, y, color.RGBA{R: uint8(x % 256), G: 80, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode jpeg failed: %v", err)
	}

	profile, err := svc.SaveAvatar(user.ID, buf.Bytes())
	if err != nil {
		t.Fatalf("save avatar failed: %v", err)
	}
	if !strings.HasPrefix(profile.AvatarURL, "/uploads/avatars/") || !strings.HasSuffix(profile.AvatarURL, ".png") {
		t.Fatalf("unexpected avatar url %q", profile.AvatarURL)
	}

	stored := filepath.Join(dir, "avatars", strings.TrimPrefix(profile.AvatarURL, "/uploads/avatars/"))
	f, err := os.Open(stored)
	if err != nil {
		t.Fatalf("avatar file missing: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("stored avatar is not a png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != AvatarSize || b.Dy() != AvatarSize {
		t.Fatalf("expected %dx%d avatar, got %v", AvatarSize, AvatarSize, b)
	}

	if _, err := svc.SaveAvatar(user.ID, []byte("plain text, not an image")); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
}

func TestProfileServiceAvatarStorageDisabled(t *testing.T) {
	gdb := setupHealthTestDB(t)
	user := createTestUser(t, gdb, "alice")
	svc := NewProfileService(gdb, "Taipei")

	if _, err := svc.SaveAvatar(user.ID, []byte{0x89, 'P', 'N', 'G'}); !errors.Is(err, ErrAvatarStorageDisabled) {
		t.Fatalf("expected ErrAvatarStorageDisabled, got %v", err)
	}
}

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png failed: %v", err)
	}
	return buf.Bytes()
}

func TestProfileServiceRejectsOversizedDimensions(t *testing.T) {
	gdb := setupHealthTestDB(t)
	user := createTestUser(t, gdb, "alice")
	dir := t.TempDir()
	svc := NewProfileService(gdb, "Taipei").WithAvatarStorage(dir, "/uploads/")

	// 文件很小，但 IHDR 声明 60000×60000
	data := encodeTestPNG(t, 1, 1)
	binary.BigEndian.PutUint32(data[16:20], 60000)
	binary.BigEndian.PutUint32(data[20:24], 60000)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))

	if _, err := svc.SaveAvatar(user.ID, data); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
	if entries, _ := os.ReadDir(filepath.Join(dir, "avatars")); len(entries) != 0 {
		t.Fatalf("expected no avatar written, got %d files", len(entries))
	}
}

func TestProfileServiceReplacesOldAvatarFile(t *testing.T) {
	gdb := setupHealthTestDB(t)
	user := createTestUser(t, gdb, "alice")
	dir := t.TempDir()
	svc := NewProfileService(gdb, "Taipei").WithAvatarStorage(dir, "/uploads/")

	first, err := svc.SaveAvatar(user.ID, encodeTestPNG(t, 32, 32))
	if err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	firstPath := filepath.Join(dir, "avatars", strings.TrimPrefix(first.AvatarURL, "/uploads/avatars/"))

	second, err := svc.SaveAvatar(user.ID, encodeTestPNG(t, 64, 48))
	if err != nil {
		t.Fatalf("second upload failed: %v", err)
	}
	if second.AvatarURL == first.AvatarURL {
		t.Fatal("expected a new avatar url")
	}
	if _, err := os.Stat(firstPath); !os.IsNotExist(err) {
		t.Fatalf("expected old avatar removed, stat err = %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "avatars"))
	if err != nil {
		t.Fatalf("read avatar dir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one avatar file, got %d", len(entries))
	}
}
