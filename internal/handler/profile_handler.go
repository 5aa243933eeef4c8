package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/healthlog/internal/db"
	"github.com/healthlog/internal/service"
)

// maxAvatarBytes 头像上传大小上限
const maxAvatarBytes = 5 << 20

type profileRequest struct {
	DisplayName string `json:"display_name"`
	City        string `json:"city"`
}

// GetProfile 返回当前用户的资料
func (a *API) GetProfile(c *gin.Context) {
	userID := currentUserID(c)
	user, err := a.users.Get(userID)
	if err != nil {
		handleUserError(c, err)
		return
	}

	profile, err := a.profiles.Get(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profilePayload(user.Username, profile)})
}

// UpdateProfile 保存显示名与天气城市
func (a *API) UpdateProfile(c *gin.Context) {
	var payload profileRequest
	if !bindJSON(c, &payload, "invalid profile payload") {
		return
	}

	userID := currentUserID(c)
	user, err := a.users.Get(userID)
	if err != nil {
		handleUserError(c, err)
		return
	}

	profile, err := a.profiles.Update(userID, service.ProfileInput{
		DisplayName: payload.DisplayName,
		City:        payload.City,
	})
	if err != nil {
		handleProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profilePayload(user.Username, profile)})
}

// UploadAvatar 接收 multipart 字段 avatar，裁剪缩放后保存为 PNG
func (a *API) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes+1024)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, http.StatusBadRequest, "please choose an image")
		return
	}
	if fileHeader.Size > maxAvatarBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "image is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to read upload")
		return
	}
	if len(data) > maxAvatarBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "image is too large")
		return
	}

	profile, err := a.profiles.SaveAvatar(currentUserID(c), data)
	if err != nil {
		handleProfileError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": profile.AvatarURL})
}

func profilePayload(username string, profile *db.UserProfile) gin.H {
	displayName := profile.DisplayName
	if displayName == "" {
		displayName = username
	}
	return gin.H{
		"username":     username,
		"display_name": displayName,
		"city":         profile.City,
		"avatar_url":   profile.AvatarURL,
	}
}

func handleProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfileInvalidInput):
		respondError(c, http.StatusBadRequest, "display name and city must be at most 100 characters")
	case errors.Is(err, service.ErrUnsupportedImage):
		respondError(c, http.StatusUnsupportedMediaType, "only PNG, JPEG, GIF and WebP images are supported")
	case errors.Is(err, service.ErrImageTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, "image dimensions are too large")
	case errors.Is(err, service.ErrAvatarStorageDisabled):
		respondError(c, http.StatusServiceUnavailable, "avatar upload is not enabled")
	default:
		respondError(c, http.StatusInternalServerError, "operation failed")
	}
}
