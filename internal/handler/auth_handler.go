package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/healthlog/internal/service"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register 创建账号并直接登录
func (a *API) Register(c *gin.Context) {
	var payload registerRequest
	if !bindJSON(c, &payload, "invalid registration payload") {
		return
	}

	user, err := a.users.Register(service.RegisterInput{
		Username: payload.Username,
		Password: payload.Password,
		Confirm:  payload.ConfirmPassword,
	})
	if err != nil {
		handleUserError(c, err)
		return
	}

	if !saveSession(c, user.ID, user.Username) {
		return
	}
	log.Printf("[auth] registered user %s", user.Username)
	c.JSON(http.StatusCreated, gin.H{"user": gin.H{"id": user.ID, "username": user.Username}})
}

// Login 校验用户名密码并写入会话
func (a *API) Login(c *gin.Context) {
	var payload credentialsRequest
	if !bindJSON(c, &payload, "invalid login payload") {
		return
	}

	user, err := a.users.Authenticate(payload.Username, payload.Password)
	if err != nil {
		handleUserError(c, err)
		return
	}

	if !saveSession(c, user.ID, user.Username) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": user.ID, "username": user.Username}})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to clear session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// ChangePassword 修改当前用户密码
func (a *API) ChangePassword(c *gin.Context) {
	var payload passwordChangeRequest
	if !bindJSON(c, &payload, "invalid password payload") {
		return
	}

	err := a.users.ChangePassword(currentUserID(c), service.PasswordChangeInput{
		Current: payload.CurrentPassword,
		New:     payload.NewPassword,
		Confirm: payload.ConfirmPassword,
	})
	if errors.Is(err, service.ErrInvalidCredentials) {
		respondError(c, http.StatusBadRequest, "current password is incorrect")
		return
	}
	if err != nil {
		handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// AuthRequired 校验会话并把用户 ID 放入上下文，未登录返回 401
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get("user_id").(uint)
		if !ok || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

func saveSession(c *gin.Context, userID uint, username string) bool {
	session := sessions.Default(c)
	session.Clear()
	session.Set("user_id", userID)
	session.Set("username", username)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return false
	}
	return true
}

func handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrUsernameTaken):
		respondError(c, http.StatusConflict, "username already taken")
	case errors.Is(err, service.ErrPasswordMismatch):
		respondError(c, http.StatusBadRequest, "passwords do not match")
	case errors.Is(err, service.ErrInvalidUserInput):
		respondError(c, http.StatusBadRequest, "please fill in all fields")
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusUnauthorized, "login required")
	default:
		respondError(c, http.StatusInternalServerError, "operation failed")
	}
}
