package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/services"
	"github.com/drivelane/drivelane/internal/types"
	"github.com/drivelane/drivelane/internal/utils"
)

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"omitempty,oneof=customer owner"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"omitempty,min=8"`
}

type AuthHandler struct {
	users        *services.UserService
	cookieDomain string
	secureCookie bool
	tokenTTL     time.Duration
}

func NewAuthHandler(users *services.UserService, cookieDomain string, secureCookie bool, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{users: users, cookieDomain: cookieDomain, secureCookie: secureCookie, tokenTTL: tokenTTL}
}

func (h *AuthHandler) setTokenCookie(ctx *gin.Context, token string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if h.secureCookie {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     types.TokenCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.cookieDomain,
		MaxAge:   maxAge,
		Secure:   h.secureCookie,
		HttpOnly: true,
		SameSite: sameSite,
	})
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req CreateUserRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request")
		return
	}

	user, token, err := h.users.Register(ctx.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     models.Role(req.Role),
	})

	if err != nil {
		respondError(ctx, "auth_register", err)
		return
	}

	h.setTokenCookie(ctx, token, int(h.tokenTTL.Seconds()))

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created",
		"user":    user,
		"token":   token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginUserRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request")
		return
	}

	user, token, err := h.users.Login(ctx.Request.Context(), req.Email, req.Password)

	if err != nil {
		respondError(ctx, "auth_login", err)
		return
	}

	h.setTokenCookie(ctx, token, int(h.tokenTTL.Seconds()))

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.setTokenCookie(ctx, "", -1)

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	user, err := h.users.Get(ctx.Request.Context(), userID)

	if err != nil {
		respondError(ctx, "auth_me", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *AuthHandler) UpdateMe(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var req UpdateUserRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request")
		return
	}

	user, err := h.users.UpdateProfile(ctx.Request.Context(), userID, services.UpdateProfileInput{
		Name:            req.Name,
		Phone:           req.Phone,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})

	if err != nil {
		respondError(ctx, "auth_update", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated", "user": user})
}
