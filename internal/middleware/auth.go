package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/auth"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/types"
)

type AuthenticatedUser struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func abort(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := bearerToken(ctx)

		if tokenString == "" {
			abort(ctx, http.StatusUnauthorized, "Authorization token is required")
			return
		}

		claims, err := auth.VerifyJWT(tokenString)

		if err != nil {
			abort(ctx, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		var user models.User

		if err := db.WithContext(ctx.Request.Context()).Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			abort(ctx, http.StatusUnauthorized, "User not found")
			return
		}

		if !user.Active {
			abort(ctx, http.StatusForbidden, "Account has been deactivated")
			return
		}

		// Role comes from the stored user, not the token.
		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		})
		ctx.Next()
	}
}

// bearerToken reads the Authorization header. Browsers may instead send the session
// cookie, and websocket upgrades may pass ?token= since they cannot set headers.
func bearerToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")

	if authHeader == "" {
		if cookie, err := ctx.Cookie(types.TokenCookieName); err == nil && cookie != "" {
			return cookie
		}
		if ctx.IsWebsocket() {
			return ctx.Query("token")
		}
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)

	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// RequireRoles must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)
		user, ok := value.(AuthenticatedUser)

		if !exists || !ok {
			abort(ctx, http.StatusUnauthorized, "User not authenticated")
			return
		}

		for _, role := range roles {
			if user.Role == role {
				ctx.Next()
				return
			}
		}

		abort(ctx, http.StatusForbidden, "You do not have permission to access this resource")
	}
}

// OptionalAuth sets the current user when a valid token is present and never aborts.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := bearerToken(ctx)

		if tokenString == "" {
			ctx.Next()
			return
		}

		claims, err := auth.VerifyJWT(tokenString)

		if err != nil {
			ctx.Next()
			return
		}

		var user models.User

		if err := db.WithContext(ctx.Request.Context()).Where("id = ?", claims.UserID).First(&user).Error; err == nil && user.Active {
			ctx.Set(types.ContextUserKey, AuthenticatedUser{
				ID:    user.ID,
				Name:  user.Name,
				Email: user.Email,
				Role:  user.Role,
			})
		}

		ctx.Next()
	}
}
