package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/auth"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/testdb"
	"github.com/drivelane/drivelane/internal/types"
)

func setup(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, auth.InitJWT("middleware-secret", time.Hour))

	conn := testdb.New(t)
	r := gin.New()

	whoami := func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)
		if !exists {
			ctx.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		ctx.JSON(http.StatusOK, value)
	}

	r.GET("/private", AuthMiddleware(conn), whoami)
	r.GET("/owners", AuthMiddleware(conn), RequireRoles(models.RoleOwner, models.RoleAdmin), whoami)
	r.GET("/public", OptionalAuth(conn), whoami)

	return conn, r
}

func createUser(t *testing.T, conn *gorm.DB, email string, role models.Role) (models.User, string) {
	t.Helper()
	user := models.User{Name: "Test", Email: email, PasswordHash: "x", Role: role, Active: true}
	require.NoError(t, conn.Create(&user).Error)
	token, err := auth.GenerateJWT(user.ID, user.Role)
	require.NoError(t, err)
	return user, token
}

func get(r *gin.Engine, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(token string) func(*http.Request) {
	return func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }
}

func TestAuthMiddleware(t *testing.T) {
	conn, r := setup(t)
	_, token := createUser(t, conn, "c@drivelane.test", models.RoleCustomer)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", bearer("not-a-token")).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", func(req *http.Request) {
		req.Header.Set("Authorization", "Token "+token)
	}).Code)

	w := get(r, "/private", bearer(token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"c@drivelane.test"`)

	w = get(r, "/private", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: types.TokenCookieName, Value: token})
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareRejectsDeactivatedUser(t *testing.T) {
	conn, r := setup(t)
	user, token := createUser(t, conn, "gone@drivelane.test", models.RoleCustomer)
	require.NoError(t, conn.Model(&user).Update("active", false).Error)

	assert.Equal(t, http.StatusForbidden, get(r, "/private", bearer(token)).Code)

	w := get(r, "/public", bearer(token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anonymous")
}

func TestRequireRolesUsesStoredRole(t *testing.T) {
	conn, r := setup(t)
	user, token := createUser(t, conn, "o@drivelane.test", models.RoleOwner)

	assert.Equal(t, http.StatusOK, get(r, "/owners", bearer(token)).Code)

	require.NoError(t, conn.Model(&user).Update("role", models.RoleCustomer).Error)
	assert.Equal(t, http.StatusForbidden, get(r, "/owners", bearer(token)).Code)
}

func TestOptionalAuth(t *testing.T) {
	conn, r := setup(t)
	_, token := createUser(t, conn, "a@drivelane.test", models.RoleAdmin)

	assert.Contains(t, get(r, "/public", nil).Body.String(), "anonymous")
	assert.Contains(t, get(r, "/public", bearer("garbage")).Body.String(), "anonymous")
	assert.Contains(t, get(r, "/public", bearer(token)).Body.String(), `"role":"admin"`)
}
