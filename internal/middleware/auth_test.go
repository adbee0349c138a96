package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func signedToken(t *testing.T, secret, role string) string {
	t.Helper()
	claims := &Claims{
		UserID: 7,
		Email:  "op@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := testContext()
	Auth("secret")(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthSetsIdentityFromToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := testContext()
	c.Request.Header.Set("Authorization", "Bearer "+signedToken(t, "secret", "operator"))
	Auth("secret")(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, uint(7), GetUserID(c))
	assert.Equal(t, "operator", GetUserRole(c))
	assert.False(t, IsAdmin(c))
}

func TestAuthRejectsTokenSignedWithOtherSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := testContext()
	c.Request.Header.Set("Authorization", "Bearer "+signedToken(t, "other", "operator"))
	Auth("secret")(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminForbidsOperator(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := testContext()
	c.Set("userRole", "operator")
	RequireAdmin()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminForbidsMissingRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := testContext()
	RequireAdmin()(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := testContext()
	c.Set("userRole", "admin")
	RequireAdmin()(c)

	assert.False(t, c.IsAborted())
}
