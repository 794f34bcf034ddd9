package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blog-restful/models"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	user := &models.User{ID: 1, Email: "david@example.com"}

	token, err := GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseAndValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestParseAndValidateTokenExpired(t *testing.T) {
	claims := &CustomClaims{
		UserID: 1,
		Email:  "david@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(mySigningKey)
	require.NoError(t, err)

	_, err = ParseAndValidateToken(signedToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestParseAndValidateTokenMalformed(t *testing.T) {
	_, err := ParseAndValidateToken("not-a-jwt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestParseAndValidateTokenWrongKey(t *testing.T) {
	claims := &CustomClaims{UserID: 1}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte("some-other-key"))
	require.NoError(t, err)

	_, err = ParseAndValidateToken(signedToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

func TestTokenFromRequest(t *testing.T) {
	t.Run("Bearer header", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/posts", nil)
		req.Header.Set("Authorization", "Bearer abc123")
		token, err := TokenFromRequest(&restful.Request{Request: req})
		require.NoError(t, err)
		assert.Equal(t, "abc123", token)
	})

	t.Run("Cookie fallback", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/posts", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "cookie-token"})
		token, err := TokenFromRequest(&restful.Request{Request: req})
		require.NoError(t, err)
		assert.Equal(t, "cookie-token", token)
	})

	t.Run("Invalid header format", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/posts", nil)
		req.Header.Set("Authorization", "abc123")
		_, err := TokenFromRequest(&restful.Request{Request: req})
		require.Error(t, err)
	})

	t.Run("No credentials", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/posts", nil)
		_, err := TokenFromRequest(&restful.Request{Request: req})
		require.Error(t, err)
	})
}

func TestAuthFilter(t *testing.T) {
	newContainer := func() *restful.Container {
		container := restful.NewContainer()
		ws := new(restful.WebService)
		ws.Path("/protected")
		ws.Route(ws.GET("").Filter(AuthFilter()).To(func(req *restful.Request, resp *restful.Response) {
			userID, ok := req.Attribute("user_id").(uint)
			assert.True(t, ok)
			assert.Equal(t, uint(7), userID)
			resp.WriteHeader(http.StatusOK)
		}))
		container.Add(ws)
		return container
	}

	t.Run("No token", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/protected", nil)
		w := httptest.NewRecorder()
		newContainer().ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid token", func(t *testing.T) {
		token, err := GenerateToken(&models.User{ID: 7, Email: "a@b.c"})
		require.NoError(t, err)

		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		newContainer().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Garbage token", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		newContainer().ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
