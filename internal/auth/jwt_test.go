package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("secret", WithTTL(time.Minute))

	token, err := m.GenerateAccessToken("owner-1", "host@example.com")
	require.NoError(t, err)

	claims, err := m.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", claims.UserID)
	assert.Equal(t, "host@example.com", claims.Email)

	t.Run("Wrong Secret", func(t *testing.T) {
		_, err := NewJWTManager("other").ParseAndValidate(token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		expired, err := NewJWTManager("secret", WithTTL(-time.Minute)).GenerateAccessToken("owner-1", "")
		require.NoError(t, err)
		_, err = m.ParseAndValidate(expired)
		assert.Error(t, err)
	})

	t.Run("Issuer", func(t *testing.T) {
		scoped := NewJWTManager("secret", WithTTL(time.Minute), WithIssuer("identity.example"))
		own, err := scoped.GenerateAccessToken("owner-1", "")
		require.NoError(t, err)
		_, err = scoped.ParseAndValidate(own)
		assert.NoError(t, err)

		_, err = scoped.ParseAndValidate(token)
		assert.Error(t, err, "tokens without the issuer are rejected")
	})

	t.Run("Empty Subject", func(t *testing.T) {
		anon, err := m.GenerateAccessToken("", "")
		require.NoError(t, err)
		_, err = m.ParseAndValidate(anon)
		assert.Error(t, err)
	})
}

func TestAuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewJWTManager("secret", WithTTL(time.Minute))
	r := gin.New()
	r.GET("/me", AuthRequired(m), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "email": GetUserEmail(c)})
	})

	token, err := m.GenerateAccessToken("owner-1", "host@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{name: "valid", header: "Bearer " + token, code: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + token, code: http.StatusOK},
		{name: "missing", header: "", code: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, code: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", code: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.JSONEq(t, `{"id":"owner-1","email":"host@example.com"}`, w.Body.String())
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, err := bearerToken("Bearer  abc ")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = bearerToken("")
	assert.ErrorIs(t, err, errMissingHeader)
	_, err = bearerToken("Bearer")
	assert.ErrorIs(t, err, errBadScheme)
	_, err = bearerToken("Token abc")
	assert.ErrorIs(t, err, errBadScheme)
}
