package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTResolver(t *testing.T) {
	r := NewJWTResolver("secret")
	ctx := context.Background()

	token, err := r.Sign(domain.Identity{Subject: "u1", Email: "ayse@example.com"}, time.Hour)
	require.NoError(t, err)

	id, err := r.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, &domain.Identity{Subject: "u1", Email: "ayse@example.com"}, id)

	t.Run("expired", func(t *testing.T) {
		expired, err := r.Sign(domain.Identity{Subject: "u1", Email: "ayse@example.com"}, -time.Minute)
		require.NoError(t, err)
		_, err = r.Resolve(ctx, expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTResolver("other").Resolve(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		unbounded, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{Email: "ayse@example.com"}).
			SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = r.Resolve(ctx, unbounded)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, SessionClaims{
			Email:            "ayse@example.com",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		}).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = r.Resolve(ctx, hs512)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing email", func(t *testing.T) {
		anonymous, err := r.Sign(domain.Identity{Subject: "u1"}, time.Hour)
		require.NoError(t, err)
		_, err = r.Resolve(ctx, anonymous)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthClient(t *testing.T) {
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/me" {
			http.NotFound(w, r)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"u1","email":"ayse@example.com"}`))
		case "Bearer broken":
			http.Error(w, "boom", http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer auth.Close()

	client := NewAuthClient(auth.URL + "/")
	ctx := context.Background()

	id, err := client.Resolve(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, &domain.Identity{Subject: "u1", Email: "ayse@example.com"}, id)

	_, err = client.Resolve(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = client.Resolve(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
	assert.Contains(t, err.Error(), "502")
}

func TestAuthMiddleware(t *testing.T) {
	resolver := NewJWTResolver("secret")
	token, err := resolver.Sign(domain.Identity{Subject: "u1", Email: "ayse@example.com"}, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.Use(AuthMiddleware(resolver, zap.NewNop()))
	r.GET("/whoami", func(c *gin.Context) {
		id := IdentityFromContext(c.Request.Context())
		if id == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, id.Email)
	})

	tests := []struct {
		name  string
		setup func(*http.Request)
		want  string
	}{
		{"no token", func(*http.Request) {}, "anonymous"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, "ayse@example.com"},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }, "ayse@example.com"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token}) }, "ayse@example.com"},
		{"invalid token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}
