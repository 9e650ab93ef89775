package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gurbetbiz/account-service/internal/core/domain"
	"go.uber.org/zap"
)

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "access_token"

// ErrInvalidToken is returned by resolvers for a token that is malformed,
// expired or rejected.
var ErrInvalidToken = errors.New("invalid or expired token")

// IdentityResolver turns a session token into the caller identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Identity, error)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the caller identity.
func WithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity set by AuthMiddleware, or nil for
// anonymous requests.
func IdentityFromContext(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(identityKey{}).(*domain.Identity)
	return id
}

// SessionClaims are the claims of a session token.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 session tokens locally.
type JWTResolver struct {
	secret []byte
}

// NewJWTResolver creates a resolver for tokens signed with secret
func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

// Resolve parses and verifies the token.
func (r *JWTResolver) Resolve(_ context.Context, token string) (*domain.Identity, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}
	return &domain.Identity{Subject: claims.Subject, Email: claims.Email}, nil
}

// Sign issues a session token for the identity, valid for ttl.
func (r *JWTResolver) Sign(id domain.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// AuthUser represents the user info returned from auth service
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthClient resolves tokens against the auth service
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAuthClient creates a new auth client
func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetMe retrieves user info from auth service using the token
func (c *AuthClient) GetMe(ctx context.Context, token string) (*AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request auth service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("auth service error: %d - %s", resp.StatusCode, string(body))
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &user, nil
}

// Resolve implements IdentityResolver.
func (c *AuthClient) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	user, err := c.GetMe(ctx, token)
	if err != nil {
		return nil, err
	}
	if user.Email == "" {
		return nil, fmt.Errorf("%w: auth service returned no email", ErrInvalidToken)
	}
	return &domain.Identity{Subject: user.ID, Email: user.Email}, nil
}

// sessionToken reads a bearer token, falling back to the session cookie.
func sessionToken(c *gin.Context) string {
	const bearerPrefix = "Bearer "
	if h := c.GetHeader("Authorization"); len(h) > len(bearerPrefix) && strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(h[len(bearerPrefix):])
	}
	if token, err := c.Cookie(SessionCookie); err == nil {
		return token
	}
	return ""
}

// AuthMiddleware resolves the caller identity into the request context. It
// never rejects a request itself: a missing or invalid token leaves the
// request anonymous and the handlers answer 401.
func AuthMiddleware(resolver IdentityResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		id, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if logger != nil {
				if errors.Is(err, ErrInvalidToken) {
					logger.Debug("Auth validation failed", zap.Error(err))
				} else {
					logger.Warn("Identity resolver unavailable", zap.Error(err))
				}
			}
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}
