package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"community-booking/internal/domain/ports/adapter"
)

// ===== Session/JWT primitives =====

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"` // "admin" for the back-office surface
	jwt.RegisteredClaims
}

type AuthManager struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthManager(secret string, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthManager{secret: []byte(secret), ttl: ttl}
}

// Mint issues a signed token for the given client. Used by the seed tool and
// tests; token issuance in production belongs to the identity provider.
func (a *AuthManager) Mint(clientID, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *AuthManager) ParseFromRequest(r *http.Request) (*Claims, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return nil, errors.New("missing token")
	}
	if !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return nil, errors.New("malformed authorization header")
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *AuthManager) parse(tok string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token without subject")
	}
	return claims, nil
}

// ===== Request identity =====

type claimsCtxKey struct{}

func withClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, c)
}

func claimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey{}).(*Claims)
	return c, ok
}

var _ adapter.Identity = (*ClaimsIdentity)(nil)

// ClaimsIdentity resolves the caller from the JWT claims the auth middleware
// put on the context.
type ClaimsIdentity struct{}

func (ClaimsIdentity) CurrentClientID(ctx context.Context) (string, error) {
	c, ok := claimsFrom(ctx)
	if !ok {
		return "", errors.New("no authenticated caller")
	}
	return c.Subject, nil
}

func (ClaimsIdentity) CurrentUserEmail(ctx context.Context) (string, error) {
	c, ok := claimsFrom(ctx)
	if !ok || c.Email == "" {
		return "", errors.New("no caller email")
	}
	return c.Email, nil
}
