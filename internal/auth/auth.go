// Package auth verifies admin JWTs and extracts the caller's identity. Brand
// managers carry their brand id in the token; marketplace admins carry the
// admin flag and no brand.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/jwt"
)

type Config struct {
	JWTSecret string `mapstructure:"jwtSecret"`
	JWTTTL    string `mapstructure:"jwtttl"`
}

// Identity is the resolved caller of an admin request.
type Identity struct {
	BrandID *int
	Admin   bool
}

type Auth struct {
	JwtAuth *jwtauth.JWTAuth
	ttl     time.Duration
}

func New(c *Config) (*Auth, error) {
	ttl, err := time.ParseDuration(c.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("can't parse jwt ttl: %w", err)
	}
	return &Auth{
		JwtAuth: jwtauth.New("HS256", []byte(c.JWTSecret), nil),
		ttl:     ttl,
	}, nil
}

// Verifier extracts and validates the token from the Authorization header.
func (a *Auth) Verifier(next http.Handler) http.Handler {
	return jwtauth.Verifier(a.JwtAuth)(next)
}

// Authenticator rejects requests whose token is missing, expired or forged.
func (a *Auth) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		if token == nil || jwt.Validate(token) != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext resolves the verified token claims into an Identity. Numeric
// claims arrive as float64 after JSON decoding.
func FromContext(ctx context.Context) (*Identity, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't read token claims: %w", err)
	}
	if token == nil {
		return nil, fmt.Errorf("no token in context")
	}

	id := &Identity{}
	if admin, ok := claims["admin"].(bool); ok {
		id.Admin = admin
	}
	if raw, ok := claims["brand_id"]; ok {
		if f, ok := raw.(float64); ok && f > 0 {
			brandID := int(f)
			id.BrandID = &brandID
		}
	}
	return id, nil
}

// Empty reports whether the identity carries neither the admin flag nor a
// brand. Such callers are authenticated but have no data scope.
func (i *Identity) Empty() bool {
	return !i.Admin && i.BrandID == nil
}

// NewToken mints a signed token for the given identity.
func (a *Auth) NewToken(identity Identity) (string, error) {
	claims := map[string]any{
		"admin": identity.Admin,
		"exp":   time.Now().Add(a.ttl).Unix(),
	}
	if identity.BrandID != nil {
		claims["brand_id"] = *identity.BrandID
	}
	_, token, err := a.JwtAuth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("can't encode token: %w", err)
	}
	return token, nil
}
