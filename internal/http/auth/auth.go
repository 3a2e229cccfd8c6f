// Package auth resolves the calling organization from a bearer token.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "apexrecon"

type contextKey struct{}

// Claims identifies the organization a request acts for.
type Claims struct {
	OrganizationID uuid.UUID `json:"org_id"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for orgID valid for ttl from now.
func IssueToken(secret []byte, orgID uuid.UUID, subject string, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		OrganizationID: orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse validates tokenString and returns its claims.
func Parse(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	if claims.OrganizationID == uuid.Nil {
		return nil, errors.New("token has no organization")
	}

	return claims, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// token's organization on the request context.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "authorization header required", http.StatusUnauthorized)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") {
				http.Error(w, "authorization header format must be Bearer {token}", http.StatusUnauthorized)
				return
			}

			claims, err := Parse(secret, token)
			if err != nil {
				slog.Warn("invalid token", "path", r.URL.Path, "error", err)

				msg := "invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "token has expired"
				}

				http.Error(w, msg, http.StatusUnauthorized)

				return
			}

			next.ServeHTTP(w, r.WithContext(WithOrganization(r.Context(), claims.OrganizationID)))
		})
	}
}

func WithOrganization(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKey{}, orgID)
}

// OrganizationID returns the organization set by Middleware.
func OrganizationID(ctx context.Context) (uuid.UUID, bool) {
	orgID, ok := ctx.Value(contextKey{}).(uuid.UUID)
	return orgID, ok && orgID != uuid.Nil
}

// MustOrganizationID is OrganizationID for handlers mounted behind Middleware.
func MustOrganizationID(ctx context.Context) uuid.UUID {
	orgID, ok := OrganizationID(ctx)
	if !ok {
		panic("auth: organization missing from context")
	}

	return orgID
}
