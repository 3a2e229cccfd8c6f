package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/apexrecon/internal/http/auth"
)

var secret = []byte("test-secret")

func TestIssueAndParse(t *testing.T) {
	orgID := uuid.New()

	token, err := auth.IssueToken(secret, orgID, "ops@example.com", time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := auth.Parse(secret, token)
	require.NoError(t, err)
	assert.Equal(t, orgID, claims.OrganizationID)
	assert.Equal(t, "ops@example.com", claims.Subject)

	_, err = auth.Parse([]byte("other-secret"), token)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	token, err := auth.IssueToken(secret, uuid.New(), "", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = auth.Parse(secret, token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestMiddleware(t *testing.T) {
	orgID := uuid.New()

	valid, err := auth.IssueToken(secret, orgID, "", time.Hour, time.Now())
	require.NoError(t, err)

	expired, err := auth.IssueToken(secret, orgID, "", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	noOrg, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "apexrecon",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "Valid", header: "Bearer " + valid, expectedStatus: http.StatusOK},
		{name: "LowercaseScheme", header: "bearer " + valid, expectedStatus: http.StatusOK},
		{name: "Missing", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic abc", expectedStatus: http.StatusUnauthorized},
		{name: "Expired", header: "Bearer " + expired, expectedStatus: http.StatusUnauthorized},
		{name: "NoOrganization", header: "Bearer " + noOrg, expectedStatus: http.StatusUnauthorized},
		{name: "Garbage", header: "Bearer not-a-jwt", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got uuid.UUID

			h := auth.Middleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = auth.MustOrganizationID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, orgID, got)
			}
		})
	}
}
