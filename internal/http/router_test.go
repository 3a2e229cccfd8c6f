package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	apihttp "github.com/MrJamesThe3rd/apexrecon/internal/http"
	"github.com/MrJamesThe3rd/apexrecon/internal/http/auth"
	matchinghttp "github.com/MrJamesThe3rd/apexrecon/internal/http/matching"
	"github.com/MrJamesThe3rd/apexrecon/internal/matching"
)

var secret = []byte("router-test-secret")

func newRouter(t *testing.T, repo matching.Repository) http.Handler {
	t.Helper()

	return apihttp.New(
		apihttp.Options{JWTSecret: secret, AllowedOrigins: []string{"http://localhost:3000"}},
		nil,
		nil,
		nil,
		matchinghttp.NewHandler(matching.NewService(repo, nil)),
		nil,
	)
}

func TestRouter_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/matching", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ScopesToTokenOrganization(t *testing.T) {
	orgID := uuid.New()

	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)
	repo.EXPECT().ListMappings(gomock.Any(), orgID).Return(nil, nil)

	token, err := auth.IssueToken(secret, orgID, "ops@example.com", time.Hour, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matching", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	newRouter(t, repo).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/payments", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	newRouter(t, nil).ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
