package matching_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/apexrecon/internal/http/auth"
	matchinghttp "github.com/MrJamesThe3rd/apexrecon/internal/http/matching"
	"github.com/MrJamesThe3rd/apexrecon/internal/matching"
)

func newRouter(repo matching.Repository, orgID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithOrganization(req.Context(), orgID)))
		})
	})
	r.Route("/matching", matchinghttp.NewHandler(matching.NewService(repo, nil)).Routes)

	return r
}

func TestHandler_Suggest(t *testing.T) {
	orgID, customerID := uuid.New(), uuid.New()

	tests := []struct {
		name           string
		query          string
		setupMock      func(m *matching.MockRepository)
		expectedStatus int
		wantCustomer   *uuid.UUID
	}{
		{
			name:  "Match",
			query: "?raw_description=" + url.QueryEscape("TRF ACME LDA 0042"),
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindCustomer(gomock.Any(), orgID, "TRF ACME LDA 0042").Return(customerID, nil)
			},
			expectedStatus: http.StatusOK,
			wantCustomer:   &customerID,
		},
		{
			name:  "NoMatch",
			query: "?raw_description=UNKNOWN",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindCustomer(gomock.Any(), orgID, "UNKNOWN").Return(uuid.Nil, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "MissingQuery",
			setupMock:      func(*matching.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "StoreFailure",
			query: "?raw_description=ACME",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindCustomer(gomock.Any(), orgID, "ACME").Return(uuid.Nil, errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := matching.NewMockRepository(ctrl)
			tt.setupMock(repo)

			rec := httptest.NewRecorder()
			newRouter(repo, orgID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/matching/suggest"+tt.query, nil))
			require.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus != http.StatusOK {
				return
			}

			var body struct {
				SuggestedCustomerID *uuid.UUID `json:"suggested_customer_id"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCustomer, body.SuggestedCustomerID)
		})
	}
}

func TestHandler_Learn(t *testing.T) {
	orgID, customerID := uuid.New(), uuid.New()

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *matching.MockRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: `{"raw_pattern":"  ACME LDA ","customer_id":"` + customerID.String() + `"}`,
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateMapping(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, mapping matching.Mapping) error {
						assert.Equal(t, "ACME LDA", mapping.RawPattern)
						assert.Equal(t, orgID, mapping.OrganizationID)
						assert.Equal(t, customerID, mapping.CustomerID)

						return nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "ShortPattern",
			body:           `{"raw_pattern":"AC","customer_id":"` + customerID.String() + `"}`,
			setupMock:      func(*matching.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "MissingCustomer",
			body:           `{"raw_pattern":"ACME LDA"}`,
			setupMock:      func(*matching.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "MalformedBody",
			body:           `{`,
			setupMock:      func(*matching.MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := matching.NewMockRepository(ctrl)
			tt.setupMock(repo)

			rec := httptest.NewRecorder()
			newRouter(repo, orgID).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/matching", strings.NewReader(tt.body)))
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
