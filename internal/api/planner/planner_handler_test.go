package planner

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

func postPlan(t *testing.T, handler *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/itineraries/plan", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.PlanTrip(rec, req)
	return rec
}

func TestPlanTripHandler(t *testing.T) {
	validBody := `{"age":25,"total_budget_egp":4000,"days":2,"interests":["history"],"cities":["Cairo"]}`

	t.Run("success returns the plan", func(t *testing.T) {
		service, mockCatalog, mockEmbedder, mockNarrator := setupPlannerServiceTest()
		handler := NewHandler(service, testLogger())

		mockEmbedder.On("GenerateQueryEmbedding", mock.Anything, mock.Anything).Return([]float32{1}, nil)
		mockCatalog.On("GetSites", mock.Anything, mock.Anything).Return([]types.SiteCandidate{}, nil)
		mockCatalog.On("GetRestaurants", mock.Anything, mock.Anything).Return([]types.RestaurantCandidate{}, nil)
		mockNarrator.On("DayNarrative", mock.Anything, mock.Anything, mock.Anything).Return("A good day.", nil)

		rec := postPlan(t, handler, validBody)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var plan types.TripPlan
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
		assert.Len(t, plan.Days, 2)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		service, _, _, _ := setupPlannerServiceTest()
		handler := NewHandler(service, testLogger())

		rec := postPlan(t, handler, `{"age":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation failure is a bad request", func(t *testing.T) {
		service, _, _, _ := setupPlannerServiceTest()
		handler := NewHandler(service, testLogger())

		rec := postPlan(t, handler, `{"age":25,"total_budget_egp":4000,"days":0,"interests":["history"]}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp["error"], "days")
	})
}
