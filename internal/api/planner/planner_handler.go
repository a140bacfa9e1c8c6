package planner

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/omarmoh21/egypt-trip-planner/internal/api"
	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

type Handler struct {
	plannerService Service
	logger         *slog.Logger
}

func NewHandler(plannerService Service, logger *slog.Logger) *Handler {
	return &Handler{
		plannerService: plannerService,
		logger:         logger,
	}
}

// PlanTrip builds a full trip plan from a validated traveler profile.
func (h *Handler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "PlanTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/plan"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "PlanTrip"))
	l.DebugContext(ctx, "Plan trip handler invoked")

	var req types.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	plan, err := h.plannerService.PlanTrip(ctx, req)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			l.WarnContext(ctx, "Trip request rejected", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadRequest, validationErr.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to plan trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to plan trip")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}
