package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/omarmoh21/egypt-trip-planner/internal/api"
	"github.com/omarmoh21/egypt-trip-planner/internal/api/planner"
	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

// Extractor fills trip request slots from a conversation turn. Implemented
// by generativeAI.SlotExtractor.
type Extractor interface {
	ExtractSlots(ctx context.Context, message string, draft types.DraftTripRequest, history []types.ConversationTurn) (types.DraftTripRequest, error)
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string          `json:"reply"`
	Done  bool            `json:"done"`
	Plan  *types.TripPlan `json:"plan,omitempty"`
}

type Handler struct {
	store          *Store
	extractor      Extractor
	plannerService planner.Service
	logger         *slog.Logger
}

func NewHandler(store *Store, extractor Extractor, plannerService planner.Service, logger *slog.Logger) *Handler {
	return &Handler{
		store:          store,
		extractor:      extractor,
		plannerService: plannerService,
		logger:         logger,
	}
}

// Chat advances a slot-filling conversation. Once the draft is complete the
// full trip plan is built and the session is discarded.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SessionHandler").Start(r.Context(), "Chat", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/chat/{sessionID}"),
	))
	defer span.End()

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing session ID")
		return
	}
	span.SetAttributes(attribute.String("session.id", sessionID))

	l := h.logger.With(slog.String("handler", "Chat"), slog.String("session_id", sessionID))

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		l.ErrorContext(ctx, "Failed to decode chat request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	conv := h.store.Get(sessionID)

	update, err := h.extractor.ExtractSlots(ctx, req.Message, conv.Draft, conv.Turns)
	if err != nil {
		l.ErrorContext(ctx, "Slot extraction failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to understand message")
		return
	}
	conv.Draft = conv.Draft.Merge(update)
	conv.Turns = append(conv.Turns, types.ConversationTurn{
		Role:      "user",
		Message:   req.Message,
		Timestamp: time.Now(),
	})

	if !conv.Draft.Complete() {
		reply := followUpQuestion(conv.Draft.Missing())
		conv.Turns = append(conv.Turns, types.ConversationTurn{
			Role:      "assistant",
			Message:   reply,
			Timestamp: time.Now(),
		})
		h.store.Save(sessionID, conv)
		api.WriteJSONResponse(w, r, http.StatusOK, ChatResponse{Reply: reply})
		return
	}

	plan, err := h.plannerService.PlanTrip(ctx, conv.Draft.ToRequest())
	if err != nil {
		l.ErrorContext(ctx, "Failed to plan trip from conversation", slog.Any("error", err))
		// Keep the session so the user can correct the offending slot.
		h.store.Save(sessionID, conv)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to plan trip")
		return
	}

	h.store.Delete(sessionID)
	api.WriteJSONResponse(w, r, http.StatusOK, ChatResponse{
		Reply: "Your Egypt itinerary is ready.",
		Done:  true,
		Plan:  plan,
	})
}

func followUpQuestion(missing []string) string {
	msg := "To plan your trip I still need: "
	for i, field := range missing {
		if i > 0 {
			msg += ", "
		}
		msg += field
	}
	return msg + "."
}
