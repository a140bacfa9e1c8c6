package generativeAI

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

// SlotExtractor maps free-form user text plus prior turns onto the trip
// request slots. It returns a partial update; the session layer merges it
// into the running draft.
type SlotExtractor struct {
	aiClient *AIClient
	logger   *slog.Logger
}

func NewSlotExtractor(aiClient *AIClient, logger *slog.Logger) *SlotExtractor {
	return &SlotExtractor{aiClient: aiClient, logger: logger}
}

func (s *SlotExtractor) ExtractSlots(ctx context.Context, message string, draft types.DraftTripRequest, history []types.ConversationTurn) (types.DraftTripRequest, error) {
	ctx, span := otel.Tracer("SlotExtractor").Start(ctx, "ExtractSlots", trace.WithAttributes(
		attribute.Int("message.length", len(message)),
	))
	defer span.End()

	prompt := slotExtractionPrompt(message, draft, history)
	temp := float32(0)
	raw, err := s.aiClient.GenerateContent(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Slot extraction call failed")
		return types.DraftTripRequest{}, fmt.Errorf("slot extraction failed: %w", err)
	}

	var update types.DraftTripRequest
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &update); err != nil {
		s.logger.WarnContext(ctx, "Slot extraction returned unparseable JSON", slog.Any("error", err), slog.String("raw", raw))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unparseable extraction response")
		return types.DraftTripRequest{}, fmt.Errorf("failed to parse extracted slots: %w", err)
	}

	span.SetStatus(codes.Ok, "Slots extracted")
	return update, nil
}

func slotExtractionPrompt(message string, draft types.DraftTripRequest, history []types.ConversationTurn) string {
	draftJSON, _ := json.Marshal(draft)
	var sb strings.Builder
	sb.WriteString("You extract trip planning fields from a conversation about traveling in Egypt.\n")
	sb.WriteString("Known fields so far: " + string(draftJSON) + "\n")
	if len(history) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, turn := range history {
			sb.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Message))
		}
	}
	sb.WriteString("Latest user message: " + message + "\n")
	sb.WriteString(`Return ONLY a JSON object with any newly mentioned fields among: ` +
		`{"age": int, "budget_egp": float, "days": int, "interests": [string], "cities": [string]}. ` +
		`Omit fields the user did not mention.`)
	return sb.String()
}
