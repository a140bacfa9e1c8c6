package generativeAI

import (
	"context"
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

// Narrator turns a structured day plan into reader-facing prose. The
// planner substitutes a deterministic template when this call fails, so a
// DailyPlan never ships without a narrative.
type Narrator struct {
	aiClient *AIClient
	logger   *slog.Logger
}

func NewNarrator(aiClient *AIClient, logger *slog.Logger) *Narrator {
	return &Narrator{aiClient: aiClient, logger: logger}
}

func (n *Narrator) DayNarrative(ctx context.Context, day types.DailyPlan, req types.TripRequest) (string, error) {
	ctx, span := otel.Tracer("Narrator").Start(ctx, "DayNarrative", trace.WithAttributes(
		attribute.Int("day.index", day.DayIndex),
		attribute.String("day.city", day.AssignedCity),
	))
	defer span.End()

	prompt := dayNarrativePrompt(day, req)
	temp := float32(0.7)
	text, err := n.aiClient.GenerateContent(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: &temp,
	})
	if err != nil {
		n.logger.WarnContext(ctx, "Narrative generation failed", slog.Int("day", day.DayIndex), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Narrative generation failed")
		return "", fmt.Errorf("failed to narrate day %d: %w", day.DayIndex, err)
	}

	span.SetStatus(codes.Ok, "Narrative generated")
	return strings.TrimSpace(text), nil
}

func dayNarrativePrompt(day types.DailyPlan, req types.TripRequest) string {
	var sb strings.Builder
	sb.WriteString("Write a short, friendly day-by-day travel narrative for the following day of an Egypt trip.\n")
	sb.WriteString(fmt.Sprintf("Traveler: age %d, interests: %s.\n", req.Age, strings.Join(req.Interests, ", ")))
	sb.WriteString(fmt.Sprintf("Day %d", day.DayIndex))
	if day.AssignedCity != "" {
		sb.WriteString(" in " + day.AssignedCity)
	}
	sb.WriteString(".\nSites:\n")
	for _, s := range day.Sites {
		sb.WriteString(fmt.Sprintf("- %s (%s, open %s-%s, about %.1f hours, %.0f EGP)\n",
			s.Name, s.City, s.OpenTime, s.CloseTime, s.AverageVisitHours, s.CostEGP))
	}
	for label, pick := range map[string]*types.RestaurantPick{
		"Breakfast": day.Restaurants.Breakfast,
		"Lunch":     day.Restaurants.Lunch,
		"Dinner":    day.Restaurants.Dinner,
	} {
		if pick != nil {
			sb.WriteString(fmt.Sprintf("%s: %s (%.0f EGP, %.1f km away)\n", label, pick.Name, pick.AverageBudgetEGP, pick.DistanceKm))
		}
	}
	sb.WriteString("Keep it under 120 words, plain text, no markdown.")
	return sb.String()
}
