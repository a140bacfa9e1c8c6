package generativeAI

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const embeddingModel = "gemini-embedding-001"

// EmbeddingService produces fixed-dimensionality vectors for free text.
// The same model must be used for stored site vectors and query vectors or
// the ranker rejects the candidate for semantic filtering.
type EmbeddingService struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewEmbeddingService(ctx context.Context, logger *slog.Logger) (*EmbeddingService, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &EmbeddingService{
		client: client,
		model:  embeddingModel,
		logger: logger,
	}, nil
}

// GenerateQueryEmbedding embeds a single text string.
func (e *EmbeddingService) GenerateQueryEmbedding(ctx context.Context, text string) ([]float32, error) {
	ctx, span := otel.Tracer("EmbeddingService").Start(ctx, "GenerateQueryEmbedding", trace.WithAttributes(
		attribute.Int("text.length", len(text)),
		attribute.String("model", e.model),
	))
	defer span.End()

	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to generate embedding", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding generation failed")
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		err := fmt.Errorf("embedding response contained no values")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Empty embedding response")
		return nil, err
	}

	values := resp.Embeddings[0].Values
	span.SetAttributes(attribute.Int("embedding.dimension", len(values)))
	span.SetStatus(codes.Ok, "Embedding generated")
	return values, nil
}

// GenerateSiteEmbedding embeds a catalog site from its descriptive fields,
// mirroring the text layout used when the catalog was first vectorized.
func (e *EmbeddingService) GenerateSiteEmbedding(ctx context.Context, name, city, description string, activities []string) ([]float32, error) {
	text := fmt.Sprintf("%s, %s. %s Activities: %s", name, city, description, strings.Join(activities, ", "))
	return e.GenerateQueryEmbedding(ctx, text)
}
