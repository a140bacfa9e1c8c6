package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/omarmoh21/egypt-trip-planner/app/observability/metrics"
	"github.com/omarmoh21/egypt-trip-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository defines the read-only catalog access the planner needs.
type Repository interface {
	GetSites(ctx context.Context, filter types.SiteFilter) ([]types.SiteCandidate, error)
	GetSitesByRawLocation(ctx context.Context, city, governorate string) ([]types.SiteCandidate, error)
	GetRestaurants(ctx context.Context, filter types.RestaurantFilter) ([]types.RestaurantCandidate, error)

	// Embedding backfill support (scripts/generate_embeddings.go)
	GetSitesWithoutEmbeddings(ctx context.Context, limit int) ([]types.SiteCandidate, error)
	UpdateSiteEmbedding(ctx context.Context, siteID uuid.UUID, embedding []float32) error
}

// PGXPool is the subset of pgxpool.Pool used by the repository. pgxmock's
// pool satisfies it in tests.
type PGXPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type RepositoryImpl struct {
	pgpool PGXPool
	logger *slog.Logger
}

func NewRepository(pgpool PGXPool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{pgpool: pgpool, logger: logger}
}

const siteColumns = `id, name, city, governorate, description, COALESCE(embedding::text, ''), activities, open_time, close_time, average_visit_hours, cost_egp, age_limit, latitude, longitude`

// GetSites returns catalog sites matching the filter, in a stable order.
func (r *RepositoryImpl) GetSites(ctx context.Context, filter types.SiteFilter) ([]types.SiteCandidate, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "GetSites", trace.WithAttributes(
		attribute.String("filter.city", filter.City),
		attribute.Bool("filter.require_embedding", filter.RequireEmbedding),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetSites"))

	var sb strings.Builder
	sb.WriteString("SELECT " + siteColumns + " FROM sites WHERE 1=1")
	args := []any{}
	argIdx := 1

	if filter.City != "" {
		sb.WriteString(fmt.Sprintf(" AND lower(city) = lower($%d)", argIdx))
		args = append(args, filter.City)
		argIdx++
	}
	if filter.CostCeiling != nil {
		sb.WriteString(fmt.Sprintf(" AND cost_egp <= $%d", argIdx))
		args = append(args, *filter.CostCeiling)
		argIdx++
	}
	if filter.AgeCeiling != nil {
		sb.WriteString(fmt.Sprintf(" AND (age_limit IS NULL OR age_limit <= $%d)", argIdx))
		args = append(args, *filter.AgeCeiling)
		argIdx++
	}
	if filter.RequireEmbedding {
		sb.WriteString(" AND embedding IS NOT NULL")
	}
	sb.WriteString(" ORDER BY name, id")
	if filter.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argIdx))
		args = append(args, filter.Limit)
	}

	rows, err := r.pgpool.Query(ctx, sb.String(), args...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query sites", slog.Any("error", err))
		metrics.Get().CatalogQueryErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	sites, err := scanSites(rows)
	if err != nil {
		l.ErrorContext(ctx, "Failed to scan site rows", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("results.count", len(sites)))
	span.SetStatus(codes.Ok, "Sites fetched")
	return sites, nil
}

// GetSitesByRawLocation widens a thin candidate group: it matches the raw
// city or governorate string and ignores embedding presence.
func (r *RepositoryImpl) GetSitesByRawLocation(ctx context.Context, city, governorate string) ([]types.SiteCandidate, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "GetSitesByRawLocation", trace.WithAttributes(
		attribute.String("city", city),
		attribute.String("governorate", governorate),
	))
	defer span.End()

	query := "SELECT " + siteColumns + " FROM sites WHERE lower(city) = lower($1) OR lower(governorate) = lower($2) ORDER BY name, id"
	rows, err := r.pgpool.Query(ctx, query, city, governorate)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query sites by raw location", slog.Any("error", err))
		metrics.Get().CatalogQueryErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query sites by raw location: %w", err)
	}
	defer rows.Close()

	sites, err := scanSites(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "Sites fetched")
	return sites, nil
}

// GetRestaurants returns catalog restaurants matching the filter, in a
// stable order.
func (r *RepositoryImpl) GetRestaurants(ctx context.Context, filter types.RestaurantFilter) ([]types.RestaurantCandidate, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "GetRestaurants", trace.WithAttributes(
		attribute.String("filter.city", filter.City),
		attribute.String("filter.meal_type", string(filter.MealType)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetRestaurants"))

	var sb strings.Builder
	sb.WriteString("SELECT id, name, city, meal_type, average_budget_egp, open_time, close_time, latitude, longitude FROM restaurants WHERE 1=1")
	args := []any{}
	argIdx := 1

	if filter.City != "" {
		sb.WriteString(fmt.Sprintf(" AND lower(city) = lower($%d)", argIdx))
		args = append(args, filter.City)
		argIdx++
	}
	if filter.MealType != "" {
		sb.WriteString(fmt.Sprintf(" AND meal_type = $%d", argIdx))
		args = append(args, string(filter.MealType))
		argIdx++
	}
	if filter.MaxBudgetEGP > 0 {
		sb.WriteString(fmt.Sprintf(" AND average_budget_egp <= $%d", argIdx))
		args = append(args, filter.MaxBudgetEGP)
		argIdx++
	}
	if filter.MinBudgetEGP != nil {
		sb.WriteString(fmt.Sprintf(" AND average_budget_egp > $%d", argIdx))
		args = append(args, *filter.MinBudgetEGP)
		argIdx++
	}
	sb.WriteString(" ORDER BY name, id")
	if filter.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argIdx))
		args = append(args, filter.Limit)
	}

	rows, err := r.pgpool.Query(ctx, sb.String(), args...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query restaurants", slog.Any("error", err))
		metrics.Get().CatalogQueryErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []types.RestaurantCandidate
	for rows.Next() {
		var rc types.RestaurantCandidate
		var mealType string
		if err := rows.Scan(&rc.ID, &rc.Name, &rc.City, &mealType, &rc.AverageBudgetEGP, &rc.OpenTime, &rc.CloseTime, &rc.Latitude, &rc.Longitude); err != nil {
			l.ErrorContext(ctx, "Failed to scan restaurant row", slog.Any("error", err))
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan restaurant row: %w", err)
		}
		rc.MealType = types.MealType(mealType)
		restaurants = append(restaurants, rc)
	}
	if err = rows.Err(); err != nil {
		l.ErrorContext(ctx, "Error iterating restaurant rows", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating restaurant rows: %w", err)
	}

	span.SetAttributes(attribute.Int("results.count", len(restaurants)))
	span.SetStatus(codes.Ok, "Restaurants fetched")
	return restaurants, nil
}

// GetSitesWithoutEmbeddings returns a batch of sites missing a vector.
func (r *RepositoryImpl) GetSitesWithoutEmbeddings(ctx context.Context, limit int) ([]types.SiteCandidate, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "GetSitesWithoutEmbeddings")
	defer span.End()

	query := "SELECT " + siteColumns + " FROM sites WHERE embedding IS NULL ORDER BY name, id LIMIT $1"
	rows, err := r.pgpool.Query(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query sites without embeddings: %w", err)
	}
	defer rows.Close()

	sites, err := scanSites(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "Sites fetched")
	return sites, nil
}

// UpdateSiteEmbedding stores a freshly generated vector for a site.
func (r *RepositoryImpl) UpdateSiteEmbedding(ctx context.Context, siteID uuid.UUID, embedding []float32) error {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "UpdateSiteEmbedding", trace.WithAttributes(
		attribute.String("site.id", siteID.String()),
		attribute.Int("embedding.dimension", len(embedding)),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, "UPDATE sites SET embedding = $1::vector WHERE id = $2", formatVector(embedding), siteID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database update failed")
		return fmt.Errorf("failed to update site embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("site %s not found", siteID)
	}
	span.SetStatus(codes.Ok, "Embedding updated")
	return nil
}

func scanSites(rows pgx.Rows) ([]types.SiteCandidate, error) {
	var sites []types.SiteCandidate
	for rows.Next() {
		var s types.SiteCandidate
		var embeddingStr string
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.Governorate, &s.Description, &embeddingStr, &s.Activities, &s.OpenTime, &s.CloseTime, &s.AverageVisitHours, &s.CostEGP, &s.AgeLimit, &s.Latitude, &s.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}
		s.Embedding = parseVector(embeddingStr)
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site rows: %w", err)
	}
	return sites, nil
}

// formatVector renders a []float32 in pgvector text format, e.g. [0.1,0.2].
func formatVector(embedding []float32) string {
	strs := make([]string, len(embedding))
	for i, v := range embedding {
		strs[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(strs, ",") + "]"
}

// parseVector is the inverse of formatVector. Malformed input yields nil,
// which the ranker treats as "no embedding".
func parseVector(s string) []float32 {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	out := make([]float32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil
		}
		out = append(out, float32(v))
	}
	return out
}
