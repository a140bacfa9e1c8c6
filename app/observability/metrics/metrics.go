package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the planner's metric instruments.
type AppMetrics struct {
	PlansBuiltTotal          metric.Int64Counter
	PlanBuildDurationSeconds metric.Float64Histogram
	FallbackDaysTotal        metric.Int64Counter
	OptimizerUpgradesTotal   metric.Int64Counter
	CatalogQueryErrorsTotal  metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Get initializes the instruments on first use from the globally
// configured MeterProvider and returns the shared instance. With no SDK
// installed (unit tests) the instruments are no-ops.
func Get() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("EgyptTripPlanner")
		var err error
		m := &AppMetrics{}

		m.PlansBuiltTotal, err = meter.Int64Counter(
			"trip_plans_built_total",
			metric.WithDescription("Total number of trip plans assembled"),
			metric.WithUnit("{plan}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_plans_built_total: %v", err)
		}

		m.PlanBuildDurationSeconds, err = meter.Float64Histogram(
			"trip_plan_build_duration_seconds",
			metric.WithDescription("Duration of whole-trip assembly in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_plan_build_duration_seconds: %v", err)
		}

		m.FallbackDaysTotal, err = meter.Int64Counter(
			"trip_fallback_days_total",
			metric.WithDescription("Days filled from the hardcoded regional fallback pairs"),
			metric.WithUnit("{day}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_fallback_days_total: %v", err)
		}

		m.OptimizerUpgradesTotal, err = meter.Int64Counter(
			"trip_optimizer_upgrades_total",
			metric.WithDescription("Restaurant upgrades and premium injections applied by the budget optimizer"),
			metric.WithUnit("{upgrade}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_optimizer_upgrades_total: %v", err)
		}

		m.CatalogQueryErrorsTotal, err = meter.Int64Counter(
			"catalog_query_errors_total",
			metric.WithDescription("Total number of catalog query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create catalog_query_errors_total: %v", err)
		}

		appMetrics = m
	})
	return appMetrics
}
