package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	OracleRequestsTotal     metric.Int64Counter
	OracleErrorsTotal       metric.Int64Counter
	OracleDurationSeconds   metric.Float64Histogram
	BookingsCreatedTotal    metric.Int64Counter
	RegisterRequestsTotal   metric.Int64Counter
	DbQueryErrorsTotal      metric.Int64Counter
	CatalogCacheHitsTotal   metric.Int64Counter
	CatalogCacheMissesTotal metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider.
// Before a provider is installed otel hands out no-op instruments, so this is
// safe to call from tests.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TripWise")
		m := &AppMetrics{}

		m.OracleRequestsTotal = mustCounter(meter, "oracle_requests_total",
			"Total number of text-completion calls", "{request}")
		m.OracleErrorsTotal = mustCounter(meter, "oracle_errors_total",
			"Total number of failed text-completion calls", "{error}")
		m.BookingsCreatedTotal = mustCounter(meter, "bookings_created_total",
			"Total number of bookings created", "{booking}")
		m.RegisterRequestsTotal = mustCounter(meter, "register_requests_total",
			"Total number of register requests completed", "{request}")
		m.DbQueryErrorsTotal = mustCounter(meter, "db_query_errors_total",
			"Total number of database query errors", "{error}")
		m.CatalogCacheHitsTotal = mustCounter(meter, "catalog_cache_hits_total",
			"Catalog lookups served from cache", "{hit}")
		m.CatalogCacheMissesTotal = mustCounter(meter, "catalog_cache_misses_total",
			"Catalog lookups that hit the database", "{miss}")

		var err error
		m.OracleDurationSeconds, err = meter.Float64Histogram(
			"oracle_duration_seconds",
			metric.WithDescription("Duration of text-completion calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create oracle_duration_seconds: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

func mustCounter(meter metric.Meter, name, description, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return c
}

// Get returns the AppMetrics instance, initialising it on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
