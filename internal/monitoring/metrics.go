package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchCyclesTotal tracks fetch pipeline firings by outcome
	FetchCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tariffs_fetch_cycles_total",
			Help: "Total number of fetch cycles",
		},
		[]string{"status"},
	)

	// TariffsUpserted tracks tariffs submitted to the store
	TariffsUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tariffs_upserted_total",
			Help: "Total number of tariffs written to the store",
		},
	)

	// RecordsSkipped tracks raw entries dropped during normalization
	RecordsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tariffs_records_skipped_total",
			Help: "Total number of raw entries dropped by the normalizer",
		},
	)

	// SyncTargetsTotal tracks per-sink sync outcomes
	SyncTargetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tariffs_sync_targets_total",
			Help: "Total number of per-target sync attempts",
		},
		[]string{"status"},
	)

	// SyncRowsWritten tracks rows mirrored into sinks
	SyncRowsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tariffs_sync_rows_written_total",
			Help: "Total number of rows written to spreadsheet sinks",
		},
	)

	// CycleDuration tracks pipeline duration per cycle type
	CycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tariffs_cycle_duration_seconds",
			Help:    "Pipeline cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"cycle"},
	)

	// DBConnectionPoolUsage tracks connection pool utilization percentage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tariffs_db_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
