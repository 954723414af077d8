package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversion metrics, registered on the default Prometheus registry and
// exposed on /metrics.
var (
	// ConversionsTotal counts conversions by outcome: success,
	// parse_error or assembly_error.
	ConversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xmlsheet",
		Name:      "conversions_total",
		Help:      "Total number of XML to XLSX conversions by outcome.",
	}, []string{"outcome"})

	// PivotsTotal counts pivot decisions: pivoted or flat.
	PivotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xmlsheet",
		Name:      "pivots_total",
		Help:      "Pivot decisions by outcome.",
	}, []string{"decision"})

	// RecordsProcessed counts records extracted from input documents.
	RecordsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "xmlsheet",
		Name:      "records_processed_total",
		Help:      "Total number of records extracted from XML documents.",
	})

	// ConversionDuration observes end-to-end conversion latency.
	ConversionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "xmlsheet",
		Name:      "conversion_duration_seconds",
		Help:      "Conversion latency from XML input to workbook bytes.",
		Buckets:   prometheus.DefBuckets,
	})
)
