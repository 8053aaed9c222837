package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	metricPrefix = "bailbooks_"

	resultSuccess = "success"
	resultError   = "error"
)

// Recommendation lookup outcomes.
const (
	AdvisorOutcomeRecommended = "recommended"
	AdvisorOutcomeDisabled    = "disabled"
	AdvisorOutcomeUnavailable = "unavailable"
	AdvisorOutcomeInvalid     = "invalid"
)

var (
	registerOnce sync.Once

	plansGenerated      *prometheus.CounterVec
	installmentsCreated *prometheus.CounterVec
	transitions         *prometheus.CounterVec
	advisorLookups      *prometheus.CounterVec
	advisorLatency      prometheus.Histogram
	exportsTotal        *prometheus.CounterVec
	exportLatency       *prometheus.HistogramVec

	overdueAmount *prometheus.GaugeVec
	overdueCount  *prometheus.GaugeVec
)

// Init registers the application collectors with the default registry. Calls after
// the first are no-ops, and every helper below is a no-op before Init.
func Init() {
	registerOnce.Do(func() {
		plansGenerated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "plans_generated_total",
				Help: "Total payment plans generated by kind and result",
			},
			[]string{"kind", "result"},
		)
		installmentsCreated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "installments_created_total",
				Help: "Total installments created by source",
			},
			[]string{"source"},
		)
		transitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "installment_transitions_total",
				Help: "Total installment status transitions by event and result",
			},
			[]string{"event", "result"},
		)
		advisorLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "advisor_lookups_total",
				Help: "Total term recommendation lookups by outcome",
			},
			[]string{"outcome"},
		)
		advisorLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "advisor_latency_seconds",
				Help:    "Term recommendation lookup latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)
		exportsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Total report exports by report, format and result",
			},
			[]string{"report", "format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report", "format"},
		)
		overdueAmount = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "overdue_amount",
				Help: "Overdue installment amount by aging bucket",
			},
			[]string{"bucket"},
		)
		overdueCount = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "overdue_installments",
				Help: "Overdue installment count by aging bucket",
			},
			[]string{"bucket"},
		)

		prometheus.MustRegister(
			plansGenerated,
			installmentsCreated,
			transitions,
			advisorLookups,
			advisorLatency,
			exportsTotal,
			exportLatency,
			overdueAmount,
			overdueCount,
		)
	})
}

func resultOf(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// ObservePlan counts a generated or restructured plan and its installments.
func ObservePlan(kind string, installments int, err error) {
	if plansGenerated != nil {
		plansGenerated.WithLabelValues(kind, resultOf(err)).Inc()
	}
	if err == nil && installments > 0 && installmentsCreated != nil {
		installmentsCreated.WithLabelValues("plan").Add(float64(installments))
	}
}

// IncManualInstallment counts a manually recorded installment.
func IncManualInstallment() {
	if installmentsCreated != nil {
		installmentsCreated.WithLabelValues("manual").Inc()
	}
}

// ObserveTransition counts an installment status change attempt.
func ObserveTransition(event string, err error) {
	if transitions != nil {
		transitions.WithLabelValues(event, resultOf(err)).Inc()
	}
}

// ObserveAdvisor records a recommendation lookup outcome and duration.
func ObserveAdvisor(outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	if advisorLookups != nil {
		advisorLookups.WithLabelValues(outcome).Inc()
	}
	if advisorLatency != nil && outcome != AdvisorOutcomeDisabled {
		advisorLatency.Observe(duration.Seconds())
	}
}

// ObserveExport records an export's result and latency.
func ObserveExport(report, format string, duration time.Duration, err error) {
	if exportsTotal != nil {
		exportsTotal.WithLabelValues(report, format, resultOf(err)).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(report, format).Observe(duration.Seconds())
	}
}

// SetOverdue publishes the overdue amount and count of one aging bucket.
func SetOverdue(bucket string, amount decimal.Decimal, count int) {
	if overdueAmount != nil {
		overdueAmount.WithLabelValues(bucket).Set(amount.InexactFloat64())
	}
	if overdueCount != nil {
		overdueCount.WithLabelValues(bucket).Set(float64(count))
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
