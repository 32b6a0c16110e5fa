package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var HistogramBuckets = []float64{
	// --- Fast responses (0 - 500ms) ---
	25, 50, 75, 100, 150, 200, 300, 400, 500,

	// --- Medium responses around 700ms (500ms - 2s) ---
	750, 1000, 1250, 1500, 1750, 2000,

	// --- Slow responses (2s - 15s) ---
	2500, 3000, 4000, 5000, 7500, 10000, 15000,

	// --- Extended range: covers 60000ms+ (15s - 75s) ---
	20000,  // 20s
	30000,  // 30s
	45000,  // 45s
	60000,  // 60s
	75000,  // 75s
	90000,  // 90s
	120000, // 120s
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "histogram_vec":
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
				Buckets:   HistogramBuckets,
			},
			m.Args,
		)
	case "summary_vec":
		metric = prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	}
	return metric
}

var MetricsBusinessProcess = &Metric{
	ID:          "bpDur",
	Name:        "bp_dur",
	Description: "process latency in milliseconds",
	Type:        "histogram_vec",
	Args:        []string{"type", "subtype"},
}

const (
	RefererKey = "X-Referer"
)

var (
	DonationCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "donation_created_total",
		Help: "Donations registered, partitioned by the outcome of the provider charge.",
	}, []string{"provider_outcome"})

	Reconciled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_total",
		Help: "Status reconciliations, partitioned by trigger, statuses and result.",
	}, []string{"trigger", "old", "new", "result"})

	WebhookHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_total",
		Help: "Provider webhook deliveries, partitioned by outcome.",
	}, []string{"outcome"})

	BusinessProcess = NewMetric(MetricsBusinessProcess, "").(*prometheus.HistogramVec)
)

func init() {
	prometheus.MustRegister(DonationCreated, Reconciled, WebhookHandled, BusinessProcess)
}

// ObserveProcess records the latency of a business step such as a provider call.
func ObserveProcess(kind, subtype string, start time.Time) {
	BusinessProcess.WithLabelValues(kind, subtype).Observe(MillisecondsSince(start))
}
