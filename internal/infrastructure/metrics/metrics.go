package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the crawler service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Connection metrics
	Connected          prometheus.Gauge
	ConnectAttempts    prometheus.Counter
	ConnectFailures    *prometheus.CounterVec
	Reconnections      prometheus.Counter
	LoginsTotal        *prometheus.CounterVec
	TransportRateLimit prometheus.Counter

	// Ingestion metrics
	IngestRunsTotal prometheus.Counter
	IngestErrors    *prometheus.CounterVec
	MessagesScanned prometheus.Counter
	MessagesMatched prometheus.Counter
	IngestDuration  prometheus.Histogram

	// Forward metrics
	ForwardRunsTotal  *prometheus.CounterVec
	ForwardErrors     *prometheus.CounterVec
	MessagesForwarded prometheus.Counter
	ForwardDuration   prometheus.Histogram

	// Dialog metrics
	DialogsSynced prometheus.Gauge

	// Kafka metrics
	KafkaMessagesProduced prometheus.Counter
	KafkaProduceErrors    *prometheus.CounterVec
	KafkaProduceDuration  prometheus.Histogram
}

// NewMetrics creates a new Metrics instance registered with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Connected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "crawler_service_telegram_connected",
			Help: "1 when the Telegram transport is connected",
		}),
		ConnectAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_service_connect_attempts_total",
			Help: "Total number of Telegram connect attempts",
		}),
		ConnectFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_service_connect_failures_total",
				Help: "Total number of failed connect calls",
			},
			[]string{"error_type"},
		),
		Reconnections: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_service_reconnections_total",
			Help: "Total number of transparent reconnects of a stale transport",
		}),
		LoginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_service_logins_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		TransportRateLimit: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_service_transport_flood_waits_total",
			Help: "Total number of FLOOD_WAIT responses from Telegram",
		}),

		IngestRunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_service_ingest_runs_total",
			Help: "Total number of completed keyword ingestion runs",
		}),
		IngestErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_service_ingest_errors_total",
				Help: "Total number of failed ingestion runs",
			},
			[]string{"error_type"},
		),
		MessagesScanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_service_messages_scanned_total",
			Help: "Total number of messages read from Telegram history",
		}),
		MessagesMatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_service_messages_matched_total",
			Help: "Total number of messages matching keywords and stored",
		}),
		IngestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "crawler_service_ingest_duration_seconds",
			Help:    "Duration of ingestion runs in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),

		ForwardRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_service_forward_runs_total",
				Help: "Total number of forward calls by status",
			},
			[]string{"status"},
		),
		ForwardErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_service_forward_errors_total",
				Help: "Total number of failed forward calls",
			},
			[]string{"error_type"},
		),
		MessagesForwarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_service_messages_forwarded_total",
			Help: "Total number of messages forwarded",
		}),
		ForwardDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "crawler_service_forward_duration_seconds",
			Help:    "Duration of forward calls in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		DialogsSynced: factory.NewGauge(prometheus.GaugeOpts{
			Name: "crawler_service_dialogs_synced",
			Help: "Number of dialogs returned by the last dialog sync",
		}),

		KafkaMessagesProduced: factory.NewCounter(prometheus.CounterOpts{
			Name: "crawler_service_kafka_messages_produced_total",
			Help: "Total number of messages produced to Kafka",
		}),
		KafkaProduceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_service_kafka_produce_errors_total",
				Help: "Total number of Kafka produce errors",
			},
			[]string{"topic"},
		),
		KafkaProduceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "crawler_service_kafka_produce_duration_seconds",
			Help:    "Duration of Kafka produce operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// SetConnected updates the connection gauge
func (m *Metrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.Connected.Set(1)
	} else {
		m.Connected.Set(0)
	}
}

// RecordConnectAttempt records a single transport connect attempt
func (m *Metrics) RecordConnectAttempt() {
	if m == nil {
		return
	}
	m.ConnectAttempts.Inc()
}

// RecordConnectFailure records a failed connect call
func (m *Metrics) RecordConnectFailure(errorType string) {
	if m == nil {
		return
	}
	m.ConnectFailures.WithLabelValues(label(errorType)).Inc()
}

// RecordReconnection records a reconnect of a stale transport
func (m *Metrics) RecordReconnection() {
	if m == nil {
		return
	}
	m.Reconnections.Inc()
}

// RecordLogin records a login attempt outcome
func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(label(outcome)).Inc()
}

// RecordFloodWait records a FLOOD_WAIT response
func (m *Metrics) RecordFloodWait() {
	if m == nil {
		return
	}
	m.TransportRateLimit.Inc()
}

// RecordIngest records a completed ingestion run
func (m *Metrics) RecordIngest(scanned, matched int, duration float64) {
	if m == nil {
		return
	}
	m.IngestRunsTotal.Inc()
	// Only add positive values to prevent counter from going backwards
	if scanned > 0 {
		m.MessagesScanned.Add(float64(scanned))
	}
	if matched > 0 {
		m.MessagesMatched.Add(float64(matched))
	}
	m.IngestDuration.Observe(duration)
}

// RecordIngestError records a failed ingestion run
func (m *Metrics) RecordIngestError(errorType string) {
	if m == nil {
		return
	}
	m.IngestErrors.WithLabelValues(label(errorType)).Inc()
}

// RecordForward records a forward call that did not fail
func (m *Metrics) RecordForward(status string, forwarded int, duration float64) {
	if m == nil {
		return
	}
	m.ForwardRunsTotal.WithLabelValues(label(status)).Inc()
	if forwarded > 0 {
		m.MessagesForwarded.Add(float64(forwarded))
	}
	m.ForwardDuration.Observe(duration)
}

// RecordForwardError records a failed forward call
func (m *Metrics) RecordForwardError(errorType string) {
	if m == nil {
		return
	}
	m.ForwardErrors.WithLabelValues(label(errorType)).Inc()
}

// UpdateDialogs sets the number of synced dialogs
func (m *Metrics) UpdateDialogs(count int) {
	if m == nil {
		return
	}
	m.DialogsSynced.Set(float64(count))
}

// RecordKafkaMessage records a Kafka message production with duration
func (m *Metrics) RecordKafkaMessage(duration float64) {
	if m == nil {
		return
	}
	m.KafkaMessagesProduced.Inc()
	m.KafkaProduceDuration.Observe(duration)
}

// RecordKafkaError records a Kafka production error for topic
func (m *Metrics) RecordKafkaError(topic string) {
	if m == nil {
		return
	}
	m.KafkaProduceErrors.WithLabelValues(label(topic)).Inc()
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
