package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "seda"

	// Status label values for success/error metrics
	StatusSuccess = "success"
	StatusError   = "error"

	Registry = "registry"
	Consumer = "consumer"
	Producer = "producer"
)

// Acquisition results.
const (
	AcquireCreated          = "created"
	AcquireReused           = "reused"
	AcquireCapacityMismatch = "capacity_mismatch"
)

// Release results.
const (
	ReleaseDecremented = "decremented"
	ReleaseRemoved     = "removed"
	ReleaseUnknown     = "unknown"
)

// Labels holds constant labels applied to all metrics.
// These are useful for distinguishing metrics from multiple service instances.
type Labels struct {
	Instance      string // Instance name (e.g., hostname or pod name)
	Environment   string // Deployment environment (e.g., "production", "staging", "development")
	Region        string // Cloud region (e.g., "us-east-1", "eu-west-1")
	CloudProvider string // Cloud provider (e.g., "aws", "oci", "gcp")
}

// toPrometheusLabels converts Labels to prometheus.Labels map.
// Only non-empty labels are included to avoid empty label values.
func (l Labels) toPrometheusLabels() prometheus.Labels {
	labels := prometheus.Labels{}
	if l.Instance != "" {
		labels["instance_name"] = l.Instance
	}
	if l.Environment != "" {
		labels["environment"] = l.Environment
	}
	if l.Region != "" {
		labels["region"] = l.Region
	}
	if l.CloudProvider != "" {
		labels["cloud_provider"] = l.CloudProvider
	}
	return labels
}

type Metrics struct {
	// Registry state
	channels       prometheus.Gauge
	references     prometheus.Gauge
	queuedMessages prometheus.Gauge

	// Registry operations
	acquisitions       *prometheus.CounterVec // by result
	releases           *prometheus.CounterVec // by result
	contractViolations prometheus.Counter
	clears             prometheus.Counter
	droppedMessages    prometheus.Counter

	// Endpoint admission
	admissionRejections *prometheus.CounterVec // by reason

	// Producer metrics
	messagesPublished *prometheus.CounterVec // by channel, status

	// Consumer message processing metrics
	messagesProcessed         *prometheus.CounterVec   // by channel, status
	messageProcessingDuration *prometheus.HistogramVec // by channel
	messagesInFlight          prometheus.Gauge
}

// New creates a new Metrics instance and registers all metrics with the provided registerer.
// Returns an error if any metric registration fails.
// For metrics with constant labels (e.g., environment), use NewWithLabels instead.
func New(reg prometheus.Registerer) (*Metrics, error) {
	return NewWithLabels(reg, Labels{})
}

// NewWithLabels creates a new Metrics instance with constant labels applied to all metrics.
func NewWithLabels(reg prometheus.Registerer, labels Labels) (*Metrics, error) {
	promLabels := labels.toPrometheusLabels()
	if len(promLabels) > 0 {
		reg = prometheus.WrapRegistererWith(promLabels, reg)
	}

	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		channels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Registry,
			Name:      "channels",
			Help:      "Number of channels with a live queue",
		}),
		references: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Registry,
			Name:      "references",
			Help:      "Outstanding queue references across all channels",
		}),
		queuedMessages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Registry,
			Name:      "queued_messages",
			Help:      "Messages waiting in all live queues at the last refresh",
		}),
		acquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Registry,
			Name:      "acquisitions_total",
			Help:      "Total queue acquisitions by result (created, reused, capacity_mismatch)",
		}, []string{"result"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Registry,
			Name:      "releases_total",
			Help:      "Total queue releases by result (decremented, removed, unknown)",
		}, []string{"result"}),
		contractViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Registry,
			Name:      "contract_violations_total",
			Help:      "Releases that would have driven a reference count below zero",
		}),
		clears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Registry,
			Name:      "clears_total",
			Help:      "Total number of registry resets",
		}),
		droppedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Registry,
			Name:      "dropped_messages_total",
			Help:      "Messages discarded because their queue was cleared",
		}),
		admissionRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "admission_rejections_total",
			Help:      "Endpoint configurations rejected at setup by reason",
		}, []string{"reason"}),
		messagesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Producer,
			Name:      "messages_published_total",
			Help:      "Total messages published by channel and status",
		}, []string{"channel", "status"}),
		messagesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Consumer,
			Name:      "messages_processed_total",
			Help:      "Total messages processed by channel and status",
		}, []string{"channel", "status"}),
		messageProcessingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Consumer,
			Name:      "message_processing_duration_seconds",
			Help:      "Time spent in the processor for a single message by channel",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"channel"}),
		messagesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Consumer,
			Name:      "messages_in_flight",
			Help:      "Number of messages currently being processed",
		}),
	}

	err := errors.Join(
		reg.Register(m.channels),
		reg.Register(m.references),
		reg.Register(m.queuedMessages),
		reg.Register(m.acquisitions),
		reg.Register(m.releases),
		reg.Register(m.contractViolations),
		reg.Register(m.clears),
		reg.Register(m.droppedMessages),
		reg.Register(m.admissionRejections),
		reg.Register(m.messagesPublished),
		reg.Register(m.messagesProcessed),
		reg.Register(m.messageProcessingDuration),
		reg.Register(m.messagesInFlight),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Admission rejection reasons.
const (
	RejectConcurrencyLimit = "concurrency_limit"
	RejectInvalidURI       = "invalid_uri"
)

// RecordAcquire records an acquisition outcome and the resulting registry size.
func (m *Metrics) RecordAcquire(result string, channels, references int) {
	if m == nil {
		return
	}
	m.acquisitions.WithLabelValues(result).Inc()
	m.UpdateRegistryMetrics(channels, references)
}

// RecordRelease records a release outcome and the resulting registry size.
func (m *Metrics) RecordRelease(result string, channels, references int) {
	if m == nil {
		return
	}
	m.releases.WithLabelValues(result).Inc()
	m.UpdateRegistryMetrics(channels, references)
}

// IncContractViolation counts a release that underflowed a reference count.
func (m *Metrics) IncContractViolation() {
	if m == nil {
		return
	}
	m.contractViolations.Inc()
}

// RecordClear records a registry reset that discarded dropped messages.
func (m *Metrics) RecordClear(dropped int) {
	if m == nil {
		return
	}
	m.clears.Inc()
	m.droppedMessages.Add(float64(dropped))
	m.UpdateRegistryMetrics(0, 0)
}

// UpdateRegistryMetrics updates the registry state gauges.
func (m *Metrics) UpdateRegistryMetrics(channels, references int) {
	if m == nil {
		return
	}
	m.channels.Set(float64(channels))
	m.references.Set(float64(references))
}

// SetQueuedMessages sets the number of messages waiting across all queues.
func (m *Metrics) SetQueuedMessages(n int) {
	if m == nil {
		return
	}
	m.queuedMessages.Set(float64(n))
}

// IncAdmissionRejection counts an endpoint rejected at setup.
func (m *Metrics) IncAdmissionRejection(reason string) {
	if m == nil {
		return
	}
	m.admissionRejections.WithLabelValues(reason).Inc()
}

// RecordPublish records a publish outcome for a channel.
func (m *Metrics) RecordPublish(channel string, err error) {
	if m == nil {
		return
	}
	m.messagesPublished.WithLabelValues(channel, status(err)).Inc()
}

// RecordMessageProcessed records a processed message outcome and duration for a channel.
func (m *Metrics) RecordMessageProcessed(channel string, err error, durationSeconds float64) {
	if m == nil {
		return
	}
	m.messagesProcessed.WithLabelValues(channel, status(err)).Inc()
	m.messageProcessingDuration.WithLabelValues(channel).Observe(durationSeconds)
}

// IncMessagesInFlight increments the in-flight messages gauge.
func (m *Metrics) IncMessagesInFlight() {
	if m == nil {
		return
	}
	m.messagesInFlight.Inc()
}

// DecMessagesInFlight decrements the in-flight messages gauge.
func (m *Metrics) DecMessagesInFlight() {
	if m == nil {
		return
	}
	m.messagesInFlight.Dec()
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
