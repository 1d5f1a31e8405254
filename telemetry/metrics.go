package telemetry

// Histogram bucket definitions
var (
	// CodecBuckets for in-memory encode/decode latencies
	CodecBuckets = []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}

	// PayloadBuckets for encoded payload sizes in bytes
	PayloadBuckets = []float64{64, 256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304}
)

// Format Metrics
var (
	// EncodeTotal counts encode calls by format and result (success, failed)
	EncodeTotal CounterVec = noopCounterVec{}

	// DecodeTotal counts decode calls by format and result (success, failed)
	DecodeTotal CounterVec = noopCounterVec{}

	// CodecDurationSeconds measures encode/decode latency by format and operation
	CodecDurationSeconds HistogramVec = noopHistogramVec{}

	// PayloadBytes measures payload sizes by format and operation
	PayloadBytes HistogramVec = noopHistogramVec{}
)

// Tag Metrics
var (
	// TagIOTotal counts top-level tag stream reads/writes by operation and result
	TagIOTotal CounterVec = noopCounterVec{}

	// TagLenientDefaultsTotal counts primitive tag reads degraded to zero values
	TagLenientDefaultsTotal Counter = NoopStat{}
)

// File Metrics
var (
	// FileEventsTotal counts serial file lifecycle events by kind
	FileEventsTotal CounterVec = noopCounterVec{}

	// StoredFiles tracks entries held by the storage backend
	StoredFiles GaugeVec = noopGaugeVec{}

	// StoredBytes tracks bytes held by the storage backend
	StoredBytes GaugeVec = noopGaugeVec{}
)

// InitMetrics initializes all Prometheus metrics.
// Must be called after InitializeTelemetry().
func InitMetrics() {
	EncodeTotal = NewCounterVec(
		"encode_total",
		"Total encode calls by format and result",
		[]string{"format", "result"},
	)
	DecodeTotal = NewCounterVec(
		"decode_total",
		"Total decode calls by format and result",
		[]string{"format", "result"},
	)
	CodecDurationSeconds = NewHistogramVec(
		"codec_duration_seconds",
		"Encode/decode latency in seconds",
		[]string{"format", "op"},
		CodecBuckets,
	)
	PayloadBytes = NewHistogramVec(
		"payload_bytes",
		"Encoded payload size in bytes",
		[]string{"format", "op"},
		PayloadBuckets,
	)

	TagIOTotal = NewCounterVec(
		"tag_io_total",
		"Top-level tag stream operations by result",
		[]string{"op", "result"},
	)
	TagLenientDefaultsTotal = NewCounter(
		"tag_lenient_defaults_total",
		"Primitive tag reads replaced by zero values",
	)

	FileEventsTotal = NewCounterVec(
		"file_events_total",
		"Serial file lifecycle events by kind",
		[]string{"kind"},
	)
	StoredFiles = NewGaugeVec(
		"stored_files",
		"Entries held by the storage backend",
		[]string{"backend"},
	)
	StoredBytes = NewGaugeVec(
		"stored_bytes",
		"Bytes held by the storage backend",
		[]string{"backend"},
	)
}

// Result maps an error to the result label value
func Result(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
