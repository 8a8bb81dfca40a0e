// Package metrics exposes Prometheus counters for parse runs.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"fjacquet/mis-parser/internal/parsererror"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mis_parser"

// Recorder records parse outcomes. A nil *Recorder records nothing.
type Recorder struct {
	registry       *prometheus.Registry
	filesParsed    *prometheus.CounterVec
	filesFailed    *prometheus.CounterVec
	rowsEmitted    *prometheus.CounterVec
	entriesSkipped *prometheus.CounterVec
	parseDuration  *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		filesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_parsed_total",
			Help:      "Input files normalized successfully.",
		}, []string{"source"}),
		filesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_failed_total",
			Help:      "Input files that failed, by error kind.",
		}, []string{"source", "kind"}),
		rowsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_emitted_total",
			Help:      "Canonical rows produced.",
		}, []string{"source"}),
		entriesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_entries_skipped_total",
			Help:      "Archive entries left out of assembly, by reason.",
		}, []string{"source", "reason"}),
		parseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Duration of a parse run in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
	}
	r.registry.MustRegister(r.filesParsed, r.filesFailed, r.rowsEmitted, r.entriesSkipped, r.parseDuration)
	return r
}

// Registry returns the registry the collectors are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Parsed records a successful run.
func (r *Recorder) Parsed(source string, rows int, d time.Duration) {
	if r == nil {
		return
	}
	r.filesParsed.WithLabelValues(source).Inc()
	r.rowsEmitted.WithLabelValues(source).Add(float64(rows))
	r.parseDuration.WithLabelValues(source).Observe(d.Seconds())
}

// Failed records a failed run, labelled with the kind of err.
func (r *Recorder) Failed(source string, err error, d time.Duration) {
	if r == nil {
		return
	}
	r.filesFailed.WithLabelValues(source, ErrorKind(err)).Inc()
	r.parseDuration.WithLabelValues(source).Observe(d.Seconds())
}

// EntrySkipped records an archive entry excluded from assembly.
func (r *Recorder) EntrySkipped(source, reason string) {
	if r == nil {
		return
	}
	r.entriesSkipped.WithLabelValues(source, reason).Inc()
}

// ErrorKind names the taxonomy kind of err for labelling.
func ErrorKind(err error) string {
	var (
		threshold   *parsererror.ThresholdViolationError
		sanitize    *parsererror.SanitizationError
		assembly    *parsererror.ArchiveAssemblyError
		unsupported *parsererror.UnsupportedFormatError
		read        *parsererror.FormatReadError
		pw          *parsererror.PasswordResolutionError
	)
	switch {
	case errors.As(err, &threshold):
		return "threshold_violation"
	case errors.As(err, &sanitize):
		return "sanitization"
	case errors.As(err, &assembly):
		return "archive_assembly"
	case errors.As(err, &unsupported):
		return "unsupported_format"
	case errors.As(err, &read):
		return "format_read"
	case errors.As(err, &pw):
		return "password_resolution"
	default:
		return "other"
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until the server fails.
func (r *Recorder) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return server.ListenAndServe()
}
