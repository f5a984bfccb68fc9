// Package obs provides the structured logging and verdict metrics shared
// by the transport and CLI layers. Grounded on the teacher's log call
// sites (cmd/preprocess, pkg/api's request logging) but generalized to
// github.com/rs/zerolog now that the pipeline has multiple concurrent
// consumer goroutines whose logs need per-field correlation (topic,
// partition, verdict) rather than plain printf lines.
package obs

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/azybler/bsm-filter/internal/bsm"
)

// NewLogger returns a zerolog.Logger. pretty selects the human-readable
// console writer (local runs); false selects newline-delimited JSON
// output (production), matching the split the teacher draws between its
// server's human logs and its API's structured request-logging line.
func NewLogger(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	if pretty {
		return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

// VerdictCounter counts processed messages by verdict string
// ("success", "speed", "geoposition", "parse", "missing", "other"),
// scraped from the module's Prometheus /metrics endpoint.
type VerdictCounter struct {
	vec *prometheus.CounterVec
}

// NewVerdictCounter registers a verdict counter vector against reg.
func NewVerdictCounter(reg prometheus.Registerer) (*VerdictCounter, error) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bsmfilter",
		Name:      "verdicts_total",
		Help:      "Count of BSM processing outcomes by verdict.",
	}, []string{"verdict"})

	if err := reg.Register(vec); err != nil {
		return nil, err
	}
	return &VerdictCounter{vec: vec}, nil
}

// Observe increments the counter for v.
func (c *VerdictCounter) Observe(v bsm.Verdict) {
	c.vec.WithLabelValues(v.String()).Inc()
}
