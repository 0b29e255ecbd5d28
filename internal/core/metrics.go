// AngelaMos | 2026
// metrics.go

package core

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PaletteSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "palette_searches_total",
			Help: "Directory searches by whether they returned anything",
		},
		[]string{"result"},
	)

	PaletteNavigationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "palette_navigations_total",
			Help: "Resources opened from the command palette by type",
		},
		[]string{"type"},
	)

	HelpfulVotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_helpful_votes_total",
			Help: "Helpful votes by outcome",
		},
		[]string{"outcome"},
	)

	CollaboratorErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_errors_total",
			Help: "Failed calls to upstream collaborators",
		},
		[]string{"operation"},
	)
)

// RegisterSessionGauge exposes the number of open sessions of one kind.
// Registering the same kind twice is a no-op.
func RegisterSessionGauge(kind string, count func() int) error {
	gauge := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "open_sessions",
			Help:        "In-memory UI sessions currently held",
			ConstLabels: prometheus.Labels{"kind": kind},
		},
		func() float64 { return float64(count()) },
	)

	if err := prometheus.Register(gauge); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return nil
		}
		return err
	}

	return nil
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
