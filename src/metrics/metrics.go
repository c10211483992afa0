// Package metrics exposes the Prometheus collectors for the suggestion
// core. The API server serves them on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SuggestionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "suggestbot_suggestions_created_total",
		Help: "Suggestions accepted and persisted.",
	})

	SubmissionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggestbot_submissions_rejected_total",
		Help: "Submissions refused before persistence, by reason.",
	}, []string{"reason"})

	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggestbot_votes_cast_total",
		Help: "Vote button presses applied, by kind.",
	}, []string{"kind"})

	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggestbot_status_changes_total",
		Help: "Status transitions persisted, by new status.",
	}, []string{"status"})

	SuggestionsArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "suggestbot_suggestions_archived_total",
		Help: "Suggestions auto-archived for inactivity.",
	})
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
