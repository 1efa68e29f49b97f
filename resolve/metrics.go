package resolve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Rehan959/info-tracker-sub000/profile"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "profile_resolutions_total",
		Help: "Resolution results by platform and outcome.",
	}, []string{"platform", "outcome"})

	providerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "profile_provider_failures_total",
		Help: "Provider tier failures that fell through to scraping.",
	}, []string{"platform"})

	scrapeFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "profile_scrape_fallbacks_total",
		Help: "Successful resolutions served by the scrape tier.",
	}, []string{"platform"})
)

func recordOutcome(p profile.Platform, o Outcome) {
	resolutionsTotal.WithLabelValues(string(p), string(o)).Inc()
}

func recordProviderFailure(p profile.Platform) {
	providerFailuresTotal.WithLabelValues(string(p)).Inc()
}

func recordScrapeFallback(p profile.Platform) {
	scrapeFallbacksTotal.WithLabelValues(string(p)).Inc()
}
