package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ArticlesPublished counts created articles.
	ArticlesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conduit_articles_published_total",
		Help: "Total number of articles created",
	})

	// RelationshipToggles counts favorite/follow toggles by kind and whether state changed.
	RelationshipToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conduit_relationship_toggles_total",
		Help: "Favorite and follow toggles by kind and outcome",
	}, []string{"kind", "outcome"})

	// ArticleListings counts listing queries by variant (all, feed).
	ArticleListings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conduit_article_listings_total",
		Help: "Article listing queries by variant",
	}, []string{"variant"})

	// CacheLookups counts cache-aside lookups by key family and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conduit_cache_lookups_total",
		Help: "Cache-aside lookups by key family and result",
	}, []string{"family", "result"})
)

// RecordToggle counts a toggle; changed is false for idempotent no-ops.
func RecordToggle(kind string, changed bool) {
	outcome := "noop"
	if changed {
		outcome = "changed"
	}
	RelationshipToggles.WithLabelValues(kind, outcome).Inc()
}
