package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PagesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_pages_fetched_total",
			Help: "Pages fetched successfully",
		},
	)
	FetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_fetch_failures_total",
			Help: "Pages that failed to fetch",
		},
	)
	ProductsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_products_submitted_total",
			Help: "Products accepted by the catalog API",
		},
	)
	SubmissionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_submission_failures_total",
			Help: "Products rejected by the catalog API",
		},
	)
	URLsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_urls_skipped_total",
			Help: "Listing URLs skipped because they were already crawled",
		},
	)
)

func init() {
	prometheus.MustRegister(
		PagesFetched,
		FetchFailures,
		ProductsSubmitted,
		SubmissionFailures,
		URLsSkipped,
	)
}

// Handler exposes the registry for mounting on the API router.
func Handler() http.Handler {
	return promhttp.Handler()
}
