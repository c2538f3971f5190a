package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/gema-ai/pkg/ai"
)

var resultSources = []ai.SourceKind{ai.SourceCache, ai.SourceProvider, ai.SourceFallback}

// MetricsHandler serves the Prometheus scrape endpoint. Result series for
// every operation and source are exported from the first scrape, at zero
// until traffic arrives.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	for _, op := range ai.Operations() {
		for _, source := range resultSources {
			Results().WithLabelValues(string(op), string(source))
		}
	}

	handler := promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		}),
	)
	return adaptor.HTTPHandler(handler)
}
