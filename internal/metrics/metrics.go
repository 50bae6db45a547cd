// Package metrics defines and registers the custom Prometheus metrics for the
// inventario API. It is the single source of truth for metric names, labels,
// and help strings. Metrics use promauto and register against the default
// registry at package load; the /metrics endpoint is wired in the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inventario"

// ProductsCreatedTotal counts products that were durably created.
// Label:
//   - with_image: "true" when an image blob accompanied the create
var ProductsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "products_created_total",
		Help:      "Total number of products created, by image presence.",
	},
	[]string{"with_image"},
)

// ImageUploadsTotal counts media store upload calls.
// Label:
//   - result: "ok" or "error"
var ImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Total number of image uploads to the media store, by result.",
	},
	[]string{"result"},
)

// ImageDestroysTotal counts media store destroy calls, including the
// best-effort ones issued during update and delete.
// Label:
//   - result: "ok" or "error"
var ImageDestroysTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_destroys_total",
		Help:      "Total number of image destroy requests to the media store, by result.",
	},
	[]string{"result"},
)

// ResultLabel converts an error into the metric result label.
func ResultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
