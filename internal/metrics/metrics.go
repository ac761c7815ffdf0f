package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	availabilityRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turnero",
			Name:      "availability_requests_total",
			Help:      "Count of availability queries by result status.",
		},
		[]string{"status"},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turnero",
			Name:      "booking_created_total",
			Help:      "Count of commitments created by kind.",
		},
		[]string{"kind"},
	)

	bookingRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turnero",
			Name:      "booking_rejected_total",
			Help:      "Count of booking attempts rejected by error code.",
		},
		[]string{"code"},
	)

	classCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "turnero",
			Name:      "class_cancelled_total",
			Help:      "Count of scheduled classes cancelled by users.",
		},
	)

	packPurchased = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "turnero",
			Name:      "pack_purchased_total",
			Help:      "Count of class packs purchased.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			availabilityRequests, bookingCreated, bookingRejected,
			classCancelled, packPurchased,
		)
	})
}

func IncAvailabilityRequest(status string) {
	availabilityRequests.WithLabelValues(status).Inc()
}

func IncBookingCreated(kind string) {
	bookingCreated.WithLabelValues(kind).Inc()
}

func IncBookingRejected(code string) {
	bookingRejected.WithLabelValues(code).Inc()
}

func IncClassCancelled() {
	classCancelled.Inc()
}

func IncPackPurchased() {
	packPurchased.Inc()
}
