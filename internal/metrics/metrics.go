package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "umrahdesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "umrahdesk",
			Name:      "bookings_created_total",
			Help:      "Successfully committed bookings.",
		},
	)

	notifySent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "umrahdesk",
			Name:      "notify_sent_total",
			Help:      "Delivered notification tasks by type.",
		},
		[]string{"task_type"},
	)

	notifyFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "umrahdesk",
			Name:      "notify_failures_total",
			Help:      "Failed notification deliveries by type.",
		},
		[]string{"task_type"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, notifySent, notifyFailures)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts one committed booking.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncNotifySent counts one delivered notification.
func IncNotifySent(taskType string) {
	notifySent.WithLabelValues(taskType).Inc()
}

// IncNotifyFailure counts one failed notification delivery attempt chain.
func IncNotifyFailure(taskType string) {
	notifyFailures.WithLabelValues(taskType).Inc()
}
