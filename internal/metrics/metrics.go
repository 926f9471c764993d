package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourbirth_http_requests_total",
		Help: "Total number of HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tourbirth_http_request_duration_seconds",
		Help:    "Duration of HTTP request handling",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tourbirth_bookings_created_total",
		Help: "Total number of primary bookings created",
	})

	BookingStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourbirth_booking_status_changes_total",
		Help: "Booking status transitions by target status",
	}, []string{"status"})

	CompanionsAttached = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourbirth_companions_attached_total",
		Help: "Companion attachments by outcome (new or existing account)",
	}, []string{"outcome"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourbirth_notifications_total",
		Help: "Notification deliveries by template and result",
	}, []string{"template", "result"})

	UploadedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tourbirth_uploaded_bytes_total",
		Help: "Bytes written to the blob store by purpose",
	}, []string{"purpose"})
)
