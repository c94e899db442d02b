package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelsocial_events_published_total",
		Help: "The total number of events published on the in-process bus",
	}, []string{"kind"})

	SubscriberFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelsocial_event_subscriber_failures_total",
		Help: "The total number of subscriber invocations that returned an error or panicked",
	}, []string{"subscriber", "kind", "reason"})

	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelsocial_notifications_created_total",
		Help: "The total number of persisted notifications",
	}, []string{"kind"})

	NotificationsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travelsocial_notifications_suppressed_total",
		Help: "The total number of notifications dropped by the suppression policy",
	}, []string{"kind", "reason"})
)
