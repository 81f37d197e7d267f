package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "barberia"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	reservationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_created_total",
			Help:      "Reservations created by kind.",
		},
		[]string{"kind"},
	)

	slotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_conflicts_total",
			Help:      "Booking attempts rejected because the slot was taken.",
		},
	)

	stockDepleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_depleted_total",
			Help:      "Products whose stock reached zero and were hidden from the page.",
		},
	)

	discountChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_validations_total",
			Help:      "Discount code validations by outcome.",
		},
		[]string{"outcome"},
	)

	syncTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_tasks_total",
			Help:      "Spreadsheet sync tasks by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			reservationsCreated,
			slotConflicts,
			stockDepleted,
			discountChecks,
			syncTasks,
		)
	})
}

// ObserveHTTP records one finished request.
func ObserveHTTP(route string, status int, seconds float64) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(seconds)
}

func IncReservation(kind string) {
	reservationsCreated.WithLabelValues(kind).Inc()
}

func IncSlotConflict() {
	slotConflicts.Inc()
}

func IncStockDepleted() {
	stockDepleted.Inc()
}

// IncDiscount records a validation outcome: "valid" or "rejected".
func IncDiscount(outcome string) {
	discountChecks.WithLabelValues(outcome).Inc()
}

// IncSync records a sync attempt: "ok", "retry" or "failed".
func IncSync(result string) {
	syncTasks.WithLabelValues(result).Inc()
}
