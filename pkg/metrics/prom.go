package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// UsersTotal tracks the number of known users
	UsersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sales_bot_users_total",
			Help: "Total number of registered users",
		},
	)

	// AdsTotal tracks the number of published ads
	AdsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sales_bot_ads_total",
			Help: "Total number of ads",
		},
	)

	// ActiveUsers tracks users active within the reporting window
	ActiveUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sales_bot_active_users",
			Help: "Number of users active within the reporting window",
		},
	)

	// SubscriptionsTotal tracks saved searches across all users
	SubscriptionsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sales_bot_subscriptions_total",
			Help: "Total number of saved search subscriptions",
		},
	)

	// StorageOperations counts storage mutations
	StorageOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_bot_storage_operations_total",
			Help: "Total number of storage mutations",
		},
		[]string{"operation"}, // operation: create_ad, add_favorite, ...
	)

	// PersistenceErrors tracks failed loads and saves
	PersistenceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_bot_persistence_errors_total",
			Help: "Total number of persistence errors",
		},
		[]string{"operation"}, // operation: load, save
	)

	// PersistDuration tracks full-state rewrite latency
	PersistDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sales_bot_persist_duration_seconds",
			Help:    "Duration of full state rewrites",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
	)

	// Notifications tracks subscription notifications
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_bot_notifications_total",
			Help: "Total number of subscription notifications",
		},
		[]string{"status"}, // status: sent, failed
	)
)

func init() {
	prometheus.MustRegister(UsersTotal)
	prometheus.MustRegister(AdsTotal)
	prometheus.MustRegister(ActiveUsers)
	prometheus.MustRegister(SubscriptionsTotal)
	prometheus.MustRegister(StorageOperations)
	prometheus.MustRegister(PersistenceErrors)
	prometheus.MustRegister(PersistDuration)
	prometheus.MustRegister(Notifications)
}

// MustServe exposes Prometheus metrics on the given address (e.g., ":8080").
// It launches http.Server in a separate goroutine and fatal-logs on startup
// failure. Returns the server so the caller can gracefully shutdown.
//
//	srv := metrics.MustServe(":8080", log)
//	// later: srv.Shutdown(ctx)
func MustServe(addr string, log *zap.SugaredLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infow("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("metrics server failed", "err", err)
		}
	}()

	return srv
}

// UpdateStorageTotals sets the collection size gauges
func UpdateStorageTotals(users, ads, subscriptions int) {
	UsersTotal.Set(float64(users))
	AdsTotal.Set(float64(ads))
	SubscriptionsTotal.Set(float64(subscriptions))
}

// UpdateActiveUsers updates the active users metric
func UpdateActiveUsers(count int) {
	ActiveUsers.Set(float64(count))
}

// IncrementOperation increments the storage mutation counter
func IncrementOperation(operation string) {
	StorageOperations.WithLabelValues(operation).Inc()
}

// IncrementPersistenceError increments persistence error counter
func IncrementPersistenceError(operation string) {
	PersistenceErrors.WithLabelValues(operation).Inc()
}

// ObservePersist records the duration of one full rewrite
func ObservePersist(d time.Duration) {
	PersistDuration.Observe(d.Seconds())
}

// IncrementNotification increments the notification counter
func IncrementNotification(status string) {
	Notifications.WithLabelValues(status).Inc()
}
