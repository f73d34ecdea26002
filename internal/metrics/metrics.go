package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carscout_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "carscout_cycle_duration_seconds",
			Help:    "Duration of each alert processing cycle in seconds.",
			Buckets: []float64{5, 15, 60, 300, 900},
		},
	)
	CycleStepDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "carscout_cycle_step_duration_seconds",
			Help:       "Duration of each step in the alert processing cycle.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step"},
	)
	ListingsProcessedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "carscout_listings_processed_total",
			Help: "Total number of listings run through the alert pipeline.",
		},
	)
	NotificationsSentCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "carscout_notifications_sent_total",
			Help: "Total number of listing notifications sent.",
		},
	)
	ParseDroppedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "carscout_parse_dropped_total",
			Help: "Total number of listing elements dropped as malformed.",
		},
	)
)

func StartMetricsServer() {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(CycleDuration)
	prometheus.MustRegister(CycleStepDuration)
	prometheus.MustRegister(ListingsProcessedCounter)
	prometheus.MustRegister(NotificationsSentCounter)
	prometheus.MustRegister(ParseDroppedCounter)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(":8080", nil))
	}()
}
