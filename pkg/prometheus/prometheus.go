package prometheus

import "github.com/prometheus/client_golang/prometheus"

var (
	CommandCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Count of processed commands",
		},
		[]string{"command", "status"},
	)
	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_command_duration_seconds",
			Help:    "Time taken to process command",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"command"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_active_sessions_total",
			Help: "Current number of users with in-flight sessions",
		},
	)

	ModelAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_model_attempts_total",
			Help: "Count of identification attempts per model",
		},
		[]string{"model", "outcome"}, // success, error, unparsable, no_animal
	)

	ModelFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_model_fallbacks_total",
			Help: "Count of advances to the next model in the chain",
		},
	)

	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_cache_operations_total",
			Help: "Count of taxonomy cache lookups",
		},
		[]string{"result"}, // hit, miss, error
	)

	APIFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_api_failures_total",
			Help: "Count of failed external API calls",
		},
		[]string{"method"},
	)

	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_sent_total",
			Help: "Count of sent messages",
		},
		[]string{"type"}, // text, photo
	)
)

func Init() {
	prometheus.MustRegister(
		CommandCounter,
		CommandDuration,
		ActiveSessions,
		ModelAttempts,
		ModelFallbacks,
		CacheOperations,
		APIFailures,
		MessagesSent,
	)
}
