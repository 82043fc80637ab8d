package metrics

import (
	"strconv"
	"time"

	"fitcoach/sources/tracing"

	"github.com/prometheus/client_golang/prometheus"
)

type MetricsService struct {
	log *tracing.Logger
}

var (
	answersServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_answers_served_total",
			Help: "Total number of answer requests by outcome",
		},
		[]string{"outcome"},
	)

	answersShared = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fitcoach_answers_shared_total",
			Help: "Total number of answers shared with a concurrent in-flight generation",
		},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_cache_lookups_total",
			Help: "Total number of response cache lookups by result",
		},
		[]string{"result"},
	)

	cacheStores = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_cache_stores_total",
			Help: "Total number of response cache writes by status",
		},
		[]string{"status"},
	)

	plansGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_plans_generated_total",
			Help: "Total number of plan generation requests by outcome",
		},
		[]string{"type", "outcome"},
	)

	planDaysParsed = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fitcoach_plan_days_parsed",
			Help:    "Number of non-empty days parsed from a generated plan",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7},
		},
	)

	workoutSessionsParsed = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fitcoach_workout_sessions_parsed",
			Help:    "Number of sessions parsed across the weeks of a generated workout plan",
			Buckets: []float64{0, 4, 8, 12, 16, 20, 24, 28},
		},
	)

	tokenUsage = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_token_usage_total",
			Help: "Total number of tokens used",
		},
		[]string{"model", "type"},
	)

	costUsage = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_cost_usage_total",
			Help: "Total cost incurred",
		},
		[]string{"model", "type"},
	)

	aiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitcoach_ai_request_duration_seconds",
			Help:    "Duration of AI provider requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model", "status"},
	)

	personalizationUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_personalization_updates_total",
			Help: "Total number of per-user personalization recomputations by status",
		},
		[]string{"status"},
	)

	personalizationBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fitcoach_personalization_batch_duration_seconds",
			Help:    "Duration of personalization batch runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		},
	)

	personalizationLastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitcoach_personalization_last_run_timestamp_seconds",
			Help: "Unix time of the last finished personalization batch",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitcoach_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	requestsThrottled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitcoach_requests_throttled_total",
			Help: "Total number of requests rejected by the throttler",
		},
		[]string{"scope"},
	)

	statsTotalUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitcoach_stats_total_users",
			Help: "Total number of user profiles",
		},
	)

	statsDailyQuestions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitcoach_stats_daily_questions",
			Help: "Health questions asked in the last 24h",
		},
	)

	statsDailyPlans = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitcoach_stats_daily_plans",
			Help: "Plans generated in the last 24h",
		},
	)
)

func init() {
	prometheus.MustRegister(answersServed)
	prometheus.MustRegister(answersShared)
	prometheus.MustRegister(cacheLookups)
	prometheus.MustRegister(cacheStores)
	prometheus.MustRegister(plansGenerated)
	prometheus.MustRegister(planDaysParsed)
	prometheus.MustRegister(workoutSessionsParsed)
	prometheus.MustRegister(tokenUsage)
	prometheus.MustRegister(costUsage)
	prometheus.MustRegister(aiRequestDuration)
	prometheus.MustRegister(personalizationUpdates)
	prometheus.MustRegister(personalizationBatchDuration)
	prometheus.MustRegister(personalizationLastRun)
	prometheus.MustRegister(httpRequests)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(requestsThrottled)
	prometheus.MustRegister(statsTotalUsers)
	prometheus.MustRegister(statsDailyQuestions)
	prometheus.MustRegister(statsDailyPlans)
}

func NewMetricsService(log *tracing.Logger) *MetricsService {
	return &MetricsService{
		log: log,
	}
}

func (s *MetricsService) RecordAnswer(outcome string) {
	answersServed.WithLabelValues(outcome).Inc()
}

func (s *MetricsService) RecordSharedAnswer() {
	answersShared.Inc()
}

func (s *MetricsService) RecordCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

func (s *MetricsService) RecordCacheStore(status string) {
	cacheStores.WithLabelValues(status).Inc()
}

func (s *MetricsService) RecordPlanGenerated(planType, outcome string) {
	plansGenerated.WithLabelValues(planType, outcome).Inc()
}

func (s *MetricsService) RecordPlanDaysParsed(days int) {
	planDaysParsed.Observe(float64(days))
}

func (s *MetricsService) RecordWorkoutSessionsParsed(sessions int) {
	workoutSessionsParsed.Observe(float64(sessions))
}

func (s *MetricsService) RecordUsage(tokens int, cost float64, model string, usageType string) {
	tokenUsage.WithLabelValues(model, usageType).Add(float64(tokens))
	costUsage.WithLabelValues(model, usageType).Add(cost)
}

func (s *MetricsService) RecordAIRequestDuration(duration time.Duration, model string, status string) {
	aiRequestDuration.WithLabelValues(model, status).Observe(duration.Seconds())
}

func (s *MetricsService) RecordPersonalizationUpdate(status string) {
	personalizationUpdates.WithLabelValues(status).Inc()
}

func (s *MetricsService) RecordPersonalizationBatch(duration time.Duration, finishedAt time.Time) {
	personalizationBatchDuration.Observe(duration.Seconds())
	personalizationLastRun.Set(float64(finishedAt.Unix()))
}

func (s *MetricsService) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (s *MetricsService) RecordThrottled(scope string) {
	requestsThrottled.WithLabelValues(scope).Inc()
}

func (s *MetricsService) SetTotalUsers(count float64) {
	statsTotalUsers.Set(count)
}

func (s *MetricsService) SetDailyQuestions(count float64) {
	statsDailyQuestions.Set(count)
}

func (s *MetricsService) SetDailyPlans(count float64) {
	statsDailyPlans.Set(count)
}
