package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics собирает все prometheus-метрики сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database
	DBQueriesTotal    *prometheus.CounterVec
	DBQueryDuration   *prometheus.HistogramVec
	DBConnectionsOpen prometheus.Gauge
	DBConnectionsIdle prometheus.Gauge

	// Business
	SlotQueriesTotal        *prometheus.CounterVec
	AppointmentsTotal       *prometheus.CounterVec
	AutomationDispatchTotal *prometheus.CounterVec
}

// New создает и регистрирует все метрики сервиса
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "result"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		DBConnectionsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_open",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}),

		DBConnectionsIdle: promauto.NewGauge(prometheus.GaugeOpts{
			Name:        "db_connections_idle",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}),

		SlotQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_queries_total",
			Help:        "Total number of availability queries",
			ConstLabels: constLabels,
		}, []string{"result"}),

		AppointmentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointments_total",
			Help:        "Total number of appointment creation attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),

		AutomationDispatchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "automation_dispatch_total",
			Help:        "Total number of automation trigger deliveries",
			ConstLabels: constLabels,
		}, []string{"trigger", "result"}),
	}
}

// ObserveHTTPRequest фиксирует выполненный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует выполненный запрос к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.DBQueriesTotal.WithLabelValues(operation, result).Inc()
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncSlotQuery фиксирует запрос доступных слотов
func (m *Metrics) IncSlotQuery(result string) {
	m.SlotQueriesTotal.WithLabelValues(result).Inc()
}

// IncAppointment фиксирует попытку создания записи с её исходом
// outcome: created, outside_schedule, blocked, staff_conflict, room_conflict, concurrency_conflict, error
func (m *Metrics) IncAppointment(outcome string) {
	m.AppointmentsTotal.WithLabelValues(outcome).Inc()
}

// IncAutomationDispatch фиксирует доставку автоматизации
func (m *Metrics) IncAutomationDispatch(trigger, result string) {
	m.AutomationDispatchTotal.WithLabelValues(trigger, result).Inc()
}
