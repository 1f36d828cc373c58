package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	DBOpenConns     prometheus.Gauge
	DBInUseConns    prometheus.Gauge
	DBIdleConns     prometheus.Gauge
	DBWaitCount     prometheus.Gauge

	BookingAttempts   *prometheus.CounterVec
	BookingsExpired   *prometheus.CounterVec
	PaymentSessions   *prometheus.CounterVec
	PaymentsConfirmed *prometheus.CounterVec
}

// New регистрирует метрики в глобальном registry (его отдает promhttp.Handler)
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном registry
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Database query errors",
			ConstLabels: constLabels,
		}, []string{"operation"}),
		DBOpenConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Open connections in the pool",
			ConstLabels: constLabels,
		}),
		DBInUseConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Connections currently in use",
			ConstLabels: constLabels,
		}),
		DBIdleConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Idle connections in the pool",
			ConstLabels: constLabels,
		}),
		DBWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}),

		BookingAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_attempts_total",
			Help:        "Booking creation attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"result"}),
		BookingsExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_expired_total",
			Help:        "Unpaid bookings reclaimed after the payment window",
			ConstLabels: constLabels,
		}, []string{"trigger"}),
		PaymentSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_sessions_total",
			Help:        "Checkout sessions opened at the payment gateway",
			ConstLabels: constLabels,
		}, []string{"result"}),
		PaymentsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payments_confirmed_total",
			Help:        "Gateway confirmations processed by outcome",
			ConstLabels: constLabels,
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBQueryErrors,
		m.DBOpenConns,
		m.DBInUseConns,
		m.DBIdleConns,
		m.DBWaitCount,
		m.BookingAttempts,
		m.BookingsExpired,
		m.PaymentSessions,
		m.PaymentsConfirmed,
	)

	return m
}

// Методы ниже допускают nil-получатель, когда метрики выключены

// IncBookingAttempt учитывает результат попытки бронирования
func (m *Metrics) IncBookingAttempt(result string) {
	if m == nil {
		return
	}
	m.BookingAttempts.WithLabelValues(result).Inc()
}

// IncBookingExpired учитывает освобожденный по таймауту слот
func (m *Metrics) IncBookingExpired(trigger string) {
	if m == nil {
		return
	}
	m.BookingsExpired.WithLabelValues(trigger).Inc()
}

// IncPaymentSession учитывает попытку открыть checkout-сессию
func (m *Metrics) IncPaymentSession(result string) {
	if m == nil {
		return
	}
	m.PaymentSessions.WithLabelValues(result).Inc()
}

// IncPaymentConfirmation учитывает обработанное подтверждение платежа
func (m *Metrics) IncPaymentConfirmation(result string) {
	if m == nil {
		return
	}
	m.PaymentsConfirmed.WithLabelValues(result).Inc()
}
