// Package telemetry exposes Prometheus collectors for the lead-generation
// service.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchRequestsTotal *prometheus.CounterVec
	emailsFoundTotal   prometheus.Counter
	sendsTotal         *prometheus.CounterVec
	jobsRunning        prometheus.Gauge
	businessesTotal    prometheus.Counter

	once sync.Once
)

// Init registers the collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		fetchRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadgen_fetch_requests_total",
				Help: "Crawl fetch completions partitioned by result.",
			},
			[]string{"result"},
		)
		emailsFoundTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "leadgen_emails_found_total",
				Help: "Businesses for which a contact email was resolved.",
			},
		)
		sendsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadgen_sends_total",
				Help: "Outreach send attempts partitioned by result.",
			},
			[]string{"result"},
		)
		jobsRunning = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "leadgen_jobs_running",
				Help: "Current number of running jobs.",
			},
		)
		businessesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "leadgen_businesses_total",
				Help: "Businesses discovered across all runs.",
			},
		)
	})
}

// ObserveFetch records one crawl fetch completion.
func ObserveFetch(ok bool) {
	if fetchRequestsTotal == nil {
		return
	}
	result := "error"
	if ok {
		result = "ok"
	}
	fetchRequestsTotal.WithLabelValues(result).Inc()
}

// ObserveEmailFound counts a resolved contact email.
func ObserveEmailFound() {
	if emailsFoundTotal != nil {
		emailsFoundTotal.Inc()
	}
}

// ObserveSend records one send attempt.
func ObserveSend(ok bool) {
	if sendsTotal == nil {
		return
	}
	result := "sent"
	if !ok {
		result = "failed"
	}
	sendsTotal.WithLabelValues(result).Inc()
}

// ObserveBusinesses counts discovered businesses.
func ObserveBusinesses(n int) {
	if businessesTotal != nil {
		businessesTotal.Add(float64(n))
	}
}

// JobStarted and JobFinished maintain the running-jobs gauge.
func JobStarted() {
	if jobsRunning != nil {
		jobsRunning.Inc()
	}
}

// JobFinished decrements the running-jobs gauge.
func JobFinished() {
	if jobsRunning != nil {
		jobsRunning.Dec()
	}
}
