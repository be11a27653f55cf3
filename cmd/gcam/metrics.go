package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.HistogramVec
	jobs     *prometheus.CounterVec
	lines    prometheus.Counter
	length   prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "gcam_http_request_duration_seconds",
				Help: "Duration of API requests",
			},
			[]string{"route", "method"},
		),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gcam_jobs_total",
				Help: "Jobs run through the API",
			},
			[]string{"result"},
		),
		lines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gcam_program_lines_total",
			Help: "Program lines generated",
		}),
		length: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gcam_job_path_length_millimeters",
			Help:    "Total expanded path length per job",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		}),
	}
	reg.MustRegister(m.requests, m.jobs, m.lines, m.length)
	return m
}
