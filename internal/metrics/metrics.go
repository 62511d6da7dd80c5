// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsSavedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entry_records_saved_total",
			Help: "Total number of attendance/assessment records written by entry saves",
		},
		[]string{"kind"},
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_rows_total",
			Help: "Outcome of student roster import rows",
		},
		[]string{"result"},
	)

	AttendanceRateGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "report_attendance_rate",
			Help: "Attendance rate last computed per report scope",
		},
		[]string{"scope"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
