package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"survey-registry/internal/models"
)

// Metrics holds the Prometheus collectors for pipeline runs
type Metrics struct {
	SourcesProcessed    prometheus.Counter
	SourcesFailed       prometheus.Counter
	RecordsExtracted    prometheus.Counter
	RecordsFiltered     prometheus.Counter
	People              prometheus.Gauge
	AttendanceMatched   prometheus.Counter
	AttendanceUnmatched prometheus.Counter
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SourcesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_sources_processed_total",
			Help: "Total number of survey exports read",
		}),
		SourcesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_sources_failed_total",
			Help: "Total number of survey exports skipped because they could not be read",
		}),
		RecordsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_records_extracted_total",
			Help: "Total number of rows kept as raw records",
		}),
		RecordsFiltered: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_records_filtered_total",
			Help: "Total number of rows dropped for carrying no name, email or handle",
		}),
		People: factory.NewGauge(prometheus.GaugeOpts{
			Name: "registry_people",
			Help: "Number of canonical people in the latest registry",
		}),
		AttendanceMatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_attendance_matched_total",
			Help: "Total number of attendance names attached to a person",
		}),
		AttendanceUnmatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_attendance_unmatched_total",
			Help: "Total number of attendance names left unattached",
		}),
	}
}

// ObserveReport records the outcome of one run
func (m *Metrics) ObserveReport(r models.RunReport) {
	if m == nil {
		return
	}
	m.SourcesProcessed.Add(float64(len(r.Sources)))
	m.SourcesFailed.Add(float64(r.FailedSources()))
	m.RecordsExtracted.Add(float64(r.RecordsExtracted))
	m.RecordsFiltered.Add(float64(r.RecordsFiltered))
	m.People.Set(float64(r.People))
	m.AttendanceMatched.Add(float64(r.AttendanceMatched))
	m.AttendanceUnmatched.Add(float64(len(r.Unmatched)))
}
