package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"survey-registry/internal/models"
)

func TestObserveReport(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveReport(models.RunReport{
		Sources: []models.SourceReport{
			{Path: "a.csv"},
			{Path: "b.csv", Error: "decode failed"},
		},
		RecordsExtracted:  10,
		RecordsFiltered:   2,
		People:            7,
		AttendanceMatched: 4,
		Unmatched:         []models.UnmatchedName{{Name: "Zoe"}},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SourcesProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourcesFailed))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.RecordsExtracted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsFiltered))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.People))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.AttendanceMatched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AttendanceUnmatched))
}

func TestObserveReportNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveReport(models.RunReport{}) })
}
