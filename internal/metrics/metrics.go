package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jjenkins/clinicmap/internal/filter"
)

// unknownTag labels every selected tag outside the filter vocabulary
const unknownTag = "unknown"

// FilterMetrics exposes counters/histograms for the clinic filter endpoints.
type FilterMetrics struct {
	requestsTotal *prometheus.CounterVec
	tagsTotal     *prometheus.CounterVec
	resultSize    *prometheus.HistogramVec
	datasetSize   *prometheus.GaugeVec
}

// NewFilterMetrics registers the filter metrics with reg, or the default registerer when reg is nil
func NewFilterMetrics(reg prometheus.Registerer) *FilterMetrics {
	m := &FilterMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicmap",
			Subsystem: "filter",
			Name:      "requests_total",
			Help:      "Total filter requests by endpoint",
		}, []string{"endpoint"}),
		tagsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicmap",
			Subsystem: "filter",
			Name:      "selected_tags_total",
			Help:      "Service tags selected in filter requests",
		}, []string{"tag"}),
		resultSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicmap",
			Subsystem: "filter",
			Name:      "result_size",
			Help:      "Number of clinics returned per filter request",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"endpoint"}),
		datasetSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "clinicmap",
			Subsystem: "dataset",
			Name:      "records",
			Help:      "Records loaded from the published dataset",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.tagsTotal, m.resultSize, m.datasetSize)
	return m
}

// ObserveRequest counts a filter request and the number of clinics it returned
func (m *FilterMetrics) ObserveRequest(endpoint string, results int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(endpoint).Inc()
	m.resultSize.WithLabelValues(endpoint).Observe(float64(results))
}

// ObserveTags counts each selected service tag. Tags outside the filter
// vocabulary are counted under the "unknown" label.
func (m *FilterMetrics) ObserveTags(tags []string) {
	if m == nil {
		return
	}
	for _, tag := range tags {
		if !filter.IsServiceTag(tag) {
			tag = unknownTag
		}
		m.tagsTotal.WithLabelValues(tag).Inc()
	}
}

// SetDataset records how many physical and virtual clinics are being served
func (m *FilterMetrics) SetDataset(physical, virtual int) {
	if m == nil {
		return
	}
	m.datasetSize.WithLabelValues("physical").Set(float64(physical))
	m.datasetSize.WithLabelValues("virtual").Set(float64(virtual))
}
