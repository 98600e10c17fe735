package web

import (
	"net/http"

	wifiscand "github.com/dogeorg/wifiscand/pkg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ScanMetrics exposes scan outcomes for Prometheus scraping, on its
// own registry so we don't pick up the global collectors.
type ScanMetrics struct {
	registry *prometheus.Registry

	scansTotal       *prometheus.CounterVec
	scanDuration     prometheus.Histogram
	networksObserved prometheus.Gauge
	openNetworks     prometheus.Gauge
	historyAddresses prometheus.GaugeFunc
}

// NewScanMetrics registers collectors. history may be nil.
func NewScanMetrics(history *wifiscand.HistoryStore) *ScanMetrics {
	m := &ScanMetrics{
		registry: prometheus.NewRegistry(),
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wifiscand_scans_total",
				Help: "Scans run, by outcome",
			},
			[]string{"outcome"},
		),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wifiscand_scan_duration_seconds",
			Help:    "Time from scan request to classified results",
			Buckets: []float64{0.5, 1, 2, 3, 4, 5, 7.5, 10, 15},
		}),
		networksObserved: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wifiscand_networks_observed",
			Help: "Networks returned by the last scan",
		}),
		openNetworks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wifiscand_open_networks",
			Help: "Open (high risk) networks returned by the last scan",
		}),
	}

	m.registry.MustRegister(m.scansTotal, m.scanDuration, m.networksObserved, m.openNetworks)

	if history != nil {
		m.historyAddresses = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "wifiscand_history_addresses",
			Help: "Distinct BSSIDs with signal history",
		}, func() float64 { return float64(history.Len()) })
		m.registry.MustRegister(m.historyAddresses)
	}

	return m
}

func (m *ScanMetrics) Observe(r wifiscand.ScanResult) {
	m.scansTotal.WithLabelValues(string(r.Outcome)).Inc()
	if r.Outcome == wifiscand.OutcomeCancelled {
		return
	}
	m.scanDuration.Observe(r.Duration.Seconds())

	open := 0
	for _, n := range r.Networks {
		if n.Risk == wifiscand.RiskHigh {
			open++
		}
	}
	m.networksObserved.Set(float64(len(r.Networks)))
	m.openNetworks.Set(float64(open))
}

func (m *ScanMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *ScanMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
