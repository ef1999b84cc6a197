package metrics

import (
	"github.com/ageorgief/BookLibrary/internal/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "lending"

// Metrics groups the service collectors around one registry
type Metrics struct {
	Registry   *prometheus.Registry
	operations *prometheus.CounterVec
}

// New registers operation counters and catalog gauges read from l
func New(l *ledger.Ledger) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Ledger operations by name and result code.",
	}, []string{"operation", "result"})
	reg.MustRegister(operations)

	gauge := func(name, help string, value func(ledger.Stats) float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, func() float64 { return value(l.Stats()) })
	}
	reg.MustRegister(
		gauge("books", "Catalogued titles.", func(s ledger.Stats) float64 { return float64(s.Books) }),
		gauge("available_books", "Titles with at least one copy on the shelf.", func(s ledger.Stats) float64 { return float64(s.AvailableBooks) }),
		gauge("copies_on_shelf", "Copies not on loan across all titles.", func(s ledger.Stats) float64 { return float64(s.CopiesOnShelf) }),
		gauge("active_loans", "Copies currently on loan.", func(s ledger.Stats) float64 { return float64(s.ActiveLoans) }),
	)

	return &Metrics{Registry: reg, operations: operations}
}

// Observe counts one finished operation
func (m *Metrics) Observe(operation, result string) {
	m.operations.WithLabelValues(operation, result).Inc()
}
