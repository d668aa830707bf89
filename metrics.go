package iavlx

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Inserts     prometheus.Counter
	Updates     prometheus.Counter
	HashedNodes prometheus.Counter
	Commits     prometheus.Counter
	TreeHeight  prometheus.Gauge
	TreeSize    prometheus.Gauge
}

// NewMetrics creates the tree collectors and registers them with reg, if reg is non-nil.
// The constant labels are attached to every collector, e.g. the store name.
func NewMetrics(reg prometheus.Registerer, labels prometheus.Labels) *Metrics {
	m := &Metrics{
		Inserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "iavlx",
			Name:        "inserts_total",
			Help:        "Number of keys inserted into the tree.",
			ConstLabels: labels,
		}),
		Updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "iavlx",
			Name:        "updates_total",
			Help:        "Number of sets that overwrote an existing key.",
			ConstLabels: labels,
		}),
		HashedNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "iavlx",
			Name:        "hashed_nodes_total",
			Help:        "Number of node hashes recomputed by hash passes.",
			ConstLabels: labels,
		}),
		Commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "iavlx",
			Name:        "commits_total",
			Help:        "Number of committed versions.",
			ConstLabels: labels,
		}),
		TreeHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "iavlx",
			Name:        "tree_height",
			Help:        "Height of the tree at the last commit.",
			ConstLabels: labels,
		}),
		TreeSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "iavlx",
			Name:        "tree_size",
			Help:        "Number of leaves in the tree at the last commit.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Inserts, m.Updates, m.HashedNodes, m.Commits, m.TreeHeight, m.TreeSize)
	}
	return m
}

func (m *Metrics) onSet(updated bool) {
	if m == nil {
		return
	}
	if updated {
		m.Updates.Inc()
	} else {
		m.Inserts.Inc()
	}
}

func (m *Metrics) onHash(hashed int) {
	if m == nil {
		return
	}
	m.HashedNodes.Add(float64(hashed))
}

func (m *Metrics) onCommit(height uint8, size int64) {
	if m == nil {
		return
	}
	m.Commits.Inc()
	m.TreeHeight.Set(float64(height))
	m.TreeSize.Set(float64(size))
}
