package vault

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Purge reasons
const (
	reasonExpired       = "expired"
	reasonCorrupt       = "corrupt"
	reasonUndecryptable = "undecryptable"
)

type metrics struct {
	writes *prometheus.CounterVec
	purged *prometheus.CounterVec
	sweeps prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprintdeck_vault_writes_total",
			Help: "Items written to the vault by encryption mode",
		}, []string{"encrypted"}),
		purged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprintdeck_vault_purged_total",
			Help: "Items removed by the vault by reason",
		}, []string{"reason"}),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sprintdeck_vault_sweeps_total",
			Help: "Completed cleanup sweeps",
		}),
	}
	if reg == nil {
		return m
	}

	m.writes = register(reg, m.writes)
	m.purged = register(reg, m.purged)
	m.sweeps = register(reg, m.sweeps)
	return m
}

// register registers c, reusing an identical collector that is already registered
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}
