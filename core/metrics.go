package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lightclient",
			Name:      "updates_total",
			Help:      "Updates processed, by kind and result.",
		},
		[]string{"kind", "result"},
	)
	finalizedSlotGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightclient",
		Name:      "finalized_slot",
		Help:      "Slot of the latest finalized beacon header.",
	})
	currentPeriodGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightclient",
		Name:      "current_sync_committee_period",
		Help:      "Sync committee period of the current trusted committee.",
	})
	participationGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightclient",
		Name:      "sync_committee_participation",
		Help:      "Participating members in the last accepted sync aggregate.",
	})
	executionBlockGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightclient",
		Name:      "latest_execution_block",
		Help:      "Number of the latest imported execution block.",
	})
)

const (
	kindCheckpoint = "checkpoint"
	kindPeriod     = "sync_committee_period"
	kindFinalized  = "finalized_header"
	kindExecution  = "execution_header"
)

func recordResult(kind string, err error) {
	result := "accepted"
	if err != nil {
		result = errorLabel(err)
	}
	updatesProcessed.WithLabelValues(kind, result).Inc()
}
