package core

import "github.com/prometheus/client_golang/prometheus"

func UpdatesProcessed() *prometheus.CounterVec {
	return updatesProcessed
}
