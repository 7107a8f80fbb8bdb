// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lab_commands_dispatched_total",
		Help: "Commands that reached a dispatch outcome, by action and status",
	}, []string{"action", "status"})

	BrokerMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lab_broker_messages_total",
		Help: "Broker messages consumed, by subject and outcome",
	}, []string{"subject", "outcome"})

	BroadcastTargets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lab_broadcast_targets_total",
		Help: "Per-PC dispatches issued by website policy broadcasts",
	}, []string{"action", "outcome"})

	ObserverClients = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lab_observer_clients",
		Help: "Connected live observers, by feed",
	}, []string{"feed"})

	ObserverDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lab_observer_dropped_updates_total",
		Help: "Updates dropped because an observer's buffer was full, by feed",
	}, []string{"feed"})

	IncidentsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lab_incidents_purged_total",
		Help: "Completed incidents deleted after the retention window",
	})
)
