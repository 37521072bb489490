package migrate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// recordsMigrated counts successfully migrated records per collection.
var recordsMigrated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "retirewise",
		Subsystem: "migration",
		Name:      "records_migrated_total",
		Help:      "Total number of records copied to the remote store",
	},
	[]string{"collection"},
)
