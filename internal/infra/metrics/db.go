package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(dbTxRetriesTotal, dbTxRollbacksTotal)
}

var (
	dbTxRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "db_tx_conflicts_total",
			Help: "Transactions lost to lock/serialization conflicts.",
		},
	)

	dbTxRollbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "db_tx_rollbacks_total",
			Help: "Transactions rolled back for any reason.",
		},
	)
)

func IncDBTxConflict() { dbTxRetriesTotal.Inc() }
func IncDBTxRollback() { dbTxRollbacksTotal.Inc() }
