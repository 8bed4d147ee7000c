package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics
var (
	ledgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_ledger_operations_total",
			Help: "Total number of ledger operations by operation and result code",
		},
		[]string{"operation", "result"},
	)

	ledgerOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wallet_ledger_operation_duration_seconds",
			Help:    "Duration of ledger operations",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"operation"},
	)
)

const (
	opSettle = "settle"
	opTopup  = "topup"
	opCreate = "create_wallet"
)

func observeLedgerOperation(op string, seconds float64, err error) {
	result := "success"
	if err != nil {
		result = errorCode(err)
	}
	ledgerOperations.WithLabelValues(op, result).Inc()
	ledgerOperationDuration.WithLabelValues(op).Observe(seconds)
}
