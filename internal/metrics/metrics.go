// Package metrics provides Prometheus instrumentation for the settlement core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LedgerTransactionsTotal counts ledger movements, partitioned by type.
	LedgerTransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contests_ledger_transactions_total",
		Help: "Total number of ledger transactions appended",
	}, []string{"type"})

	// PositionsOpenedTotal counts positions opened, partitioned by side.
	PositionsOpenedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contests_positions_opened_total",
		Help: "Total number of positions opened",
	}, []string{"side"})

	// PositionsClosedTotal counts settled positions by close reason.
	PositionsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contests_positions_closed_total",
		Help: "Total number of positions settled",
	}, []string{"reason"})

	// LiquidationsTotal counts forced liquidations of participants.
	LiquidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contests_liquidations_total",
		Help: "Participants liquidated by margin call",
	})

	// ContestsFinalizedTotal counts contests settled to completion.
	ContestsFinalizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contests_finalized_total",
		Help: "Contests finalized and paid out",
	})

	// RefundsTotal counts entry fee refunds paid during cancellations.
	RefundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contests_refunds_total",
		Help: "Entry fee refunds paid out",
	})

	// PriceFeedErrorsTotal counts failed quote fetches.
	PriceFeedErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contests_price_feed_errors_total",
		Help: "Quote fetches that returned an error",
	})

	// ActiveContests tracks the number of contests currently tradable.
	ActiveContests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "contests_active",
		Help: "Number of contests in active status",
	})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
