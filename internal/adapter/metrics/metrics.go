package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the outcomes of economy operations. Counters live on an
// explicit registry so tests can use an isolated one.
type Metrics struct {
	DraftsTotal           *prometheus.CounterVec
	LotsListedTotal       prometheus.Counter
	LotsSoldTotal         prometheus.Counter
	LotsCancelledTotal    prometheus.Counter
	OrdersPricedTotal     prometheus.Counter
	VouchersConsumedTotal prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DraftsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shawa_drafts_total",
			Help: "Roulette drafts credited, by rarity.",
		}, []string{"rarity"}),
		LotsListedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shawa_lots_listed_total",
			Help: "Auction lots listed.",
		}),
		LotsSoldTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shawa_lots_sold_total",
			Help: "Auction lots sold.",
		}),
		LotsCancelledTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shawa_lots_cancelled_total",
			Help: "Auction lots cancelled.",
		}),
		OrdersPricedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shawa_orders_priced_total",
			Help: "Orders priced and persisted.",
		}),
		VouchersConsumedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shawa_vouchers_consumed_total",
			Help: "Discount vouchers consumed by orders.",
		}),
	}
}
