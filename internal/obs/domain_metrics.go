package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PromoApplyTotal counts user-initiated promo applications by outcome.
	PromoApplyTotal *prometheus.CounterVec
	// PromoRevalidateTotal counts silent promo re-validations by outcome.
	PromoRevalidateTotal *prometheus.CounterVec
	// GiftOfferSurfacedTotal counts gift-offer modals surfaced to users.
	GiftOfferSurfacedTotal prometheus.Counter
	// GiftOfferSelectedTotal counts gift selections.
	GiftOfferSelectedTotal prometheus.Counter
	// GiftOfferSwitchTotal counts exclusivity switches by direction.
	GiftOfferSwitchTotal *prometheus.CounterVec
	// DeliveryQuoteTotal counts delivery-fee resolutions by tier outcome.
	DeliveryQuoteTotal *prometheus.CounterVec
	// RecomputeLatency records cart recompute latency in milliseconds.
	RecomputeLatency prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers the domain collectors.
// Safe to call more than once; only the first call does anything.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PromoApplyTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_apply_total",
			Help:      "Count of user-initiated promo code applications by result.",
		}, []string{"result"}))
		PromoRevalidateTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_revalidate_total",
			Help:      "Count of silent promo re-validations by result.",
		}, []string{"result"}))
		GiftOfferSurfacedTotal = register[prometheus.Counter](reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gift_offer_surfaced_total",
			Help:      "Number of gift-offer selection modals surfaced.",
		}))
		GiftOfferSelectedTotal = register[prometheus.Counter](reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gift_offer_selected_total",
			Help:      "Number of free gifts selected.",
		}))
		GiftOfferSwitchTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gift_offer_switch_total",
			Help:      "Count of promo/gift exclusivity switches by direction.",
		}, []string{"direction"}))
		DeliveryQuoteTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_quote_total",
			Help:      "Count of delivery-fee resolutions by tier outcome.",
		}, []string{"tier"}))
		RecomputeLatency = register[prometheus.Histogram](reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cart_recompute_duration_ms",
			Help:      "Latency of full cart recomputation in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}))
	})
}
