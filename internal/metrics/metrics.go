// Package metrics — счётчики Prometheus для игрового движка.
// Метки держим с ограниченной кардинальностью: исходы, а не chat_id/user_id.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// MessagesObserved — сообщения, прошедшие через счётчик, по результату.
	MessagesObserved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catchbot_messages_observed_total",
			Help: "Messages seen by the channel throttle, by outcome.",
		},
		[]string{"outcome"}, // counted, filtered, spam
	)

	// Spawns — успешные и подавленные спавны.
	Spawns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catchbot_spawns_total",
			Help: "Spawn attempts, by result.",
		},
		[]string{"result"}, // published, suppressed
	)

	// Claims — исходы /guess.
	Claims = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catchbot_claims_total",
			Help: "Guess attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	// SpamCooldowns — сколько раз кого-то отправили в кулдаун.
	SpamCooldowns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catchbot_spam_cooldowns_total",
			Help: "Senders placed in anti-spam cool-down.",
		},
	)

	// Purchases — исходы /buy.
	Purchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catchbot_purchases_total",
			Help: "Shop purchase attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	// ShopRefreshes — обновления магазина.
	ShopRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catchbot_shop_refreshes_total",
			Help: "Shop refresh runs, by result.",
		},
		[]string{"result"}, // ok, disabled, failed
	)

	// ShopListings — размер текущего набора лотов.
	ShopListings = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catchbot_shop_listings",
			Help: "Listings installed by the latest shop refresh.",
		},
	)

	// StoreRetries — повторы после временных ошибок хранилища.
	StoreRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catchbot_store_failures_total",
			Help: "Operations that hit a transient store error, by operation.",
		},
		[]string{"op"},
	)
)

// Register регистрирует все коллекторы в реестре.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		MessagesObserved, Spawns, Claims, SpamCooldowns,
		Purchases, ShopRefreshes, ShopListings, StoreRetries,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
