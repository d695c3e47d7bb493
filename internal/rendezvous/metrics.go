package rendezvous

import "github.com/prometheus/client_golang/prometheus"

var (
	nameplatesAllocated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pylon_rendezvous_nameplates_allocated_total",
			Help: "Number of nameplates allocated",
		},
	)
	claims = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pylon_rendezvous_claims_total",
			Help: "Number of nameplate claims by result",
		},
		[]string{"result"},
	)
	exchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pylon_rendezvous_exchanges_total",
			Help: "Number of key exchange polls by result",
		},
		[]string{"result"},
	)
	mailboxMessages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pylon_rendezvous_mailbox_messages_total",
			Help: "Number of messages stored in mailboxes",
		},
	)
	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pylon_rendezvous_rate_limited_total",
			Help: "Number of allocations refused by the rate limiter",
		},
	)
	openMailboxes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pylon_rendezvous_open_mailboxes",
			Help: "Number of mailboxes currently held in memory",
		},
	)
	expired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pylon_rendezvous_expired_total",
			Help: "Number of entries dropped by the sweeper by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(nameplatesAllocated)
	prometheus.MustRegister(claims)
	prometheus.MustRegister(exchanges)
	prometheus.MustRegister(mailboxMessages)
	prometheus.MustRegister(rateLimited)
	prometheus.MustRegister(openMailboxes)
	prometheus.MustRegister(expired)
}
