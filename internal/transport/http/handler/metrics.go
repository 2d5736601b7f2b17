package handler

import (
	"github.com/prometheus/client_golang/prometheus"

	"go-gin-gorm-accounts/internal/domain"
)

var authEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "auth_events_total", Help: "Auth attempts by event and outcome"},
	[]string{"event", "outcome"},
)

func init() { prometheus.MustRegister(authEvents) }

func observe(event string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = domain.KindOf(err).String()
	}
	authEvents.WithLabelValues(event, outcome).Inc()
}
