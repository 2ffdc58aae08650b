package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pollhive_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// VoteConflicts counts duplicate-vote attempts rejected by the unique ledger index.
	VoteConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pollhive_vote_conflicts_total",
		Help: "Total number of vote attempts rejected because the user already voted",
	})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for HTTP request metrics.
// The middleware registers collectors globally, so it is created once and
// shared by every Server instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
