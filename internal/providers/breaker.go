package providers

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/courtvision/lineup-service/pkg/logger"
)

// Upstream names used to select a circuit breaker.
const (
	UpstreamScores   = "scores"
	UpstreamPlatform = "platform"
	UpstreamSchedule = "schedule"
)

// Breakers holds one circuit breaker per external upstream so a broken
// scores site cannot trip calls to the fantasy platform.
type Breakers struct {
	breakers map[string]*gobreaker.CircuitBreaker
	logger   *logrus.Entry
}

// NewBreakers creates breakers for all known upstreams using shared
// trip settings.
func NewBreakers(maxRequests int, timeout time.Duration) *Breakers {
	log := logger.WithComponent("circuit_breaker")

	settings := gobreaker.Settings{
		MaxRequests: uint32(maxRequests),
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"upstream": name,
				"from":     from.String(),
				"to":       to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker)
	for _, name := range []string{UpstreamScores, UpstreamPlatform, UpstreamSchedule} {
		s := settings
		s.Name = name
		breakers[name] = gobreaker.NewCircuitBreaker(s)
	}

	return &Breakers{breakers: breakers, logger: log}
}

// Execute wraps a call with the named upstream's breaker. Unknown names
// run unprotected with a warning.
func (b *Breakers) Execute(upstream string, fn func() (interface{}, error)) (interface{}, error) {
	breaker, ok := b.breakers[upstream]
	if !ok {
		b.logger.WithField("upstream", upstream).Warn("No circuit breaker for upstream, executing without protection")
		return fn()
	}
	return breaker.Execute(fn)
}

// State returns the named breaker's current state.
func (b *Breakers) State(upstream string) gobreaker.State {
	if breaker, ok := b.breakers[upstream]; ok {
		return breaker.State()
	}
	return gobreaker.StateClosed
}
