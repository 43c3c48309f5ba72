package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sony/gobreaker/v2"
)

// FailureFilter reports whether err should count against the breaker.
// Caller mistakes and cancellations usually should not.
type FailureFilter func(err error) bool

// Executor runs calls behind one circuit breaker per operation name.
type Executor struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewExecutor(cfg Config) *Executor {
	return &Executor{
		cfg:      cfg.normalize(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

// Execute calls fn once. With breakers enabled an open circuit rejects the
// call with gobreaker.ErrOpenState without invoking fn.
func (e *Executor) Execute(ctx context.Context, operation string, fn func(context.Context) error, counts FailureFilter) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !e.cfg.Enabled {
		return fn(ctx)
	}
	if counts == nil {
		counts = countAll
	}

	breaker := e.breaker(operationName(operation), counts)
	_, err := breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func (e *Executor) breaker(operation string, counts FailureFilter) *gobreaker.CircuitBreaker[struct{}] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[operation]; ok {
		return breaker
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        operation,
		MaxRequests: e.cfg.HalfOpenMaxCalls,
		Timeout:     e.cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if c.Requests < e.cfg.MinRequests {
				return false
			}
			return float64(c.TotalFailures)/float64(c.Requests) >= e.cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !counts(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	})
	e.breakers[operation] = breaker
	return breaker
}

// State reports "closed", "half-open" or "open" for a guarded operation,
// "idle" before its first call and "disabled" when breakers are off.
func (e *Executor) State(operation string) string {
	if !e.cfg.Enabled {
		return "disabled"
	}
	e.mu.Lock()
	breaker, ok := e.breakers[operationName(operation)]
	e.mu.Unlock()
	if !ok {
		return "idle"
	}
	return breaker.State().String()
}

func (e *Executor) Operations() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.breakers))
	for name := range e.breakers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func operationName(operation string) string {
	if op := strings.TrimSpace(operation); op != "" {
		return op
	}
	return "unknown"
}

func countAll(error) bool { return true }
