package validation

import (
	"sync"
	"time"

	"github.com/vietddude/orderpipe/internal/metrics"
)

// BreakerState is the circuit breaker mode.
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	}
	return "unknown"
}

// Breaker is a shared circuit breaker guarding the remote validator. All
// workers using the same client share one instance, so every
// read-modify-write of mode + counter happens under the mutex.
type Breaker struct {
	mu        sync.Mutex
	state     BreakerState
	failures  int
	threshold int
	cooldown  time.Duration
	openedAt  time.Time

	// trialInFlight limits HALF_OPEN to exactly one probe at a time.
	trialInFlight bool

	now func() time.Time
}

// NewBreaker creates a closed breaker. It opens after threshold
// consecutive failures and allows a single trial call once cooldown has
// elapsed.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		state:     StateClosed,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed. In OPEN it fails with
// ErrCircuitOpen until the cooldown elapses, then admits one trial call
// and moves to HALF_OPEN. While a trial is outstanding all other callers
// are refused.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return ErrCircuitOpen
		}
		b.transition(StateHalfOpen)
		b.trialInFlight = true
		return nil
	case StateHalfOpen:
		if b.trialInFlight {
			return ErrCircuitOpen
		}
		b.trialInFlight = true
		return nil
	}
	return nil
}

// RecordSuccess resets the failure counter; a successful HALF_OPEN trial
// closes the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.trialInFlight = false
	if b.state != StateClosed {
		b.transition(StateClosed)
	}
}

// RecordFailure counts one failed call. The failure is the outcome of the
// entire retried attempt, never an individual timeout inside the retry
// loop. Reaching the threshold in CLOSED, or any failed trial in
// HALF_OPEN, opens the breaker and restarts the cooldown.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.open()
		}
	case StateHalfOpen:
		b.trialInFlight = false
		b.open()
	case StateOpen:
		// Already open, nothing to count.
	}
}

// State returns the current breaker mode.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) open() {
	b.openedAt = b.now()
	b.transition(StateOpen)
}

// transition must be called with the mutex held.
func (b *Breaker) transition(to BreakerState) {
	from := b.state
	b.state = to
	metrics.BreakerState.Set(float64(to))
	metrics.BreakerTransitions.WithLabelValues(from.String(), to.String()).Inc()
}
