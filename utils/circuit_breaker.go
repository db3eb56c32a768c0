package utils

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned while the breaker is cooling down.
var ErrBreakerOpen = errors.New("circuit breaker is open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

// Breaker guards a flaky outbound dependency (the SMTP relay) so that
// a dead host does not stall every payment confirmation. Closed until
// maxFailures consecutive failures, then open for cooldown, then one
// probe call decides.
type Breaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration

	mutex    sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
}

func NewBreaker(name string) *Breaker {
	return &Breaker{
		name:        name,
		maxFailures: 5,
		cooldown:    60 * time.Second,
		state:       BreakerClosed,
	}
}

// Do runs fn under the breaker. While open it fails fast with
// ErrBreakerOpen instead of calling fn.
func (b *Breaker) Do(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}

	err := fn()
	b.after(err == nil)
	return err
}

func (b *Breaker) State() BreakerState {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.currentState(time.Now())
}

func (b *Breaker) before() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.currentState(time.Now()) == BreakerOpen {
		return ErrBreakerOpen
	}
	return nil
}

func (b *Breaker) after(success bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	state := b.currentState(time.Now())

	if success {
		b.failures = 0
		if state == BreakerHalfOpen {
			b.state = BreakerClosed
		}
		return
	}

	b.failures++
	if state == BreakerHalfOpen || b.failures >= b.maxFailures {
		b.state = BreakerOpen
		b.openedAt = time.Now()
	}
}

// currentState handles the open -> half-open transition. Callers hold
// the mutex.
func (b *Breaker) currentState(now time.Time) BreakerState {
	if b.state == BreakerOpen && now.Sub(b.openedAt) >= b.cooldown {
		b.state = BreakerHalfOpen
	}
	return b.state
}
