// Package retry provides the bounded backoff policy used around transport
// connection attempts.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Timer is the clock used between attempts. Tests substitute a fake.
type Timer = backoff.Timer

// Policy describes how many attempts an operation gets and how long to wait
// between them.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	// Exponential doubles Delay after every failed attempt, capped at MaxDelay.
	Exponential bool
	MaxDelay    time.Duration

	timer Timer
}

// Constant returns a policy with a fixed inter-attempt delay.
func Constant(attempts int, delay time.Duration) *Policy {
	return &Policy{MaxAttempts: attempts, Delay: delay}
}

// Exponential returns a policy whose delay doubles from initial up to max.
func Exponential(attempts int, initial, max time.Duration) *Policy {
	return &Policy{MaxAttempts: attempts, Delay: initial, Exponential: true, MaxDelay: max}
}

// WithTimer replaces the wall clock used between attempts.
func (p *Policy) WithTimer(t Timer) *Policy {
	cp := *p
	cp.timer = t
	return &cp
}

// Operation is a single attempt. attempt starts at 1.
type Operation func(ctx context.Context, attempt int) error

// Notify is called after a failed attempt that will be retried.
type Notify func(err error, next time.Duration)

// Permanent marks err as not retryable; Do returns it unwrapped right away.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a Permanent error, the attempts are
// exhausted or ctx is done. The error of the last attempt is returned.
func (p *Policy) Do(ctx context.Context, op Operation, notify Notify) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(p.backOff(), uint64(attempts-1)),
		ctx,
	)

	attempt := 0
	operation := func() error {
		attempt++
		return op(ctx, attempt)
	}

	var n backoff.Notify
	if notify != nil {
		n = backoff.Notify(notify)
	}

	return backoff.RetryNotifyWithTimer(operation, b, n, p.timer)
}

func (p *Policy) backOff() backoff.BackOff {
	if !p.Exponential {
		return backoff.NewConstantBackOff(p.Delay)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.Delay
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = p.MaxDelay
	if eb.MaxInterval <= 0 {
		eb.MaxInterval = p.Delay
	}
	eb.MaxElapsedTime = 0
	eb.Reset()
	return eb
}
