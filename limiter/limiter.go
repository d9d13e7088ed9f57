package limiter

import (
	"context"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is the common behaviour of every limiter the fetchers accept.
type RateLimiter interface {
	Wait(context.Context) error // blocks until an event may happen or ctx is done
	Limit() rate.Limit
}

// LimitConfig describes one token bucket: EventCount events every EventDur
// seconds, with room for Bucket events in a burst.
type LimitConfig struct {
	EventCount int `yaml:"eventCount"`
	EventDur   int `yaml:"eventDur"`
	Bucket     int `yaml:"bucket"`
}

// Multi sorts limiters from the strictest to the loosest and combines them.
func Multi(limiters ...RateLimiter) *multiLimiter {
	byLimit := func(i, j int) bool {
		return limiters[i].Limit() < limiters[j].Limit()
	}
	sort.Slice(limiters, byLimit)
	return &multiLimiter{limiters: limiters}
}

type multiLimiter struct {
	limiters []RateLimiter
}

// Wait takes a token from every limiter in turn.
func (l *multiLimiter) Wait(ctx context.Context) error {
	for _, l := range l.limiters {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Limit returns the strictest rate.
func (l *multiLimiter) Limit() rate.Limit {
	return l.limiters[0].Limit()
}

// Per returns the rate of eventCount events per duration.
func Per(eventCount int, duration time.Duration) rate.Limit {
	return rate.Every(duration / time.Duration(eventCount))
}

/*
FromConfig builds one limiter out of cfgs.

Entries with a non-positive count or duration are skipped. It returns nil when
nothing is left, which the fetchers treat as "unlimited".
*/
func FromConfig(cfgs []LimitConfig) RateLimiter {
	var limits []RateLimiter
	for _, c := range cfgs {
		if c.EventCount <= 0 || c.EventDur <= 0 {
			continue
		}
		bucket := c.Bucket
		if bucket <= 0 {
			bucket = 1
		}
		limits = append(limits, rate.NewLimiter(Per(c.EventCount, time.Duration(c.EventDur)*time.Second), bucket))
	}
	if len(limits) == 0 {
		return nil
	}
	return Multi(limits...)
}
