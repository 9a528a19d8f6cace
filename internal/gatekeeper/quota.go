package gatekeeper

import (
	"fmt"
	"math"
	"sync"
	"time"
)

const sweepEvery = 256

// QuotaError is returned when a caller has used up its window.
type QuotaError struct {
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("rate limit of %d generations per %s exceeded, retry in %s", e.Limit, e.Window, e.RetryAfter.Round(time.Second))
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, minimum 1.
func (e *QuotaError) RetryAfterSeconds() int {
	return max(1, int(math.Ceil(e.RetryAfter.Seconds())))
}

// Quota is a per-caller sliding window limiter. A call counts against the
// window from the moment it is reserved until Window has elapsed.
type Quota struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	calls   map[string][]time.Time
	reserve int
}

// NewQuota creates a limiter. A limit of zero or less disables it.
func NewQuota(limit int, window time.Duration, now func() time.Time) *Quota {
	if now == nil {
		now = time.Now
	}
	return &Quota{
		limit:  limit,
		window: window,
		now:    now,
		calls:  make(map[string][]time.Time),
	}
}

// Reservation is one admitted call. Cancel gives the slot back.
type Reservation struct {
	q      *Quota
	caller string
	at     time.Time
	once   sync.Once
}

// Reserve admits a call for caller or returns a *QuotaError.
func (q *Quota) Reserve(caller string) (*Reservation, error) {
	if q == nil || q.limit <= 0 {
		return &Reservation{}, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.reserve++
	if q.reserve%sweepEvery == 0 {
		q.sweepLocked(now)
	}

	calls := q.pruneLocked(caller, now)
	if len(calls) >= q.limit {
		return nil, &QuotaError{
			Limit:      q.limit,
			Window:     q.window,
			RetryAfter: calls[0].Add(q.window).Sub(now),
		}
	}
	q.calls[caller] = append(calls, now)
	return &Reservation{q: q, caller: caller, at: now}, nil
}

// Unlimited is what Remaining reports when no quota applies.
const Unlimited = -1

// Remaining reports how many calls caller may still make in the current
// window, or Unlimited when the quota is disabled.
func (q *Quota) Remaining(caller string) int {
	if q == nil || q.limit <= 0 {
		return Unlimited
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.limit - len(q.pruneLocked(caller, q.now()))
}

// Cancel returns the reserved slot. It is safe to call more than once.
func (r *Reservation) Cancel() {
	if r == nil || r.q == nil {
		return
	}
	r.once.Do(func() {
		r.q.release(r.caller, r.at)
	})
}

func (q *Quota) release(caller string, at time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	calls := q.calls[caller]
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Equal(at) {
			calls = append(calls[:i], calls[i+1:]...)
			break
		}
	}
	if len(calls) == 0 {
		delete(q.calls, caller)
		return
	}
	q.calls[caller] = calls
}

func (q *Quota) pruneLocked(caller string, now time.Time) []time.Time {
	calls := q.calls[caller]
	i := 0
	for i < len(calls) && now.Sub(calls[i]) >= q.window {
		i++
	}
	calls = calls[i:]
	if len(calls) == 0 {
		delete(q.calls, caller)
		return nil
	}
	q.calls[caller] = calls
	return calls
}

func (q *Quota) sweepLocked(now time.Time) {
	for caller := range q.calls {
		q.pruneLocked(caller, now)
	}
}
