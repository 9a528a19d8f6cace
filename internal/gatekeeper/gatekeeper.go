// Package gatekeeper decides whether a generation request may proceed.
package gatekeeper

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
)

// Gatekeeper applies prompt validation and then the caller quota.
type Gatekeeper struct {
	policy Policy
	quota  *Quota
}

// New creates a gatekeeper. A nil quota admits every valid prompt.
func New(policy Policy, quota *Quota) *Gatekeeper {
	return &Gatekeeper{policy: policy, quota: quota}
}

// Admission is a prompt that passed validation together with its quota slot.
type Admission struct {
	Prompt      string
	Caller      string
	reservation *Reservation
}

// Release gives the quota slot back after a failed generation.
func (a *Admission) Release() {
	if a != nil {
		a.reservation.Cancel()
	}
}

// Admit validates prompt and reserves a quota slot for caller. Invalid
// prompts never consume quota.
// Returns:
//   - *Admission: trimmed prompt and reservation.
//   - error: *ValidationError or *QuotaError.
func (g *Gatekeeper) Admit(prompt, caller string) (*Admission, error) {
	trimmed, err := g.policy.Validate(prompt)
	if err != nil {
		return nil, err
	}
	res, err := g.quota.Reserve(caller)
	if err != nil {
		return nil, err
	}
	return &Admission{Prompt: trimmed, Caller: caller, reservation: res}, nil
}

// Remaining reports the caller's unused quota.
func (g *Gatekeeper) Remaining(caller string) int {
	return g.quota.Remaining(caller)
}

// HashCaller turns a client address into the opaque key used for quota
// accounting and logs. Ports are dropped so reconnects share a bucket.
func HashCaller(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr == "" {
		addr = "unknown"
	}
	sum := sha256.Sum256([]byte(addr))
	return hex.EncodeToString(sum[:8])
}
