package service

import "time"

// LockoutPolicy controls the per-account failed-login state machine. The
// counter and the lock timestamp live on the user row, never in process
// memory, so the policy holds under concurrent requests and across replicas.
type LockoutPolicy struct {
	MaxAttempts int
	Duration    time.Duration
}

func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxAttempts: 5,
		Duration:    30 * time.Minute,
	}
}

func (p LockoutPolicy) normalized() LockoutPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 5
	}
	if p.Duration <= 0 {
		p.Duration = 30 * time.Minute
	}
	return p
}
