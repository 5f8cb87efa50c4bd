package middleware

import (
	"sync"
	"time"
)

// OTPRequestRecord tracks handoff-code requests for one seller.
type OTPRequestRecord struct {
	Count       int
	FirstReqAt  time.Time
	LastReqAt   time.Time
	Locked      bool
	LockedUntil time.Time
}

// OTPRateLimiter throttles handoff-code generation per seller. The code space
// is six digits, so regeneration has to be slow enough that cycling codes
// gives an attacker nothing.
type OTPRateLimiter struct {
	records       map[uint]*OTPRequestRecord
	mu            sync.Mutex
	cleanupTicker *time.Ticker
}

var globalOTPLimiter *OTPRateLimiter
var otpLimiterOnce sync.Once

// GetOTPRateLimiter returns the global OTP rate limiter instance
func GetOTPRateLimiter() *OTPRateLimiter {
	otpLimiterOnce.Do(func() {
		globalOTPLimiter = NewOTPRateLimiter()
	})
	return globalOTPLimiter
}

func NewOTPRateLimiter() *OTPRateLimiter {
	limiter := &OTPRateLimiter{
		records: make(map[uint]*OTPRequestRecord),
	}

	// Cleanup old records every 5 minutes
	limiter.cleanupTicker = time.NewTicker(5 * time.Minute)
	go limiter.cleanup()

	return limiter
}

func (l *OTPRateLimiter) cleanup() {
	for range l.cleanupTicker.C {
		l.mu.Lock()
		now := time.Now()
		for uid, record := range l.records {
			if !record.Locked && now.Sub(record.LastReqAt) > time.Hour {
				delete(l.records, uid)
			} else if record.Locked && now.After(record.LockedUntil) {
				record.Locked = false
				record.Count = 0
				record.FirstReqAt = time.Time{}
				record.LastReqAt = time.Time{}
			}
		}
		l.mu.Unlock()
	}
}

// Check reports whether the seller may request a new handoff code.
// Returns (allowed, waitDuration, message).
func (l *OTPRateLimiter) Check(userID uint) (bool, time.Duration, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	record, exists := l.records[userID]

	if !exists {
		l.records[userID] = &OTPRequestRecord{
			Count:      1,
			FirstReqAt: now,
			LastReqAt:  now,
		}
		return true, 0, ""
	}

	if record.Locked {
		if now.Before(record.LockedUntil) {
			return false, record.LockedUntil.Sub(now), "Anda telah mencapai batas permintaan kode, silahkan ulangi dalam 1 jam"
		}
		record.Locked = false
		record.Count = 1
		record.FirstReqAt = now
		record.LastReqAt = now
		return true, 0, ""
	}

	record.Count++
	record.LastReqAt = now

	// Escalating waits measured from the first request in the burst:
	// 2nd after 1 minute, 3rd after 5, 4th after 10, 5th locks for an hour.
	var minElapsed time.Duration
	var waitMsg string
	switch record.Count {
	case 2:
		minElapsed, waitMsg = time.Minute, "Tunggu 1 menit sebelum meminta kode baru"
	case 3:
		minElapsed, waitMsg = 5*time.Minute, "Tunggu 5 menit sebelum meminta kode baru"
	case 4:
		minElapsed, waitMsg = 10*time.Minute, "Tunggu 10 menit sebelum meminta kode baru"
	default:
		if record.Count >= 5 {
			record.Locked = true
			record.LockedUntil = now.Add(time.Hour)
			return false, time.Hour, "Anda telah mencapai batas permintaan kode, silahkan ulangi dalam 1 jam"
		}
		return true, 0, ""
	}

	elapsed := now.Sub(record.FirstReqAt)
	if elapsed < minElapsed {
		record.Count-- // Revert count
		return false, minElapsed - elapsed, waitMsg
	}
	return true, 0, ""
}
