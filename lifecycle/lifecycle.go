// Package lifecycle holds the transition rules for a peer-to-peer
// transaction between a buyer and a seller over one product.
//
// The functions here are pure: they validate an action against the current
// record and mutate it in memory. Callers own persistence and must write the
// result back conditioned on the record being unchanged since read; a lost
// write maps to ErrStateConflict.
package lifecycle

import (
	"errors"
	"time"

	"educycle/models"
)

// Transaction statuses. Pending is the initial status; Completed,
// AutoCompleted, Rejected, Cancelled and Disputed are terminal.
const (
	StatusPending       = "Pending"
	StatusAccepted      = "Accepted"
	StatusMeeting       = "Meeting"
	StatusCompleted     = "Completed"
	StatusAutoCompleted = "AutoCompleted"
	StatusRejected      = "Rejected"
	StatusCancelled     = "Cancelled"
	StatusDisputed      = "Disputed"
)

const (
	// ResponseWindow is how long the seller has to answer a purchase
	// request before the system cancels it.
	ResponseWindow = 48 * time.Hour
	// AutoCompleteWindow is how long a meeting may stay open without buyer
	// confirmation before the system force-completes it.
	AutoCompleteWindow = 24 * time.Hour
)

var (
	ErrForbidden         = errors.New("actor is not allowed to perform this action")
	ErrInvalidTransition = errors.New("action is not legal from the current status")
	ErrInvalidOtp        = errors.New("otp code does not match")
	ErrOtpExpired        = errors.New("otp code has expired")
	ErrStateConflict     = errors.New("transaction changed concurrently, re-read and retry")
	ErrNotFound          = errors.New("transaction not found")
)

// Role of an actor relative to one transaction. Never persisted; always
// derived from the buyer/seller ids so it cannot go stale.
type Role int

const (
	RoleNone Role = iota
	RoleBuyer
	RoleSeller
)

func RoleOf(t *models.Transaction, actorID uint) Role {
	switch actorID {
	case t.BuyerID:
		return RoleBuyer
	case t.SellerID:
		return RoleSeller
	default:
		return RoleNone
	}
}

// IsTerminal reports whether no ordinary transition leaves the status.
// Disputed can still be resolved, but only by the moderation process.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusAutoCompleted, StatusRejected, StatusCancelled, StatusDisputed:
		return true
	}
	return false
}

// Accept moves Pending to Accepted. Seller only.
func Accept(t *models.Transaction, actorID uint) error {
	if RoleOf(t, actorID) != RoleSeller {
		return ErrForbidden
	}
	if t.Status != StatusPending {
		return ErrInvalidTransition
	}
	t.Status = StatusAccepted
	return nil
}

// Reject moves Pending to Rejected. Seller only.
func Reject(t *models.Transaction, actorID uint) error {
	if RoleOf(t, actorID) != RoleSeller {
		return ErrForbidden
	}
	if t.Status != StatusPending {
		return ErrInvalidTransition
	}
	t.Status = StatusRejected
	return nil
}

// Cancel moves Pending to Cancelled. Buyer only; the 48h system cancel goes
// through ExpirePending instead and skips the actor check.
func Cancel(t *models.Transaction, actorID uint) error {
	if RoleOf(t, actorID) != RoleBuyer {
		return ErrForbidden
	}
	if t.Status != StatusPending {
		return ErrInvalidTransition
	}
	t.Status = StatusCancelled
	return nil
}

// BeginMeeting moves Accepted to Meeting. Either party. The meeting
// timestamp anchors the 24h auto-complete window.
func BeginMeeting(t *models.Transaction, actorID uint, now time.Time) error {
	if RoleOf(t, actorID) == RoleNone {
		return ErrForbidden
	}
	if t.Status != StatusAccepted {
		return ErrInvalidTransition
	}
	t.Status = StatusMeeting
	t.MeetingAt = &now
	return nil
}

// ConfirmReceipt sets the buyer's confirmation while in Meeting. Does not
// change status by itself; completion happens once both flags are true.
func ConfirmReceipt(t *models.Transaction, actorID uint) error {
	if RoleOf(t, actorID) != RoleBuyer {
		return ErrForbidden
	}
	if t.Status != StatusMeeting {
		return ErrInvalidTransition
	}
	t.BuyerConfirmed = true
	completeIfConfirmed(t)
	return nil
}

// ConfirmHandover is the seller-side mirror of ConfirmReceipt.
func ConfirmHandover(t *models.Transaction, actorID uint) error {
	if RoleOf(t, actorID) != RoleSeller {
		return ErrForbidden
	}
	if t.Status != StatusMeeting {
		return ErrInvalidTransition
	}
	t.SellerConfirmed = true
	completeIfConfirmed(t)
	return nil
}

// Dispute moves any non-terminal status to Disputed and records the reason
// for moderator review. Either party.
func Dispute(t *models.Transaction, actorID uint, reason string) error {
	if RoleOf(t, actorID) == RoleNone {
		return ErrForbidden
	}
	if IsTerminal(t.Status) {
		return ErrInvalidTransition
	}
	t.Status = StatusDisputed
	t.DisputeReason = &reason
	return nil
}

// ExpirePending is the system-initiated 48h cancel. It is a guarded no-op:
// false means the record was not eligible (wrong status or deadline not
// reached), which the sweep simply skips, never an error.
func ExpirePending(t *models.Transaction, now time.Time) bool {
	if t.Status != StatusPending {
		return false
	}
	if now.Sub(t.CreatedAt) < ResponseWindow {
		return false
	}
	t.Status = StatusCancelled
	return true
}

// AutoComplete is the system-initiated 24h force-complete. Fires only while
// in Meeting, with the window elapsed and the buyer still unconfirmed.
func AutoComplete(t *models.Transaction, now time.Time) bool {
	if t.Status != StatusMeeting || t.BuyerConfirmed {
		return false
	}
	if t.MeetingAt == nil || now.Sub(*t.MeetingAt) < AutoCompleteWindow {
		return false
	}
	t.Status = StatusAutoCompleted
	return true
}

func completeIfConfirmed(t *models.Transaction) {
	if t.BuyerConfirmed && t.SellerConfirmed {
		t.Status = StatusCompleted
	}
}
