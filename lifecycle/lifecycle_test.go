package lifecycle

import (
	"errors"
	"testing"
	"time"

	"educycle/models"
)

const (
	buyerID  uint = 7
	sellerID uint = 11
	otherID  uint = 99
)

func newTx(status string) *models.Transaction {
	return &models.Transaction{
		ID:        1,
		OrderID:   "EDU-000001",
		ProductID: 3,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		Amount:    45000,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

func TestHappyPathMeetupHandoff(t *testing.T) {
	now := time.Now()
	tx := newTx(StatusPending)

	if err := Accept(tx, sellerID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if tx.Status != StatusAccepted {
		t.Fatalf("expected Accepted, got %s", tx.Status)
	}

	if err := BeginMeeting(tx, buyerID, now); err != nil {
		t.Fatalf("begin meeting: %v", err)
	}
	if tx.Status != StatusMeeting || tx.MeetingAt == nil {
		t.Fatalf("expected Meeting with timestamp, got %s", tx.Status)
	}

	code, err := GenerateOtp(tx, sellerID, now)
	if err != nil {
		t.Fatalf("generate otp: %v", err)
	}
	if len(code) != OtpLength {
		t.Fatalf("expected %d digit code, got %q", OtpLength, code)
	}

	if err := VerifyOtp(tx, buyerID, code, now.Add(time.Minute)); err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if !tx.BuyerConfirmed {
		t.Fatalf("expected buyer confirmed after otp verification")
	}
	if tx.Status != StatusMeeting {
		t.Fatalf("one-sided confirmation must not complete, got %s", tx.Status)
	}

	if err := ConfirmHandover(tx, sellerID); err != nil {
		t.Fatalf("confirm handover: %v", err)
	}
	if tx.Status != StatusCompleted {
		t.Fatalf("expected Completed once both confirmed, got %s", tx.Status)
	}
}

func TestBeginMeetingEitherParty(t *testing.T) {
	tx := newTx(StatusAccepted)
	if err := BeginMeeting(tx, sellerID, time.Now()); err != nil {
		t.Fatalf("seller must be able to begin the meeting: %v", err)
	}

	tx = newTx(StatusAccepted)
	if err := BeginMeeting(tx, otherID, time.Now()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outsider, got %v", err)
	}
}

func TestAcceptByBuyerForbidden(t *testing.T) {
	tx := newTx(StatusPending)
	if err := Accept(tx, buyerID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if tx.Status != StatusPending {
		t.Fatalf("status must not change on forbidden action, got %s", tx.Status)
	}
}

func TestWrongActorBeatsWrongState(t *testing.T) {
	// Forbidden wins even when the status would also reject the action.
	tx := newTx(StatusCompleted)
	if err := Accept(tx, buyerID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := Cancel(tx, sellerID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRejectAndCancel(t *testing.T) {
	tx := newTx(StatusPending)
	if err := Reject(tx, sellerID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if tx.Status != StatusRejected {
		t.Fatalf("expected Rejected, got %s", tx.Status)
	}

	tx = newTx(StatusPending)
	if err := Cancel(tx, buyerID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if tx.Status != StatusCancelled {
		t.Fatalf("expected Cancelled, got %s", tx.Status)
	}
}

func TestAcceptAfterExpiryCancelInvalid(t *testing.T) {
	// A request left Pending for 49 hours is swept to Cancelled; a late
	// accept by the seller must fail as an invalid transition.
	tx := newTx(StatusPending)
	tx.CreatedAt = time.Now().Add(-49 * time.Hour)

	if !ExpirePending(tx, time.Now()) {
		t.Fatalf("expected sweep to cancel the stale request")
	}
	if tx.Status != StatusCancelled {
		t.Fatalf("expected Cancelled, got %s", tx.Status)
	}
	if err := Accept(tx, sellerID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestExpirePendingBeforeDeadlineNoop(t *testing.T) {
	tx := newTx(StatusPending)
	tx.CreatedAt = time.Now().Add(-47 * time.Hour)
	if ExpirePending(tx, time.Now()) {
		t.Fatalf("sweep must not cancel before the 48h window elapses")
	}
	if tx.Status != StatusPending {
		t.Fatalf("expected Pending, got %s", tx.Status)
	}
}

func TestAutoCompleteAfterWindow(t *testing.T) {
	now := time.Now()
	tx := newTx(StatusMeeting)
	at := now.Add(-25 * time.Hour)
	tx.MeetingAt = &at

	if !AutoComplete(tx, now) {
		t.Fatalf("expected auto-complete after 25h in Meeting")
	}
	if tx.Status != StatusAutoCompleted {
		t.Fatalf("expected AutoCompleted, got %s", tx.Status)
	}
}

func TestAutoCompleteGuards(t *testing.T) {
	now := time.Now()

	// Window not elapsed.
	tx := newTx(StatusMeeting)
	at := now.Add(-23 * time.Hour)
	tx.MeetingAt = &at
	if AutoComplete(tx, now) {
		t.Fatalf("must not fire before 24h")
	}

	// Buyer already confirmed.
	tx = newTx(StatusMeeting)
	at = now.Add(-25 * time.Hour)
	tx.MeetingAt = &at
	tx.BuyerConfirmed = true
	if AutoComplete(tx, now) {
		t.Fatalf("must not fire once the buyer confirmed")
	}

	// Wrong status.
	tx = newTx(StatusAccepted)
	if AutoComplete(tx, now) {
		t.Fatalf("must not fire outside Meeting")
	}
}

func TestDisputeFromAnyNonTerminal(t *testing.T) {
	for _, status := range []string{StatusPending, StatusAccepted, StatusMeeting} {
		tx := newTx(status)
		if err := Dispute(tx, buyerID, "barang tidak sesuai"); err != nil {
			t.Fatalf("dispute from %s: %v", status, err)
		}
		if tx.Status != StatusDisputed || tx.DisputeReason == nil {
			t.Fatalf("expected Disputed with reason from %s", status)
		}
	}

	for _, status := range []string{StatusCompleted, StatusAutoCompleted, StatusRejected, StatusCancelled, StatusDisputed} {
		tx := newTx(status)
		if err := Dispute(tx, sellerID, "x"); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("dispute from terminal %s: expected ErrInvalidTransition, got %v", status, err)
		}
	}

	tx := newTx(StatusMeeting)
	if err := Dispute(tx, otherID, "x"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outsider dispute, got %v", err)
	}
}

func TestTerminalStatesFrozen(t *testing.T) {
	now := time.Now()
	for _, status := range []string{StatusCompleted, StatusAutoCompleted, StatusRejected, StatusCancelled, StatusDisputed} {
		tx := newTx(status)
		tx.BuyerConfirmed = true
		tx.SellerConfirmed = true

		if err := Accept(tx, sellerID); err == nil {
			t.Fatalf("%s: accept must fail", status)
		}
		if err := BeginMeeting(tx, buyerID, now); err == nil {
			t.Fatalf("%s: beginMeeting must fail", status)
		}
		if _, err := GenerateOtp(tx, sellerID, now); err == nil {
			t.Fatalf("%s: generateOtp must fail", status)
		}
		if err := ConfirmReceipt(tx, buyerID); err == nil {
			t.Fatalf("%s: confirmReceipt must fail", status)
		}
		if ExpirePending(tx, now) || AutoComplete(tx, now) {
			t.Fatalf("%s: sweeps must be no-ops", status)
		}
		if tx.Status != status {
			t.Fatalf("terminal status mutated: %s -> %s", status, tx.Status)
		}
	}
}

func TestRoleOfDerived(t *testing.T) {
	tx := newTx(StatusPending)
	if RoleOf(tx, buyerID) != RoleBuyer {
		t.Fatalf("expected buyer role")
	}
	if RoleOf(tx, sellerID) != RoleSeller {
		t.Fatalf("expected seller role")
	}
	if RoleOf(tx, otherID) != RoleNone {
		t.Fatalf("expected no role for stranger")
	}
}
