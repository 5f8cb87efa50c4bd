package lifecycle

import (
	"errors"
	"testing"
	"time"

	"educycle/models"
)

func meetingTx() *models.Transaction {
	now := time.Now()
	tx := newTx(StatusMeeting)
	tx.MeetingAt = &now
	return tx
}

func TestGenerateOtpSellerOnlyInMeeting(t *testing.T) {
	now := time.Now()

	tx := meetingTx()
	if _, err := GenerateOtp(tx, buyerID, now); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for buyer, got %v", err)
	}

	tx = newTx(StatusAccepted)
	if _, err := GenerateOtp(tx, sellerID, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition outside Meeting, got %v", err)
	}

	tx = meetingTx()
	code, err := GenerateOtp(tx, sellerID, now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if tx.OtpCode == nil || *tx.OtpCode != code {
		t.Fatalf("stored code does not match returned code")
	}
	if tx.OtpExpiredAt == nil || !tx.OtpExpiredAt.Equal(now.Add(OtpTTL)) {
		t.Fatalf("expected expiry %v after generation", OtpTTL)
	}
	if tx.Status != StatusMeeting {
		t.Fatalf("generating a code must not change status, got %s", tx.Status)
	}
}

func TestGenerateOtpOverwritesPriorCode(t *testing.T) {
	now := time.Now()
	tx := meetingTx()

	first, err := GenerateOtp(tx, sellerID, now)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	second, err := GenerateOtp(tx, sellerID, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if *tx.OtpCode != second {
		t.Fatalf("expected latest code to be stored")
	}
	if first == second {
		// Astronomically unlikely with a crypto source; treat as failure.
		t.Fatalf("two generated codes are identical")
	}
	if err := VerifyOtp(tx, buyerID, first, now.Add(2*time.Minute)); !errors.Is(err, ErrInvalidOtp) {
		t.Fatalf("stale code must be rejected, got %v", err)
	}
}

func TestVerifyOtpMismatch(t *testing.T) {
	now := time.Now()
	tx := meetingTx()
	code, _ := GenerateOtp(tx, sellerID, now)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if err := VerifyOtp(tx, buyerID, wrong, now); !errors.Is(err, ErrInvalidOtp) {
		t.Fatalf("expected ErrInvalidOtp, got %v", err)
	}
	if tx.BuyerConfirmed {
		t.Fatalf("mismatch must not confirm the buyer")
	}
}

func TestVerifyOtpExpired(t *testing.T) {
	now := time.Now()
	tx := meetingTx()
	code, _ := GenerateOtp(tx, sellerID, now)

	if err := VerifyOtp(tx, buyerID, code, now.Add(16*time.Minute)); !errors.Is(err, ErrOtpExpired) {
		t.Fatalf("expected ErrOtpExpired at t+16m, got %v", err)
	}
	if err := VerifyOtp(tx, buyerID, code, now.Add(14*time.Minute)); err != nil {
		t.Fatalf("code must still verify inside the window: %v", err)
	}
}

func TestVerifyOtpSingleUse(t *testing.T) {
	now := time.Now()
	tx := meetingTx()
	code, _ := GenerateOtp(tx, sellerID, now)

	if err := VerifyOtp(tx, buyerID, code, now.Add(time.Minute)); err != nil {
		t.Fatalf("first verification: %v", err)
	}
	if tx.OtpCode != nil || tx.OtpExpiredAt != nil {
		t.Fatalf("code must be cleared after successful verification")
	}
	if err := VerifyOtp(tx, buyerID, code, now.Add(2*time.Minute)); !errors.Is(err, ErrInvalidOtp) {
		t.Fatalf("replay must fail with ErrInvalidOtp, got %v", err)
	}
}

func TestVerifyOtpActorGate(t *testing.T) {
	now := time.Now()
	tx := meetingTx()
	code, _ := GenerateOtp(tx, sellerID, now)

	if err := VerifyOtp(tx, sellerID, code, now); !errors.Is(err, ErrForbidden) {
		t.Fatalf("seller must not verify own code, got %v", err)
	}
	if err := VerifyOtp(tx, otherID, code, now); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger must not verify, got %v", err)
	}
	tx2 := meetingTx()
	if err := VerifyOtp(tx2, buyerID, "123456", now); !errors.Is(err, ErrInvalidOtp) {
		t.Fatalf("verify without a generated code must fail, got %v", err)
	}
}

func TestNewOtpCodeShape(t *testing.T) {
	for i := 0; i < 32; i++ {
		code, err := newOtpCode()
		if err != nil {
			t.Fatalf("newOtpCode: %v", err)
		}
		if len(code) != OtpLength {
			t.Fatalf("expected %d digits, got %q", OtpLength, code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
	}
}
