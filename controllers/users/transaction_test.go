package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"educycle/lifecycle"
	"educycle/models"
)

func TestWriteLifecycleErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{lifecycle.ErrForbidden, http.StatusForbidden},
		{lifecycle.ErrInvalidTransition, http.StatusConflict},
		{lifecycle.ErrInvalidOtp, http.StatusBadRequest},
		{lifecycle.ErrOtpExpired, http.StatusBadRequest},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeLifecycleError(rec, c.err)
		if rec.Code != c.want {
			t.Fatalf("%v: expected status %d, got %d", c.err, c.want, rec.Code)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not JSON: %v", err)
		}
		if ok, _ := body["success"].(bool); ok {
			t.Fatalf("%v: success must be false", c.err)
		}
	}
}

func TestCounterparty(t *testing.T) {
	tx := &models.Transaction{BuyerID: 7, SellerID: 11}
	if got := counterparty(tx, 7); got != 11 {
		t.Fatalf("buyer's counterparty must be the seller, got %d", got)
	}
	if got := counterparty(tx, 11); got != 7 {
		t.Fatalf("seller's counterparty must be the buyer, got %d", got)
	}
}

func TestTransactionDTOHidesHandoffCode(t *testing.T) {
	code := "123456"
	exp := time.Now().Add(15 * time.Minute)
	meeting := time.Now()
	tx := models.Transaction{
		ID:           1,
		OrderID:      "EDU-0000077001",
		BuyerID:      7,
		SellerID:     11,
		Status:       lifecycle.StatusMeeting,
		OtpCode:      &code,
		OtpExpiredAt: &exp,
		MeetingAt:    &meeting,
	}

	raw, err := json.Marshal(toTransactionDTO(&tx))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"otp_code", "OtpCode", "otp_expired_at"} {
		if _, present := out[key]; present {
			t.Fatalf("DTO must not expose %s", key)
		}
	}
	if out["meeting_at"] == nil {
		t.Fatalf("meeting_at must be present while in Meeting")
	}
}

func TestCronHandlersRejectMissingKey(t *testing.T) {
	t.Setenv("CRON_KEY", "sweep-secret")

	for _, path := range []string{"/v1/cron/expire-pending", "/v1/cron/auto-complete"} {
		handler := ExpirePendingHandler
		if path == "/v1/cron/auto-complete" {
			handler = AutoCompleteHandler
		}

		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s without key: expected 401, got %d", path, rec.Code)
		}

		req = httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("X-CRON-KEY", "wrong")
		rec = httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s with wrong key: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestCronAuthorizedRequiresConfiguredKey(t *testing.T) {
	t.Setenv("CRON_KEY", "")
	req := httptest.NewRequest(http.MethodPost, "/v1/cron/expire-pending", nil)
	req.Header.Set("X-CRON-KEY", "")
	if cronAuthorized(req) {
		t.Fatalf("empty configured key must never authorize")
	}
}
