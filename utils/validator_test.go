package utils

import "testing"

type registerPayload struct {
	Name            string `validate:"required,nameok"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,pwdmin"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

func TestValidateStructOK(t *testing.T) {
	p := registerPayload{
		Name:            "Budi Santoso",
		Email:           "budi@kampus.ac.id",
		Password:        "rahasia1",
		ConfirmPassword: "rahasia1",
	}
	if err := ValidateStruct(&p); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestValidateStructRequired(t *testing.T) {
	p := registerPayload{Email: "budi@kampus.ac.id", Password: "rahasia1", ConfirmPassword: "rahasia1"}
	if err := ValidateStruct(&p); err == nil {
		t.Fatalf("expected error for missing name")
	}
}

func TestValidateStructEmail(t *testing.T) {
	p := registerPayload{Name: "Budi", Email: "bukan-email", Password: "rahasia1", ConfirmPassword: "rahasia1"}
	if err := ValidateStruct(&p); err == nil {
		t.Fatalf("expected error for malformed email")
	}
}

func TestValidateStructEqField(t *testing.T) {
	p := registerPayload{Name: "Budi", Email: "budi@kampus.ac.id", Password: "rahasia1", ConfirmPassword: "lain"}
	if err := ValidateStruct(&p); err == nil {
		t.Fatalf("expected error for mismatched confirmation")
	}
}
