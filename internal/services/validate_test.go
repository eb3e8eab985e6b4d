package services

import (
	"errors"
	"testing"

	"github.com/timewise/timewise/internal/model"
)

func TestValidateEmail(t *testing.T) {
	for _, ok := range []string{"alice@example.com", "a.b+c@sub.example.org"} {
		if err := validateEmail(ok); err != nil {
			t.Fatalf("validateEmail(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "bad email", "alice@", "@example.com"} {
		if err := validateEmail(bad); err == nil {
			t.Fatalf("validateEmail(%q) expected error", bad)
		}
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		username string
		wantErr  string
	}{
		{name: "valid", email: "alice@example.com", password: "secret", username: "alice"},
		{name: "bad email", email: "nope", password: "secret", username: "alice", wantErr: "validation error: invalid email"},
		{name: "short password", email: "alice@example.com", password: "12345", username: "alice", wantErr: "validation error: password must be at least 6 characters"},
		{name: "short username", email: "alice@example.com", password: "secret", username: " al ", wantErr: "validation error: username must be at least 3 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistration(tt.email, tt.password, tt.username)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("got %v, want %q", err, tt.wantErr)
			}
			if !errors.Is(err, model.ErrValidation) {
				t.Fatalf("error does not wrap ErrValidation")
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	if err := ValidateLogin("alice@example.com", ""); err == nil {
		t.Fatalf("expected error for empty password")
	}
	if err := ValidateLogin("alice@example.com", "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
