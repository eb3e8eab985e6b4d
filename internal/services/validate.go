package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-openapi/strfmt"

	"github.com/timewise/timewise/internal/model"
)

const (
	MinPasswordLength = 6
	MinUsernameLength = 3
)

func validateEmail(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !strfmt.IsEmail(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func minLen(field, v string, limit int) error {
	if utf8.RuneCountInString(v) < limit {
		return fmt.Errorf("%s must be at least %d characters", field, limit)
	}
	return nil
}

// ValidateRegistration checks sign-up input. Errors wrap model.ErrValidation.
func ValidateRegistration(email, password, username string) error {
	if err := validateEmail(email); err != nil {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	if err := minLen("password", password, MinPasswordLength); err != nil {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	if err := minLen("username", strings.TrimSpace(username), MinUsernameLength); err != nil {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	return nil
}

// ValidateLogin checks sign-in input.
func ValidateLogin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: password is required", model.ErrValidation)
	}
	return nil
}
