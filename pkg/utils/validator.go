package utils

import (
	"fmt"
	"regexp"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateAmount validates a service amount
func ValidateAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative: %.2f", amount)
	}
	return nil
}
