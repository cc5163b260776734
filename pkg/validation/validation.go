package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MinPasswordLength is enforced before any wallet request is made.
	MinPasswordLength = 8
)

// maxAmount is the MyCoin max supply. No single transfer can exceed it.
var maxAmount = decimal.NewFromInt(21_000_000)

var (
	// MyCoin addresses start with 1 or 3 and use the base58 alphabet.
	addressRegexp = regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`)
	// Private keys are 32 bytes hex encoded.
	privateKeyRegexp = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)
)

// ValidateAddress validates a MyCoin address format.
func ValidateAddress(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if !addressRegexp.MatchString(addr) {
		return fmt.Errorf("invalid address format: %q", addr)
	}
	return nil
}

// IsValidAddress reports whether addr looks like a MyCoin address.
func IsValidAddress(addr string) bool {
	return ValidateAddress(addr) == nil
}

// ValidatePrivateKey validates a raw private key (64 hex characters).
func ValidatePrivateKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("private key cannot be empty")
	}
	if !privateKeyRegexp.MatchString(key) {
		return fmt.Errorf("invalid private key format: expected 64 hex characters")
	}
	return nil
}

// ValidateMnemonic checks the recovery phrase shape (12 or 24 words).
func ValidateMnemonic(mnemonic string) error {
	words := strings.Fields(strings.TrimSpace(mnemonic))
	if len(words) != 12 && len(words) != 24 {
		return fmt.Errorf("invalid mnemonic: expected 12 or 24 words, got %d", len(words))
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

// ValidateAmount parses a coin amount and checks it is positive and within
// the max supply.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("amount must be greater than zero")
	}
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("amount exceeds max supply of %s", maxAmount.String())
	}
	return nil
}
