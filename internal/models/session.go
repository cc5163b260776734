package models

import (
	"fmt"
	"time"
)

// AccessMethod records how a wallet session was established. It is a
// provenance tag: display code and Validate use it, nothing else branches
// on it.
type AccessMethod string

const (
	// AccessMethodCreated marks a session produced by generating a brand
	// new wallet on the backend.
	AccessMethodCreated AccessMethod = "created"
	// AccessMethodAddress marks a session unlocked with address+password.
	AccessMethodAddress AccessMethod = "address"
	// AccessMethodPrivateKey marks a session attached from a raw private key.
	AccessMethodPrivateKey AccessMethod = "private_key"
	// AccessMethodMnemonic marks a session recovered from a mnemonic phrase.
	AccessMethodMnemonic AccessMethod = "mnemonic"
)

// WalletSession is the locally persisted identity record: the wallet the
// user is currently operating as. At most one session exists at a time;
// writing a new one fully replaces the previous one.
type WalletSession struct {
	// Address is the backend-assigned account identifier.
	Address string `json:"address"`
	// PublicKey of the wallet.
	PublicKey string `json:"public_key"`
	// PrivateKey is present only when the access flow supplied one.
	// A session without it cannot authorize transfers or notification
	// responses.
	PrivateKey string `json:"private_key,omitempty"`
	// Mnemonic is present only when generated at creation or supplied at
	// mnemonic access time.
	Mnemonic string `json:"mnemonic,omitempty"`
	// AccessMethod records how the session was established.
	AccessMethod AccessMethod `json:"access_method"`
	// AccessedAt is the time the session was (re)established.
	AccessedAt time.Time `json:"accessed_at"`
}

// CanSign reports whether the session carries a private key and can
// therefore authorize transfers and notification responses.
func (s *WalletSession) CanSign() bool {
	return s != nil && s.PrivateKey != ""
}

// Validate checks the invariants between the access method and the
// credentials the session carries. A record read back from storage that
// fails Validate is treated as corrupt.
func (s *WalletSession) Validate() error {
	if s.Address == "" {
		return fmt.Errorf("session has no address")
	}
	switch s.AccessMethod {
	case AccessMethodCreated:
		if s.PrivateKey == "" || s.Mnemonic == "" {
			return fmt.Errorf("created session must carry private key and mnemonic")
		}
	case AccessMethodPrivateKey:
		if s.PrivateKey == "" {
			return fmt.Errorf("private-key session must carry a private key")
		}
	case AccessMethodMnemonic:
		if s.Mnemonic == "" {
			return fmt.Errorf("mnemonic session must carry a mnemonic")
		}
	case AccessMethodAddress:
		// Credentials are optional: the unlock endpoint may or may not
		// hand back the decrypted key.
	default:
		return fmt.Errorf("unknown access method %q", s.AccessMethod)
	}
	return nil
}
