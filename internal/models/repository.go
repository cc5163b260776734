package models

// Repository is the client's durable local storage: the session slot, the
// last-accessed pointer, a small key/value area and the stake ledger.
// Writes are whole-record replacements; last writer wins.
type Repository interface {
	// GetSession returns the active session, or (nil, nil) when there is
	// none. A corrupt or schema-invalid slot is discarded and reported as
	// no session, never as an error.
	GetSession() (*WalletSession, error)
	// SetSession atomically replaces the session slot.
	SetSession(session *WalletSession) error
	// ClearSession removes the session slot.
	ClearSession() error

	// GetLastAccessed returns the last-accessed wallet address hint, or
	// empty when none was recorded. Never authoritative.
	GetLastAccessed() (string, error)
	// SetLastAccessed records the last-accessed wallet address.
	SetLastAccessed(address string) error

	// GetValue and SetValue expose the generic key/value area used by
	// auxiliary components (e.g. the telegram chat binding).
	GetValue(key string) (string, error)
	SetValue(key, value string) error

	// Stake ledger operations for the local staking simulation.
	AddStake(stake *StakeRecord) error
	GetStake(id string) (*StakeRecord, error)
	ListStakes(stakerAddress string) ([]*StakeRecord, error)
	UpdateStake(stake *StakeRecord) error

	Close() error
}
