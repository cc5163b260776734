package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StakeStatus is the lifecycle state of a local stake record.
type StakeStatus string

const (
	StakeStatusActive    StakeStatus = "active"
	StakeStatusCompleted StakeStatus = "completed"
)

// StakeRecord is a locally simulated stake. This is client-only
// bookkeeping with no backend source of truth; it lives in its own table
// and never touches the session or notification data model.
type StakeRecord struct {
	// ID is a locally generated identifier.
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// StakerAddress is the wallet address the stake is attributed to.
	StakerAddress string `json:"staker_address" gorm:"column:staker_address;index"`
	// Amount staked, in MYC.
	Amount decimal.Decimal `json:"amount" gorm:"column:amount;type:text"`
	// DurationDays is the chosen lock-up period.
	DurationDays int `json:"duration_days" gorm:"column:duration_days"`
	// APY is the annual percentage yield fixed at stake time.
	APY decimal.Decimal `json:"apy" gorm:"column:apy;type:text"`
	// StartDate is when the stake was opened.
	StartDate time.Time `json:"start_date" gorm:"column:start_date"`
	// EndDate is when the lock-up period ends (or when it was closed).
	EndDate time.Time `json:"end_date" gorm:"column:end_date"`
	// Status is active or completed.
	Status StakeStatus `json:"status" gorm:"column:status;index"`
	// RewardsEarned is the final reward, set when the stake is closed.
	RewardsEarned decimal.Decimal `json:"rewards_earned" gorm:"column:rewards_earned;type:text"`
}

// TableName specifies the table name for GORM.
func (StakeRecord) TableName() string {
	return "stake_records"
}
