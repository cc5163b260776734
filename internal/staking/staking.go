package staking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mycoin-network/claviger/internal/models"
	"github.com/mycoin-network/claviger/pkg/logger"
	"github.com/mycoin-network/claviger/pkg/validation"
)

const (
	minDurationDays = 1
	maxDurationDays = 1460 // 4 years

	daysPerYear = 365
)

var (
	baseAPY  = decimal.NewFromInt(5)
	bonusAPY = decimal.NewFromInt(10)
	maxAPY   = decimal.NewFromInt(15)
	hundred  = decimal.NewFromInt(100)
	// earlyExitFactor is the share of accrued rewards kept when a stake
	// is closed before its end date.
	earlyExitFactor = decimal.RequireFromString("0.5")
)

// Staking is the local staking simulation: a bookkeeping ledger with no
// backend counterpart. Stakes never move real funds.
type Staking struct {
	logger *logger.Logger
	repo   models.Repository

	// now is swappable for tests.
	now func() time.Time
}

func NewStaking(repo models.Repository, logger *logger.Logger) *Staking {
	return &Staking{repo: repo, logger: logger, now: time.Now}
}

// APYForDuration computes the yield for a lock-up period: a 5% base
// plus up to 10% scaling linearly over one year, capped at 15%.
func APYForDuration(durationDays int) decimal.Decimal {
	apy := baseAPY.Add(
		decimal.NewFromInt(int64(durationDays)).
			Div(decimal.NewFromInt(daysPerYear)).
			Mul(bonusAPY),
	)
	if apy.GreaterThan(maxAPY) {
		return maxAPY
	}
	return apy.Round(4)
}

// accruedRewards is the simple (non-compounding) daily accrual.
func accruedRewards(amount, apy decimal.Decimal, daysStaked int64) decimal.Decimal {
	if daysStaked <= 0 {
		return decimal.Zero
	}
	return amount.
		Mul(apy).
		Div(hundred).
		Div(decimal.NewFromInt(daysPerYear)).
		Mul(decimal.NewFromInt(daysStaked)).
		Round(8)
}

// Stake opens a new stake for the address and returns the record.
func (s *Staking) Stake(stakerAddress string, amount decimal.Decimal, durationDays int) (*models.StakeRecord, error) {
	if err := validation.ValidateAddress(stakerAddress); err != nil {
		return nil, err
	}
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if durationDays < minDurationDays || durationDays > maxDurationDays {
		return nil, fmt.Errorf("duration must be between %d and %d days", minDurationDays, maxDurationDays)
	}

	now := s.now().UTC()
	stake := &models.StakeRecord{
		ID:            uuid.NewString(),
		StakerAddress: stakerAddress,
		Amount:        amount,
		DurationDays:  durationDays,
		APY:           APYForDuration(durationDays),
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, durationDays),
		Status:        models.StakeStatusActive,
	}
	if err := s.repo.AddStake(stake); err != nil {
		return nil, err
	}
	s.logger.Info("Opened stake ", stake.ID, " of ", amount.String(), " for ", durationDays, " days at ", stake.APY.String(), "% APY")
	return stake, nil
}

// Unstake closes an active stake. Closing before the end date keeps
// only half of the rewards accrued so far; closing at or after it pays
// the full term.
func (s *Staking) Unstake(id string) (*models.StakeRecord, error) {
	stake, err := s.repo.GetStake(id)
	if err != nil {
		return nil, err
	}
	if stake.Status != models.StakeStatusActive {
		return nil, fmt.Errorf("stake %s is already %s", id, stake.Status)
	}

	now := s.now().UTC()
	if now.Before(stake.EndDate) {
		daysStaked := int64(now.Sub(stake.StartDate).Hours() / 24)
		stake.RewardsEarned = accruedRewards(stake.Amount, stake.APY, daysStaked).Mul(earlyExitFactor).Round(8)
		s.logger.Info("Stake ", id, " closed early, rewards reduced to ", stake.RewardsEarned.String())
	} else {
		stake.RewardsEarned = accruedRewards(stake.Amount, stake.APY, int64(stake.DurationDays))
	}
	stake.Status = models.StakeStatusCompleted
	stake.EndDate = now

	if err := s.repo.UpdateStake(stake); err != nil {
		return nil, err
	}
	return stake, nil
}

// List returns the address's stakes, newest first.
func (s *Staking) List(stakerAddress string) ([]*models.StakeRecord, error) {
	if err := validation.ValidateAddress(stakerAddress); err != nil {
		return nil, err
	}
	return s.repo.ListStakes(stakerAddress)
}

// Projection reports the rewards a stake would pay if closed now, with
// the early-exit reduction applied when applicable.
func (s *Staking) Projection(stake *models.StakeRecord) decimal.Decimal {
	if stake.Status != models.StakeStatusActive {
		return stake.RewardsEarned
	}
	now := s.now().UTC()
	if now.Before(stake.EndDate) {
		daysStaked := int64(now.Sub(stake.StartDate).Hours() / 24)
		return accruedRewards(stake.Amount, stake.APY, daysStaked).Mul(earlyExitFactor).Round(8)
	}
	return accruedRewards(stake.Amount, stake.APY, int64(stake.DurationDays))
}
