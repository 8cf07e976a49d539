package staking

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	stakeerr "stakeplatform/core/errors"
)

const (
	// DefaultRewardPercentage is the reward paid per period, in percentage points of principal.
	DefaultRewardPercentage uint64 = 20
	// DefaultRewardDelay is the length of one reward period in seconds.
	DefaultRewardDelay uint64 = 10 * 60
	// DefaultUnstakeDelay is the minimum time between the last stake and an unstake, in seconds.
	DefaultUnstakeDelay uint64 = 20 * 60

	// MaxRewardPercentage caps the per-period reward at 100x principal.
	MaxRewardPercentage uint64 = 10_000

	percentDenominator = 100
)

// MinutesToSeconds converts a period expressed in minutes, the unit operators
// use when scheduling periods, into the seconds the ledger stores.
func MinutesToSeconds(minutes uint64) uint64 {
	return minutes * 60
}

// GlobalConfig holds the owner-controlled parameters shared by every account.
type GlobalConfig struct {
	Owner            common.Address
	StakingToken     common.Address
	RewardToken      common.Address
	RewardPercentage uint64
	RewardDelay      uint64
	UnstakeDelay     uint64
	Locked           bool
}

// DefaultConfig returns the parameters a freshly deployed platform starts
// with. The platform starts locked so the owner can wire asset addresses
// before opening it to stakers.
func DefaultConfig(owner common.Address) GlobalConfig {
	return GlobalConfig{
		Owner:            owner,
		RewardPercentage: DefaultRewardPercentage,
		RewardDelay:      DefaultRewardDelay,
		UnstakeDelay:     DefaultUnstakeDelay,
		Locked:           true,
	}
}

// IsLocked satisfies the lock view consulted by the operation guard.
func (c *GlobalConfig) IsLocked() bool {
	return c != nil && c.Locked
}

// Validate checks the invariants a persisted configuration must satisfy.
func (c GlobalConfig) Validate() error {
	if c.Owner == (common.Address{}) {
		return fmt.Errorf("staking: owner must be set")
	}
	if c.RewardDelay == 0 {
		return stakeerr.ErrInvalidDelay
	}
	if c.RewardPercentage > MaxRewardPercentage {
		return stakeerr.ErrInvalidPercentage
	}
	return nil
}

// AccountState is the per-staker record. Records are created lazily on first
// stake and only removed when that first stake fails to move funds.
type AccountState struct {
	StakedAmount   *big.Int
	PendingReward  *big.Int
	LastStakeDate  int64
	LastRewardDate int64
}

func newAccountState() *AccountState {
	return &AccountState{StakedAmount: big.NewInt(0), PendingReward: big.NewInt(0)}
}

func ensureAccount(acct *AccountState) *AccountState {
	if acct == nil {
		return newAccountState()
	}
	if acct.StakedAmount == nil {
		acct.StakedAmount = big.NewInt(0)
	}
	if acct.PendingReward == nil {
		acct.PendingReward = big.NewInt(0)
	}
	return acct
}

// Clone returns a deep copy of the account.
func (a *AccountState) Clone() *AccountState {
	if a == nil {
		return newAccountState()
	}
	return &AccountState{
		StakedAmount:   newBigInt(a.StakedAmount),
		PendingReward:  newBigInt(a.PendingReward),
		LastStakeDate:  a.LastStakeDate,
		LastRewardDate: a.LastRewardDate,
	}
}

// Details is the read-only view returned by GetDetails.
type Details struct {
	StakedAmount   *big.Int
	PendingReward  *big.Int
	LastStakeDate  int64
	LastRewardDate int64
}

func detailsOf(acct *AccountState) Details {
	acct = ensureAccount(acct)
	return Details{
		StakedAmount:   newBigInt(acct.StakedAmount),
		PendingReward:  newBigInt(acct.PendingReward),
		LastStakeDate:  acct.LastStakeDate,
		LastRewardDate: acct.LastRewardDate,
	}
}

func newBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
