package events

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"stakeplatform/core/types"
)

const (
	// TypeRewardRateChanged is emitted when the owner changes the reward percentage.
	TypeRewardRateChanged = "staking.rewardRateChanged"
	// TypeRewardDelayChanged is emitted when the owner changes the reward period length.
	TypeRewardDelayChanged = "staking.rewardDelayChanged"
	// TypeUnstakeDelayChanged is emitted when the owner changes the unstake delay.
	TypeUnstakeDelayChanged = "staking.unstakeDelayChanged"
	// TypeTokenChanged is emitted when the staking or reward asset address is replaced.
	TypeTokenChanged = "staking.tokenChanged"
	// TypeLockChanged is emitted whenever the owner toggles the platform lock.
	TypeLockChanged = "staking.lockChanged"
	// TypeStaked is emitted after principal has been pulled into custody.
	TypeStaked = "staking.staked"
	// TypeUnstaked is emitted after principal has been returned to the staker.
	TypeUnstaked = "staking.unstaked"
	// TypeRewardClaimed is emitted after pending reward has been paid out.
	TypeRewardClaimed = "staking.rewardClaimed"
)

// RewardRateChanged carries the new reward percentage.
type RewardRateChanged struct {
	Percentage uint64
}

// EventType satisfies the Event interface.
func (RewardRateChanged) EventType() string { return TypeRewardRateChanged }

// Event converts the structured payload into a broadcastable event.
func (e RewardRateChanged) Event() *types.Event {
	return &types.Event{Type: TypeRewardRateChanged, Attributes: map[string]string{
		"percentage": formatUint(e.Percentage),
	}}
}

// RewardDelayChanged carries the new reward period in seconds.
type RewardDelayChanged struct {
	Delay uint64
}

// EventType satisfies the Event interface.
func (RewardDelayChanged) EventType() string { return TypeRewardDelayChanged }

// Event converts the structured payload into a broadcastable event.
func (e RewardDelayChanged) Event() *types.Event {
	return &types.Event{Type: TypeRewardDelayChanged, Attributes: map[string]string{
		"delay": formatUint(e.Delay),
	}}
}

// UnstakeDelayChanged carries the new unstake delay in seconds.
type UnstakeDelayChanged struct {
	Delay uint64
}

// EventType satisfies the Event interface.
func (UnstakeDelayChanged) EventType() string { return TypeUnstakeDelayChanged }

// Event converts the structured payload into a broadcastable event.
func (e UnstakeDelayChanged) Event() *types.Event {
	return &types.Event{Type: TypeUnstakeDelayChanged, Attributes: map[string]string{
		"delay": formatUint(e.Delay),
	}}
}

// TokenChanged records an asset address replacement. IsRewardToken
// distinguishes the reward asset from the staking asset.
type TokenChanged struct {
	IsRewardToken bool
	Old           common.Address
	New           common.Address
}

// EventType satisfies the Event interface.
func (TokenChanged) EventType() string { return TypeTokenChanged }

// Event converts the structured payload into a broadcastable event.
func (e TokenChanged) Event() *types.Event {
	return &types.Event{Type: TypeTokenChanged, Attributes: map[string]string{
		"isRewardToken": strconv.FormatBool(e.IsRewardToken),
		"old":           formatAddress(e.Old),
		"new":           formatAddress(e.New),
	}}
}

// LockChanged records the lock flag after an owner toggle.
type LockChanged struct {
	Locked bool
}

// EventType satisfies the Event interface.
func (LockChanged) EventType() string { return TypeLockChanged }

// Event converts the structured payload into a broadcastable event.
func (e LockChanged) Event() *types.Event {
	return &types.Event{Type: TypeLockChanged, Attributes: map[string]string{
		"locked": strconv.FormatBool(e.Locked),
	}}
}

// Staked captures a principal deposit and the reward folded in by it.
type Staked struct {
	Account       common.Address
	Amount        *big.Int
	NewStaked     *big.Int
	AddedReward   *big.Int
	LastStakeDate int64
}

// EventType satisfies the Event interface.
func (Staked) EventType() string { return TypeStaked }

// Event converts the structured payload into a broadcastable event.
func (e Staked) Event() *types.Event {
	attrs := map[string]string{
		"addr":          formatAddress(e.Account),
		"amount":        formatAmount(e.Amount),
		"staked":        formatAmount(e.NewStaked),
		"lastStakeDate": strconv.FormatInt(e.LastStakeDate, 10),
	}
	if e.AddedReward != nil && e.AddedReward.Sign() > 0 {
		attrs["addedReward"] = formatAmount(e.AddedReward)
	}
	return &types.Event{Type: TypeStaked, Attributes: attrs}
}

// Unstaked captures a full principal withdrawal.
type Unstaked struct {
	Account       common.Address
	Amount        *big.Int
	PendingReward *big.Int
}

// EventType satisfies the Event interface.
func (Unstaked) EventType() string { return TypeUnstaked }

// Event converts the structured payload into a broadcastable event.
func (e Unstaked) Event() *types.Event {
	return &types.Event{Type: TypeUnstaked, Attributes: map[string]string{
		"addr":          formatAddress(e.Account),
		"amount":        formatAmount(e.Amount),
		"pendingReward": formatAmount(e.PendingReward),
	}}
}

// RewardClaimed captures a reward payout.
type RewardClaimed struct {
	Account common.Address
	Paid    *big.Int
	Periods uint64
}

// EventType satisfies the Event interface.
func (RewardClaimed) EventType() string { return TypeRewardClaimed }

// Event converts the structured payload into a broadcastable event.
func (e RewardClaimed) Event() *types.Event {
	attrs := map[string]string{
		"addr": formatAddress(e.Account),
		"paid": formatAmount(e.Paid),
	}
	if e.Periods > 0 {
		attrs["periods"] = formatUint(e.Periods)
	}
	return &types.Event{Type: TypeRewardClaimed, Attributes: attrs}
}
