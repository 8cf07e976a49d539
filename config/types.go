package config

import (
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"

	"stakeplatform/native/staking"
)

// Staking captures the genesis parameters of the staking ledger. They only
// apply to an empty data directory; afterwards the persisted configuration
// wins and changes go through the owner setters.
type Staking struct {
	Owner               string `toml:"Owner"`
	StakingToken        string `toml:"StakingToken"`
	RewardToken         string `toml:"RewardToken"`
	Custody             string `toml:"Custody"`
	RewardPercentage    uint64 `toml:"RewardPercentage"`
	RewardDelaySeconds  uint64 `toml:"RewardDelaySeconds"`
	UnstakeDelaySeconds uint64 `toml:"UnstakeDelaySeconds"`
	// RewardDelayMinutes and UnstakeDelayMinutes are alternatives to the
	// *Seconds keys for operators who schedule periods in minutes.
	RewardDelayMinutes  uint64 `toml:"RewardDelayMinutes,omitempty"`
	UnstakeDelayMinutes uint64 `toml:"UnstakeDelayMinutes,omitempty"`
	Locked              bool   `toml:"Locked"`
}

// DefaultStaking returns the deployment defaults: 20% per 10 minute period,
// a 20 minute unstake delay, and a locked platform.
func DefaultStaking() Staking {
	return Staking{
		RewardPercentage:    staking.DefaultRewardPercentage,
		RewardDelaySeconds:  staking.DefaultRewardDelay,
		UnstakeDelaySeconds: staking.DefaultUnstakeDelay,
		Locked:              true,
	}
}

// applyDefaults fills keys absent from the file and folds minute-denominated
// delays into their *Seconds fields. Explicit zero values are kept so
// validation can reject them.
func (s *Staking) applyDefaults(meta toml.MetaData) error {
	def := DefaultStaking()
	if !meta.IsDefined("Staking", "RewardPercentage") {
		s.RewardPercentage = def.RewardPercentage
	}
	if !meta.IsDefined("Staking", "Locked") {
		s.Locked = def.Locked
	}
	var err error
	if s.RewardDelaySeconds, err = periodSeconds(meta, "RewardDelay", s.RewardDelaySeconds, s.RewardDelayMinutes, def.RewardDelaySeconds); err != nil {
		return err
	}
	if s.UnstakeDelaySeconds, err = periodSeconds(meta, "UnstakeDelay", s.UnstakeDelaySeconds, s.UnstakeDelayMinutes, def.UnstakeDelaySeconds); err != nil {
		return err
	}
	return nil
}

func periodSeconds(meta toml.MetaData, name string, seconds, minutes, fallback uint64) (uint64, error) {
	hasSeconds := meta.IsDefined("Staking", name+"Seconds")
	hasMinutes := meta.IsDefined("Staking", name+"Minutes")
	switch {
	case hasSeconds && hasMinutes:
		return 0, fmt.Errorf("staking: set only one of %sSeconds and %sMinutes", name, name)
	case hasMinutes:
		if minutes > math.MaxUint64/60 {
			return 0, fmt.Errorf("staking: %sMinutes %d is out of range", name, minutes)
		}
		return staking.MinutesToSeconds(minutes), nil
	case hasSeconds:
		return seconds, nil
	default:
		return fallback, nil
	}
}

// GlobalConfig converts the section into the ledger's genesis configuration.
// Call ValidateStaking first; malformed addresses decode to the zero address.
func (s Staking) GlobalConfig() staking.GlobalConfig {
	return staking.GlobalConfig{
		Owner:            common.HexToAddress(s.Owner),
		StakingToken:     common.HexToAddress(s.StakingToken),
		RewardToken:      common.HexToAddress(s.RewardToken),
		RewardPercentage: s.RewardPercentage,
		RewardDelay:      s.RewardDelaySeconds,
		UnstakeDelay:     s.UnstakeDelaySeconds,
		Locked:           s.Locked,
	}
}

// CustodyAddress returns the account that holds principal and the reward pool.
func (s Staking) CustodyAddress() common.Address {
	return common.HexToAddress(s.Custody)
}
