package staking

import (
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	stakeerr "stakeplatform/core/errors"
	"stakeplatform/core/events"
	nativecommon "stakeplatform/native/common"
)

// updateConfig runs one owner-only parameter change under the config write
// lock. mutate edits a copy; the copy only replaces the live config once it
// has been persisted.
func (e *Engine) updateConfig(caller common.Address, param string, class nativecommon.OperationClass, mutate func(cfg *GlobalConfig) (events.Event, error)) error {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()

	err := func() error {
		cfg, err := e.currentConfig()
		if err != nil {
			return err
		}
		if err := authorizeOwner(caller, cfg); err != nil {
			return err
		}
		if err := nativecommon.Guard(cfg, class); err != nil {
			return err
		}
		next := *cfg
		evt, err := mutate(&next)
		if err != nil {
			return err
		}
		if err := e.state.StakingConfigPut(&next); err != nil {
			return fmt.Errorf("staking: persist config: %w", err)
		}
		e.cfg = &next
		e.telemetry.ObserveConfigChange(param)
		e.telemetry.SetLocked(next.Locked)
		e.emit(evt)
		e.logger.Info("staking config updated",
			slog.String("param", param),
			slog.String("class", class.String()),
			slog.String("caller", caller.Hex()))
		return nil
	}()
	if err != nil {
		e.logger.Warn("staking config change rejected",
			slog.String("param", param),
			slog.String("caller", caller.Hex()),
			slog.Any("error", err))
	}
	e.observe("set_"+param, err)
	return err
}

// SetLock toggles the platform lock. It is the one owner action accepted in
// either lock state.
func (e *Engine) SetLock(caller common.Address, locked bool) error {
	return e.updateConfig(caller, "lock", nativecommon.ClassParameter, func(cfg *GlobalConfig) (events.Event, error) {
		cfg.Locked = locked
		return events.LockChanged{Locked: locked}, nil
	})
}

// SetRewardPercentage sets the reward paid per period in percentage points,
// up to MaxRewardPercentage. Changes apply to every future accrual, including
// periods already elapsed but not yet settled.
func (e *Engine) SetRewardPercentage(caller common.Address, percentage uint64) error {
	return e.updateConfig(caller, "reward_percentage", nativecommon.ClassParameter, func(cfg *GlobalConfig) (events.Event, error) {
		if percentage > MaxRewardPercentage {
			return nil, stakeerr.ErrInvalidPercentage
		}
		cfg.RewardPercentage = percentage
		return events.RewardRateChanged{Percentage: percentage}, nil
	})
}

// SetRewardDelay sets the reward period length in seconds.
func (e *Engine) SetRewardDelay(caller common.Address, delay uint64) error {
	return e.updateConfig(caller, "reward_delay", nativecommon.ClassParameter, func(cfg *GlobalConfig) (events.Event, error) {
		if delay == 0 {
			return nil, stakeerr.ErrInvalidDelay
		}
		cfg.RewardDelay = delay
		return events.RewardDelayChanged{Delay: delay}, nil
	})
}

// SetUnstakeDelay sets the minimum seconds between a stake and an unstake.
// Zero disables the waiting period.
func (e *Engine) SetUnstakeDelay(caller common.Address, delay uint64) error {
	return e.updateConfig(caller, "unstake_delay", nativecommon.ClassParameter, func(cfg *GlobalConfig) (events.Event, error) {
		cfg.UnstakeDelay = delay
		return events.UnstakeDelayChanged{Delay: delay}, nil
	})
}

// SetStakingToken replaces the staking asset. Only accepted while locked.
func (e *Engine) SetStakingToken(caller, asset common.Address) error {
	return e.updateConfig(caller, "staking_token", nativecommon.ClassAssetConfig, func(cfg *GlobalConfig) (events.Event, error) {
		old := cfg.StakingToken
		cfg.StakingToken = asset
		return events.TokenChanged{Old: old, New: asset}, nil
	})
}

// SetRewardToken replaces the reward asset. Only accepted while locked.
func (e *Engine) SetRewardToken(caller, asset common.Address) error {
	return e.updateConfig(caller, "reward_token", nativecommon.ClassAssetConfig, func(cfg *GlobalConfig) (events.Event, error) {
		old := cfg.RewardToken
		cfg.RewardToken = asset
		return events.TokenChanged{IsRewardToken: true, Old: old, New: asset}, nil
	})
}

// Config returns a snapshot of the live configuration.
func (e *Engine) Config() (GlobalConfig, error) {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	cfg, err := e.currentConfig()
	if err != nil {
		return GlobalConfig{}, err
	}
	return *cfg, nil
}

func (e *Engine) snapshot() GlobalConfig {
	cfg, _ := e.Config()
	return cfg
}

// Owner returns the configured owner. Ownership is fixed after initialisation.
func (e *Engine) Owner() common.Address { return e.snapshot().Owner }

// StakingToken returns the current staking asset address.
func (e *Engine) StakingToken() common.Address { return e.snapshot().StakingToken }

// RewardToken returns the current reward asset address.
func (e *Engine) RewardToken() common.Address { return e.snapshot().RewardToken }

// RewardPercentage returns the reward paid per period in percentage points.
func (e *Engine) RewardPercentage() uint64 { return e.snapshot().RewardPercentage }

// RewardDelay returns the reward period in seconds.
func (e *Engine) RewardDelay() uint64 { return e.snapshot().RewardDelay }

// UnstakeDelay returns the unstake delay in seconds.
func (e *Engine) UnstakeDelay() uint64 { return e.snapshot().UnstakeDelay }

// Locked reports whether the platform is locked.
func (e *Engine) Locked() bool { return e.snapshot().Locked }
