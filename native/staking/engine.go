package staking

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	stakeerr "stakeplatform/core/errors"
	"stakeplatform/core/events"
	nativecommon "stakeplatform/native/common"
	"stakeplatform/native/token"
	"stakeplatform/observability/metrics"
)

var (
	errNilState       = errors.New("staking engine: state not configured")
	errNotInitialized = errors.New("staking engine: config not initialised")
	errAssetsNotSet   = errors.New("staking engine: asset resolver not configured")
	errCustodyNotSet  = errors.New("staking engine: custody account not configured")
)

const (
	opStake   = "stake"
	opUnstake = "unstake"
	opClaim   = "claim"
)

type engineState interface {
	StakingConfigGet() (*GlobalConfig, bool, error)
	StakingConfigPut(cfg *GlobalConfig) error
	StakingAccountGet(addr common.Address) (*AccountState, bool, error)
	StakingAccountPut(addr common.Address, acct *AccountState) error
	StakingAccountDelete(addr common.Address) error
}

// AssetResolver maps an asset address to the ledger that moves its balances.
type AssetResolver interface {
	Lookup(addr common.Address) (token.Asset, error)
}

// Engine wires the staking ledger business logic with persistence, asset
// transfers and event emission.
//
// Every mutating call runs as one critical section: user actions hold the
// config read lock plus the caller's account lock, admin calls hold the config
// write lock. Nothing is persisted until all checks passed, and a failure
// after the first side effect is unwound before the call returns.
type Engine struct {
	state     engineState
	assets    AssetResolver
	emitter   events.Emitter
	nowFn     func() int64
	logger    *slog.Logger
	telemetry *metrics.StakingMetrics
	custody   common.Address

	cfgMu    sync.RWMutex
	cfg      *GlobalConfig
	accounts accountLocks
}

// NewEngine constructs a staking engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter:   events.NoopEmitter{},
		nowFn:     func() int64 { return time.Now().Unix() },
		logger:    slog.Default().With(slog.String("component", "staking")),
		telemetry: metrics.Staking(),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAssets configures how asset addresses resolve to token ledgers.
func (e *Engine) SetAssets(assets AssetResolver) { e.assets = assets }

// SetCustody configures the account that holds staked principal and the reward pool.
func (e *Engine) SetCustody(addr common.Address) { e.custody = addr }

// Custody returns the account holding staked principal and the reward pool.
func (e *Engine) Custody() common.Address { return e.custody }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetLogger overrides the structured logger.
func (e *Engine) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	e.logger = l.With(slog.String("component", "staking"))
}

// SetMetrics overrides the telemetry sink. A nil value disables metrics.
func (e *Engine) SetMetrics(m *metrics.StakingMetrics) { e.telemetry = m }

// Initialize loads the persisted configuration, or stores genesis when the
// backend holds none yet. A persisted configuration always wins over genesis.
func (e *Engine) Initialize(genesis GlobalConfig) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()

	stored, ok, err := e.state.StakingConfigGet()
	if err != nil {
		return fmt.Errorf("staking: load config: %w", err)
	}
	if ok && stored != nil {
		if err := stored.Validate(); err != nil {
			return fmt.Errorf("staking: stored config: %w", err)
		}
		cfg := *stored
		e.cfg = &cfg
		e.logger.Info("staking config restored",
			slog.String("owner", cfg.Owner.Hex()),
			slog.Bool("locked", cfg.Locked))
	} else {
		if err := genesis.Validate(); err != nil {
			return err
		}
		cfg := genesis
		if err := e.state.StakingConfigPut(&cfg); err != nil {
			return fmt.Errorf("staking: persist config: %w", err)
		}
		e.cfg = &cfg
		e.logger.Info("staking config initialised",
			slog.String("owner", cfg.Owner.Hex()),
			slog.Uint64("rewardPercentage", cfg.RewardPercentage),
			slog.Uint64("rewardDelay", cfg.RewardDelay),
			slog.Uint64("unstakeDelay", cfg.UnstakeDelay),
			slog.Bool("locked", cfg.Locked))
	}
	e.telemetry.SetLocked(e.cfg.Locked)
	return nil
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

// currentConfig must be called with cfgMu held.
func (e *Engine) currentConfig() (*GlobalConfig, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.cfg == nil {
		return nil, errNotInitialized
	}
	return e.cfg, nil
}

func (e *Engine) loadAccount(addr common.Address) (*AccountState, error) {
	acct, _, err := e.loadAccountRecord(addr)
	return acct, err
}

// loadAccountRecord also reports whether addr has a stored record.
func (e *Engine) loadAccountRecord(addr common.Address) (*AccountState, bool, error) {
	acct, ok, err := e.state.StakingAccountGet(addr)
	if err != nil {
		return nil, false, fmt.Errorf("staking: load account: %w", err)
	}
	if !ok {
		return newAccountState(), false, nil
	}
	return ensureAccount(acct).Clone(), true, nil
}

// restoreAccount writes back the record held before a failed call, or removes
// the record when the account had none.
func (e *Engine) restoreAccount(addr common.Address, previous *AccountState, existed bool) error {
	if !existed {
		return e.state.StakingAccountDelete(addr)
	}
	return e.state.StakingAccountPut(addr, previous)
}

func (e *Engine) asset(addr common.Address) (token.Asset, error) {
	if e.assets == nil {
		return nil, errAssetsNotSet
	}
	if e.custody == (common.Address{}) {
		return nil, errCustodyNotSet
	}
	asset, err := e.assets.Lookup(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", stakeerr.ErrAssetTransferFailed, err)
	}
	return asset, nil
}

// settle folds the reward accrued since the last reward date into acct.
// Without principal nothing can accrue, so the reward clock restarts at now
// and the next deposit opens a full period.
func (e *Engine) settle(acct *AccountState, cfg *GlobalConfig, now int64) (Accrual, error) {
	if acct.StakedAmount.Sign() == 0 {
		if now > acct.LastRewardDate {
			acct.LastRewardDate = now
		}
		return Accrual{Added: big.NewInt(0), LastRewardDate: acct.LastRewardDate}, nil
	}
	accrual, err := Accrue(now, acct.LastRewardDate, cfg.RewardDelay, acct.StakedAmount, cfg.RewardPercentage)
	if err != nil {
		return Accrual{}, err
	}
	acct.PendingReward.Add(acct.PendingReward, accrual.Added)
	acct.LastRewardDate = accrual.LastRewardDate
	return accrual, nil
}

// Stake pulls amount of the staking asset from caller into custody and adds
// it to the caller's principal after folding in any accrued reward.
func (e *Engine) Stake(caller common.Address, amount *big.Int) error {
	err := e.stake(caller, amount)
	e.observe(opStake, err)
	return err
}

func (e *Engine) stake(caller common.Address, amount *big.Int) error {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	cfg, err := e.currentConfig()
	if err != nil {
		return err
	}
	if err := nativecommon.Guard(cfg, nativecommon.ClassUserAction); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return stakeerr.ErrInvalidAmount
	}

	unlock := e.accounts.lock(caller)
	defer unlock()

	previous, existed, err := e.loadAccountRecord(caller)
	if err != nil {
		return err
	}
	acct := previous.Clone()
	now := e.now()
	accrual, err := e.settle(acct, cfg, now)
	if err != nil {
		return err
	}
	acct.StakedAmount.Add(acct.StakedAmount, amount)
	acct.LastStakeDate = now

	asset, err := e.asset(cfg.StakingToken)
	if err != nil {
		return err
	}
	if err := e.state.StakingAccountPut(caller, acct); err != nil {
		return fmt.Errorf("staking: persist account: %w", err)
	}
	if err := asset.TransferFrom(e.custody, caller, e.custody, amount); err != nil {
		transferErr := fmt.Errorf("%w: %w", stakeerr.ErrAssetTransferFailed, err)
		if restoreErr := e.restoreAccount(caller, previous, existed); restoreErr != nil {
			e.logger.Error("staking: restore account after failed transfer",
				slog.String("addr", caller.Hex()),
				slog.Any("error", restoreErr))
			return errors.Join(transferErr, restoreErr)
		}
		return transferErr
	}

	e.telemetry.AddStaked(amount)
	e.telemetry.AddRewardAccrued(accrual.Added)
	e.emit(events.Staked{
		Account:       caller,
		Amount:        newBigInt(amount),
		NewStaked:     newBigInt(acct.StakedAmount),
		AddedReward:   accrual.Added,
		LastStakeDate: now,
	})
	e.logger.Debug("stake committed",
		slog.String("addr", caller.Hex()),
		slog.String("amount", amount.String()),
		slog.String("staked", acct.StakedAmount.String()),
		slog.Uint64("periods", accrual.Periods))
	return nil
}

// Unstake returns the caller's full principal once the unstake delay has
// passed since the last stake. Pending reward survives for a later Claim.
func (e *Engine) Unstake(caller common.Address) (*big.Int, error) {
	amount, err := e.unstake(caller)
	e.observe(opUnstake, err)
	return amount, err
}

func (e *Engine) unstake(caller common.Address) (*big.Int, error) {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	cfg, err := e.currentConfig()
	if err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(cfg, nativecommon.ClassUserAction); err != nil {
		return nil, err
	}

	unlock := e.accounts.lock(caller)
	defer unlock()

	acct, err := e.loadAccount(caller)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if acct.StakedAmount.Sign() == 0 || !unstakeDue(now, acct.LastStakeDate, cfg.UnstakeDelay) {
		return nil, stakeerr.ErrCannotUnstakeYet
	}
	previous := acct.Clone()
	accrual, err := e.settle(acct, cfg, now)
	if err != nil {
		return nil, err
	}
	principal := newBigInt(acct.StakedAmount)
	acct.StakedAmount = big.NewInt(0)

	asset, err := e.asset(cfg.StakingToken)
	if err != nil {
		return nil, err
	}
	if err := e.commitPayout(caller, acct, previous, asset, principal); err != nil {
		return nil, err
	}

	e.telemetry.AddStaked(new(big.Int).Neg(principal))
	e.telemetry.AddRewardAccrued(accrual.Added)
	e.emit(events.Unstaked{
		Account:       caller,
		Amount:        newBigInt(principal),
		PendingReward: newBigInt(acct.PendingReward),
	})
	e.logger.Debug("unstake committed",
		slog.String("addr", caller.Hex()),
		slog.String("amount", principal.String()),
		slog.String("pendingReward", acct.PendingReward.String()))
	return principal, nil
}

func unstakeDue(now, lastStakeDate int64, delay uint64) bool {
	if now < lastStakeDate {
		return false
	}
	return uint64(now-lastStakeDate) >= delay
}

// Claim pays the caller's whole pending reward, including reward accrued up
// to now, in the reward asset.
func (e *Engine) Claim(caller common.Address) (*big.Int, error) {
	paid, err := e.claim(caller)
	e.observe(opClaim, err)
	return paid, err
}

func (e *Engine) claim(caller common.Address) (*big.Int, error) {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	cfg, err := e.currentConfig()
	if err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(cfg, nativecommon.ClassUserAction); err != nil {
		return nil, err
	}

	unlock := e.accounts.lock(caller)
	defer unlock()

	acct, err := e.loadAccount(caller)
	if err != nil {
		return nil, err
	}
	previous := acct.Clone()
	accrual, err := e.settle(acct, cfg, e.now())
	if err != nil {
		return nil, err
	}
	if acct.PendingReward.Sign() == 0 {
		return nil, stakeerr.ErrNothingToClaim
	}
	paid := newBigInt(acct.PendingReward)
	acct.PendingReward = big.NewInt(0)

	asset, err := e.asset(cfg.RewardToken)
	if err != nil {
		return nil, err
	}
	if err := e.commitPayout(caller, acct, previous, asset, paid); err != nil {
		return nil, err
	}

	e.telemetry.AddRewardAccrued(accrual.Added)
	e.telemetry.AddRewardPaid(paid)
	e.emit(events.RewardClaimed{Account: caller, Paid: newBigInt(paid), Periods: accrual.Periods})
	e.logger.Debug("claim committed",
		slog.String("addr", caller.Hex()),
		slog.String("paid", paid.String()),
		slog.Uint64("periods", accrual.Periods))
	return paid, nil
}

// commitPayout persists next and then moves amount out of custody. When the
// transfer fails the previous record is written back.
func (e *Engine) commitPayout(caller common.Address, next, previous *AccountState, asset token.Asset, amount *big.Int) error {
	if err := e.state.StakingAccountPut(caller, next); err != nil {
		return fmt.Errorf("staking: persist account: %w", err)
	}
	if err := asset.Transfer(e.custody, caller, amount); err != nil {
		if restoreErr := e.state.StakingAccountPut(caller, previous); restoreErr != nil {
			e.logger.Error("staking: restore account after failed transfer",
				slog.String("addr", caller.Hex()),
				slog.Any("error", restoreErr))
			return errors.Join(fmt.Errorf("%w: %w", stakeerr.ErrAssetTransferFailed, err), restoreErr)
		}
		return fmt.Errorf("%w: %w", stakeerr.ErrAssetTransferFailed, err)
	}
	return nil
}

// GetDetails returns the target's record. Callers may read their own record;
// only the owner may read anyone else's. Reading never accrues.
func (e *Engine) GetDetails(caller, target common.Address) (Details, error) {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	cfg, err := e.currentConfig()
	if err != nil {
		return Details{}, err
	}
	if err := authorizeRead(caller, target, cfg); err != nil {
		return Details{}, err
	}
	unlock := e.accounts.rlock(target)
	defer unlock()
	acct, err := e.loadAccount(target)
	if err != nil {
		return Details{}, err
	}
	return detailsOf(acct), nil
}

func (e *Engine) observe(operation string, err error) {
	e.telemetry.ObserveOperation(operation, outcomeLabel(err))
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, stakeerr.ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, stakeerr.ErrLockedOperation):
		return "locked"
	case errors.Is(err, stakeerr.ErrConfigRequiresLock):
		return "requires_lock"
	case errors.Is(err, stakeerr.ErrCannotUnstakeYet):
		return "cannot_unstake_yet"
	case errors.Is(err, stakeerr.ErrNothingToClaim):
		return "nothing_to_claim"
	case errors.Is(err, stakeerr.ErrAssetTransferFailed):
		return "transfer_failed"
	case errors.Is(err, stakeerr.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, stakeerr.ErrInvalidDelay):
		return "invalid_delay"
	case errors.Is(err, stakeerr.ErrInvalidPercentage):
		return "invalid_percentage"
	case errors.Is(err, stakeerr.ErrArithmeticOverflow):
		return "overflow"
	default:
		return "error"
	}
}
