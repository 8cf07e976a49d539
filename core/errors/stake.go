package errors

import stderrors "errors"

var (
	// ErrAccessDenied is returned when a non-owner calls an admin setter or
	// reads another account's details.
	ErrAccessDenied = stderrors.New("staking: no access")
	// ErrLockedOperation rejects stake, unstake and claim while the platform is locked.
	ErrLockedOperation = stderrors.New("staking: functionality is locked")
	// ErrConfigRequiresLock rejects token address changes while the platform is unlocked.
	ErrConfigRequiresLock = stderrors.New("staking: should be locked")
	// ErrCannotUnstakeYet covers both an empty position and an unstake delay that has not elapsed.
	ErrCannotUnstakeYet = stderrors.New("staking: cannot unstake yet")
	// ErrNothingToClaim is returned when no reward is pending after accrual.
	ErrNothingToClaim = stderrors.New("staking: nothing to claim yet")
	// ErrAssetTransferFailed wraps a failed transfer on the staking or reward asset.
	ErrAssetTransferFailed = stderrors.New("staking: asset transfer failed")
	// ErrInvalidAmount rejects non-positive stake amounts.
	ErrInvalidAmount = stderrors.New("staking: amount must be positive")
	// ErrInvalidDelay rejects a zero reward delay.
	ErrInvalidDelay = stderrors.New("staking: delay must be positive")
	// ErrInvalidPercentage rejects a reward percentage above the ledger's cap.
	ErrInvalidPercentage = stderrors.New("staking: reward percentage too high")
	// ErrArithmeticOverflow aborts a call whose reward math exceeds 256 bits.
	ErrArithmeticOverflow = stderrors.New("staking: arithmetic overflow")
)
