package common

import stakeerr "stakeplatform/core/errors"

// LockView exposes the platform lock flag.
type LockView interface {
	IsLocked() bool
}

// OperationClass groups calls by the lock state they require.
type OperationClass uint8

const (
	// ClassUserAction covers stake, unstake and claim; they need the platform unlocked.
	ClassUserAction OperationClass = iota
	// ClassAssetConfig covers token address changes; they need the platform locked.
	ClassAssetConfig
	// ClassParameter covers rate and delay changes; they run in either state.
	ClassParameter
)

// String renders the class for logs and metric labels.
func (c OperationClass) String() string {
	switch c {
	case ClassUserAction:
		return "user_action"
	case ClassAssetConfig:
		return "asset_config"
	case ClassParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// Guard reports whether an operation of the given class may run in the lock
// state exposed by v. A nil view is treated as unlocked.
func Guard(v LockView, class OperationClass) error {
	locked := v != nil && v.IsLocked()
	switch class {
	case ClassUserAction:
		if locked {
			return stakeerr.ErrLockedOperation
		}
	case ClassAssetConfig:
		if !locked {
			return stakeerr.ErrConfigRequiresLock
		}
	}
	return nil
}
