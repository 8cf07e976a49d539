package staking

import (
	"github.com/ethereum/go-ethereum/common"

	stakeerr "stakeplatform/core/errors"
)

// authorizeOwner admits only the configured owner.
func authorizeOwner(caller common.Address, cfg *GlobalConfig) error {
	if cfg == nil || caller != cfg.Owner {
		return stakeerr.ErrAccessDenied
	}
	return nil
}

// authorizeRead lets an account read its own record; anyone else needs to be the owner.
func authorizeRead(caller, target common.Address, cfg *GlobalConfig) error {
	if caller == target {
		return nil
	}
	return authorizeOwner(caller, cfg)
}
