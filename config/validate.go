package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	stakeerr "stakeplatform/core/errors"
	"stakeplatform/native/staking"
)

// ValidateStaking checks the [Staking] section. An empty owner is tolerated so
// a freshly generated file loads; callers that start the ledger must call
// RequireOwner as well.
func ValidateStaking(s Staking) error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"Owner", s.Owner},
		{"StakingToken", s.StakingToken},
		{"RewardToken", s.RewardToken},
		{"Custody", s.Custody},
	} {
		if v := strings.TrimSpace(field.value); v != "" && !common.IsHexAddress(v) {
			return fmt.Errorf("staking: %s %q is not a hex address", field.name, field.value)
		}
	}
	if s.RewardDelaySeconds == 0 {
		return fmt.Errorf("staking: RewardDelaySeconds must be positive")
	}
	if s.RewardPercentage > staking.MaxRewardPercentage {
		return fmt.Errorf("staking: RewardPercentage %d exceeds %d: %w", s.RewardPercentage, staking.MaxRewardPercentage, stakeerr.ErrInvalidPercentage)
	}
	return nil
}

// RequireOwner rejects a section whose owner or custody account is unset.
func RequireOwner(s Staking) error {
	if addr := common.HexToAddress(s.Owner); strings.TrimSpace(s.Owner) == "" || addr == (common.Address{}) {
		return fmt.Errorf("staking: Owner must be set")
	}
	if addr := common.HexToAddress(s.Custody); strings.TrimSpace(s.Custody) == "" || addr == (common.Address{}) {
		return fmt.Errorf("staking: Custody must be set")
	}
	return nil
}
