package staking

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	stakeerr "stakeplatform/core/errors"
)

// Accrual is the outcome of a reward computation.
type Accrual struct {
	Added          *big.Int
	LastRewardDate int64
	Periods        uint64
}

// Accrue computes the reward earned by principal over the whole reward periods
// elapsed since lastRewardDate. The returned date advances by whole periods
// only, so a partial period keeps counting toward the next accrual.
//
// Multiplication happens before the division by 100 and every step is checked
// against 256-bit overflow.
func Accrue(now, lastRewardDate int64, rewardDelay uint64, principal *big.Int, rewardPercentage uint64) (Accrual, error) {
	none := Accrual{Added: big.NewInt(0), LastRewardDate: lastRewardDate}
	if principal != nil && principal.Sign() < 0 {
		return none, fmt.Errorf("staking: negative principal %s", principal)
	}
	if rewardDelay == 0 || now <= lastRewardDate {
		return none, nil
	}
	elapsed := uint64(now - lastRewardDate)
	periods := elapsed / rewardDelay
	if periods == 0 {
		return none, nil
	}

	p, overflow := uint256.FromBig(newBigInt(principal))
	if overflow {
		return none, stakeerr.ErrArithmeticOverflow
	}
	reward := new(uint256.Int)
	if _, overflow := reward.MulOverflow(p, uint256.NewInt(periods)); overflow {
		return none, stakeerr.ErrArithmeticOverflow
	}
	if _, overflow := reward.MulOverflow(reward, uint256.NewInt(rewardPercentage)); overflow {
		return none, stakeerr.ErrArithmeticOverflow
	}
	reward.Div(reward, uint256.NewInt(percentDenominator))

	// periods*rewardDelay <= elapsed, so the sum stays within now.
	return Accrual{
		Added:          reward.ToBig(),
		LastRewardDate: lastRewardDate + int64(periods*rewardDelay),
		Periods:        periods,
	}, nil
}
