package metrics

import (
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStakingMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStakingMetrics(reg)

	m.ObserveOperation("stake", "ok")
	m.ObserveOperation("stake", "ok")
	m.ObserveOperation("claim", "nothing_to_claim")
	m.ObserveOperation("", "")
	m.ObserveConfigChange("reward_percentage")
	m.AddStaked(big.NewInt(3000))
	m.AddStaked(big.NewInt(-1000))
	m.AddRewardAccrued(big.NewInt(600))
	m.AddRewardAccrued(big.NewInt(-5))
	m.AddRewardPaid(big.NewInt(600))
	m.SetLocked(true)

	if got := testutil.ToFloat64(m.operations.WithLabelValues("stake", "ok")); got != 2 {
		t.Fatalf("expected 2 stake operations, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("claim", "nothing_to_claim")); got != 1 {
		t.Fatalf("expected 1 rejected claim, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("unknown", "ok")); got != 1 {
		t.Fatalf("expected defaulted labels, got %v", got)
	}
	if got := testutil.ToFloat64(m.configChanges.WithLabelValues("reward_percentage")); got != 1 {
		t.Fatalf("expected 1 config change, got %v", got)
	}
	if got := testutil.ToFloat64(m.totalStaked); got != 2000 {
		t.Fatalf("expected 2000 staked, got %v", got)
	}
	if got := testutil.ToFloat64(m.rewardAccrued); got != 600 {
		t.Fatalf("expected 600 accrued, got %v", got)
	}
	if got := testutil.ToFloat64(m.rewardPaid); got != 600 {
		t.Fatalf("expected 600 paid, got %v", got)
	}
	if got := testutil.ToFloat64(m.locked); got != 1 {
		t.Fatalf("expected locked gauge 1, got %v", got)
	}
	m.SetTotalStaked(big.NewInt(7))
	m.SetLocked(false)
	if testutil.ToFloat64(m.totalStaked) != 7 || testutil.ToFloat64(m.locked) != 0 {
		t.Fatalf("gauge setters did not apply")
	}
}

func TestNilStakingMetricsIsSafe(t *testing.T) {
	var m *StakingMetrics
	m.ObserveOperation("stake", "ok")
	m.ObserveConfigChange("lock")
	m.AddStaked(big.NewInt(1))
	m.SetTotalStaked(big.NewInt(1))
	m.AddRewardAccrued(big.NewInt(1))
	m.AddRewardPaid(big.NewInt(1))
	m.SetLocked(true)
}

func TestStakingSingleton(t *testing.T) {
	if Staking() != Staking() {
		t.Fatalf("expected singleton metrics")
	}
}
