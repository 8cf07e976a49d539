package metrics

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type StakingMetrics struct {
	operations    *prometheus.CounterVec
	configChanges *prometheus.CounterVec
	totalStaked   prometheus.Gauge
	rewardAccrued prometheus.Counter
	rewardPaid    prometheus.Counter
	locked        prometheus.Gauge
}

var (
	stakingOnce     sync.Once
	stakingRegistry *StakingMetrics
)

// Staking returns the process-wide metrics registered on the default registerer.
func Staking() *StakingMetrics {
	stakingOnce.Do(func() {
		stakingRegistry = NewStakingMetrics(prometheus.DefaultRegisterer)
	})
	return stakingRegistry
}

// NewStakingMetrics builds a metrics set registered on reg. A nil registerer
// leaves the collectors unregistered.
func NewStakingMetrics(reg prometheus.Registerer) *StakingMetrics {
	m := &StakingMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staking_operations_total",
			Help: "Count of ledger operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		configChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staking_config_changes_total",
			Help: "Count of committed configuration changes by parameter.",
		}, []string{"param"}),
		totalStaked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "staking_total_staked",
			Help: "Principal currently held in custody across all accounts.",
		}),
		rewardAccrued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "staking_reward_accrued_total",
			Help: "Reward units folded into pending balances.",
		}),
		rewardPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "staking_reward_paid_total",
			Help: "Reward units transferred to claimants.",
		}),
		locked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "staking_locked",
			Help: "1 while the platform is locked, 0 otherwise.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.operations,
			m.configChanges,
			m.totalStaked,
			m.rewardAccrued,
			m.rewardPaid,
			m.locked,
		)
	}
	return m
}

func toFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}

func (m *StakingMetrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	if operation == "" {
		operation = "unknown"
	}
	if outcome == "" {
		outcome = "ok"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

func (m *StakingMetrics) ObserveConfigChange(param string) {
	if m == nil {
		return
	}
	if param == "" {
		param = "unknown"
	}
	m.configChanges.WithLabelValues(param).Inc()
}

// AddStaked moves the custody gauge by delta, which is negative on unstake.
func (m *StakingMetrics) AddStaked(delta *big.Int) {
	if m == nil {
		return
	}
	m.totalStaked.Add(toFloat(delta))
}

func (m *StakingMetrics) SetTotalStaked(total *big.Int) {
	if m == nil {
		return
	}
	m.totalStaked.Set(toFloat(total))
}

func (m *StakingMetrics) AddRewardAccrued(amount *big.Int) {
	if m == nil || amount == nil || amount.Sign() <= 0 {
		return
	}
	m.rewardAccrued.Add(toFloat(amount))
}

func (m *StakingMetrics) AddRewardPaid(amount *big.Int) {
	if m == nil || amount == nil || amount.Sign() <= 0 {
		return
	}
	m.rewardPaid.Add(toFloat(amount))
}

func (m *StakingMetrics) SetLocked(locked bool) {
	if m == nil {
		return
	}
	if locked {
		m.locked.Set(1)
		return
	}
	m.locked.Set(0)
}
