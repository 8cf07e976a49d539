package state

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"stakeplatform/native/staking"
)

type storedStakingConfig struct {
	Owner            common.Address
	StakingToken     common.Address
	RewardToken      common.Address
	RewardPercentage uint64
	RewardDelay      uint64
	UnstakeDelay     uint64
	Locked           bool
}

func newStoredStakingConfig(cfg *staking.GlobalConfig) *storedStakingConfig {
	return &storedStakingConfig{
		Owner:            cfg.Owner,
		StakingToken:     cfg.StakingToken,
		RewardToken:      cfg.RewardToken,
		RewardPercentage: cfg.RewardPercentage,
		RewardDelay:      cfg.RewardDelay,
		UnstakeDelay:     cfg.UnstakeDelay,
		Locked:           cfg.Locked,
	}
}

func (s *storedStakingConfig) toConfig() *staking.GlobalConfig {
	return &staking.GlobalConfig{
		Owner:            s.Owner,
		StakingToken:     s.StakingToken,
		RewardToken:      s.RewardToken,
		RewardPercentage: s.RewardPercentage,
		RewardDelay:      s.RewardDelay,
		UnstakeDelay:     s.UnstakeDelay,
		Locked:           s.Locked,
	}
}

// storedStakingAccount is the RLP layout of an account record. Timestamps are
// unsigned since RLP has no signed integers.
type storedStakingAccount struct {
	StakedAmount   *big.Int
	PendingReward  *big.Int
	LastStakeDate  uint64
	LastRewardDate uint64
}

func clampUnix(ts int64) uint64 {
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func copyAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func newStoredStakingAccount(acct *staking.AccountState) *storedStakingAccount {
	return &storedStakingAccount{
		StakedAmount:   copyAmount(acct.StakedAmount),
		PendingReward:  copyAmount(acct.PendingReward),
		LastStakeDate:  clampUnix(acct.LastStakeDate),
		LastRewardDate: clampUnix(acct.LastRewardDate),
	}
}

func (s *storedStakingAccount) toAccount() *staking.AccountState {
	return &staking.AccountState{
		StakedAmount:   copyAmount(s.StakedAmount),
		PendingReward:  copyAmount(s.PendingReward),
		LastStakeDate:  int64(s.LastStakeDate),
		LastRewardDate: int64(s.LastRewardDate),
	}
}

func stakingAccountKey(addr common.Address) []byte {
	buf := make([]byte, len(stakingAccountPrefix)+common.AddressLength)
	copy(buf, stakingAccountPrefix)
	copy(buf[len(stakingAccountPrefix):], addr.Bytes())
	return buf
}

// StakingConfigGet loads the persisted global staking configuration.
func (m *Manager) StakingConfigGet() (*staking.GlobalConfig, bool, error) {
	var stored storedStakingConfig
	ok, err := m.KVGet(stakingConfigKeyBytes, &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return stored.toConfig(), true, nil
}

// StakingConfigPut persists the global staking configuration.
func (m *Manager) StakingConfigPut(cfg *staking.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("state: nil staking config")
	}
	return m.KVPut(stakingConfigKeyBytes, newStoredStakingConfig(cfg))
}

// StakingAccountGet loads the record for addr. The boolean is false when the
// account never staked.
func (m *Manager) StakingAccountGet(addr common.Address) (*staking.AccountState, bool, error) {
	var stored storedStakingAccount
	ok, err := m.KVGet(stakingAccountKey(addr), &stored)
	if err != nil || !ok {
		return nil, ok, err
	}
	return stored.toAccount(), true, nil
}

// StakingAccountPut persists the record for addr and adds the address to the
// account index on first write.
func (m *Manager) StakingAccountPut(addr common.Address, acct *staking.AccountState) error {
	if acct == nil {
		return fmt.Errorf("state: nil staking account")
	}
	if err := m.KVPut(stakingAccountKey(addr), newStoredStakingAccount(acct)); err != nil {
		return err
	}
	return m.indexStakingAccount(addr)
}

func (m *Manager) indexStakingAccount(addr common.Address) error {
	m.indexMu.Lock()
	defer m.indexMu.Unlock()
	list, err := m.loadStakingIndex()
	if err != nil {
		return err
	}
	i := sort.Search(len(list), func(i int) bool { return bytes.Compare(list[i][:], addr[:]) >= 0 })
	if i < len(list) && list[i] == addr {
		return nil
	}
	list = append(list, common.Address{})
	copy(list[i+1:], list[i:])
	list[i] = addr
	return m.KVPut(stakingAccountIndex, list)
}

// StakingAccountDelete removes the record for addr and drops the address from
// the account index. Deleting an unknown account is a no-op.
func (m *Manager) StakingAccountDelete(addr common.Address) error {
	if err := m.KVDelete(stakingAccountKey(addr)); err != nil {
		return err
	}
	m.indexMu.Lock()
	defer m.indexMu.Unlock()
	list, err := m.loadStakingIndex()
	if err != nil {
		return err
	}
	i := sort.Search(len(list), func(i int) bool { return bytes.Compare(list[i][:], addr[:]) >= 0 })
	if i == len(list) || list[i] != addr {
		return nil
	}
	list = append(list[:i], list[i+1:]...)
	return m.KVPut(stakingAccountIndex, list)
}

func (m *Manager) loadStakingIndex() ([]common.Address, error) {
	var list []common.Address
	if _, err := m.KVGet(stakingAccountIndex, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// StakingAccounts returns every address that ever held a record, in byte order.
func (m *Manager) StakingAccounts() ([]common.Address, error) {
	m.indexMu.Lock()
	defer m.indexMu.Unlock()
	return m.loadStakingIndex()
}

// StakingTotalStaked sums the principal currently held across all accounts.
func (m *Manager) StakingTotalStaked() (*big.Int, error) {
	addrs, err := m.StakingAccounts()
	if err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	for _, addr := range addrs {
		acct, ok, err := m.StakingAccountGet(addr)
		if err != nil {
			return nil, err
		}
		if ok {
			total.Add(total, acct.StakedAmount)
		}
	}
	return total, nil
}
