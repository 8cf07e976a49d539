package state

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"stakeplatform/native/staking"
	"stakeplatform/native/token"
	"stakeplatform/storage"
)

var (
	ownerAddr   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	stakerA     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	stakerB     = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	custodyAddr = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

func TestStakingConfigRoundTrip(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())

	_, ok, err := mgr.StakingConfigGet()
	require.NoError(t, err)
	require.False(t, ok)

	cfg := staking.DefaultConfig(ownerAddr)
	cfg.StakingToken = common.HexToAddress("0x2002")
	cfg.RewardToken = common.HexToAddress("0x1001")
	require.NoError(t, mgr.StakingConfigPut(&cfg))

	got, ok, err := mgr.StakingConfigGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, cfg, *got)
	require.Error(t, mgr.StakingConfigPut(nil))
}

func TestStakingAccountRoundTrip(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())

	_, ok, err := mgr.StakingAccountGet(stakerA)
	require.NoError(t, err)
	require.False(t, ok)

	acct := &staking.AccountState{
		StakedAmount:   new(big.Int).Lsh(big.NewInt(1), 200),
		PendingReward:  big.NewInt(600),
		LastStakeDate:  1_700_000_000,
		LastRewardDate: 1_700_000_600,
	}
	require.NoError(t, mgr.StakingAccountPut(stakerA, acct))

	got, ok, err := mgr.StakingAccountGet(stakerA)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, got.StakedAmount.Cmp(acct.StakedAmount))
	require.Zero(t, got.PendingReward.Cmp(acct.PendingReward))
	require.Equal(t, acct.LastStakeDate, got.LastStakeDate)
	require.Equal(t, acct.LastRewardDate, got.LastRewardDate)

	got.StakedAmount.SetInt64(1)
	again, _, err := mgr.StakingAccountGet(stakerA)
	require.NoError(t, err)
	require.Zero(t, again.StakedAmount.Cmp(acct.StakedAmount))
}

func TestStakingAccountNilAmountsStoredAsZero(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	require.NoError(t, mgr.StakingAccountPut(stakerA, &staking.AccountState{LastStakeDate: -5}))

	got, ok, err := mgr.StakingAccountGet(stakerA)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, got.StakedAmount.Sign())
	require.Zero(t, got.PendingReward.Sign())
	require.Zero(t, got.LastStakeDate)
}

func TestStakingAccountIndexAndTotal(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	require.NoError(t, mgr.StakingAccountPut(stakerB, &staking.AccountState{StakedAmount: big.NewInt(30)}))
	require.NoError(t, mgr.StakingAccountPut(stakerA, &staking.AccountState{StakedAmount: big.NewInt(12)}))
	require.NoError(t, mgr.StakingAccountPut(stakerB, &staking.AccountState{StakedAmount: big.NewInt(8)}))

	addrs, err := mgr.StakingAccounts()
	require.NoError(t, err)
	require.Equal(t, []common.Address{stakerA, stakerB}, addrs)

	total, err := mgr.StakingTotalStaked()
	require.NoError(t, err)
	require.Equal(t, int64(20), total.Int64())
}

func TestStakingAccountDelete(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	require.NoError(t, mgr.StakingAccountPut(stakerA, &staking.AccountState{StakedAmount: big.NewInt(12)}))
	require.NoError(t, mgr.StakingAccountPut(stakerB, &staking.AccountState{StakedAmount: big.NewInt(30)}))

	require.NoError(t, mgr.StakingAccountDelete(stakerA))
	_, ok, err := mgr.StakingAccountGet(stakerA)
	require.NoError(t, err)
	require.False(t, ok)

	addrs, err := mgr.StakingAccounts()
	require.NoError(t, err)
	require.Equal(t, []common.Address{stakerB}, addrs)

	require.NoError(t, mgr.StakingAccountDelete(stakerA))
	total, err := mgr.StakingTotalStaked()
	require.NoError(t, err)
	require.Equal(t, int64(30), total.Int64())
}

func TestManagerWithoutDatabase(t *testing.T) {
	mgr := NewManager(nil)
	_, _, err := mgr.StakingConfigGet()
	require.ErrorIs(t, err, errNilDatabase)
	require.ErrorIs(t, mgr.KVDelete([]byte("x")), errNilDatabase)
}

func TestKVDelete(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)
	require.NoError(t, mgr.KVPut([]byte("k"), uint64(7)))
	require.Equal(t, 1, db.Len())

	var out uint64
	ok, err := mgr.KVGet([]byte("k"), &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), out)

	require.NoError(t, mgr.KVDelete([]byte("k")))
	ok, err = mgr.KVGet([]byte("k"), &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func newLedgerEngine(t *testing.T, mgr *Manager, clock *int64) (*staking.Engine, *token.Ledger, *token.Ledger) {
	t.Helper()
	lp := token.NewLedger(common.HexToAddress("0x2002"), "LP")
	rwd := token.NewLedger(common.HexToAddress("0x1001"), "RWD")
	registry := token.NewRegistry()
	require.NoError(t, registry.Register(lp))
	require.NoError(t, registry.Register(rwd))

	engine := staking.NewEngine()
	engine.SetState(mgr)
	engine.SetAssets(registry)
	engine.SetCustody(custodyAddr)
	engine.SetMetrics(nil)
	engine.SetNowFunc(func() int64 { return *clock })
	require.NoError(t, engine.Initialize(staking.DefaultConfig(ownerAddr)))
	return engine, lp, rwd
}

func TestEngineStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	clock := int64(1_700_000_000)

	db, err := storage.NewLevelDB(path)
	require.NoError(t, err)
	engine, lp, rwd := newLedgerEngine(t, NewManager(db), &clock)

	require.NoError(t, engine.SetStakingToken(ownerAddr, lp.Address()))
	require.NoError(t, engine.SetRewardToken(ownerAddr, rwd.Address()))
	require.NoError(t, engine.SetRewardPercentage(ownerAddr, 10))
	require.NoError(t, engine.SetLock(ownerAddr, false))
	require.NoError(t, lp.Mint(stakerA, big.NewInt(3000)))
	require.NoError(t, lp.Approve(stakerA, custodyAddr, big.NewInt(3000)))
	require.NoError(t, engine.Stake(stakerA, big.NewInt(3000)))
	db.Close()

	clock += 1200
	db, err = storage.NewLevelDB(path)
	require.NoError(t, err)
	defer db.Close()
	mgr := NewManager(db)
	restored, _, rwd2 := newLedgerEngine(t, mgr, &clock)
	require.NoError(t, rwd2.Mint(custodyAddr, big.NewInt(10_000)))

	cfg, err := restored.Config()
	require.NoError(t, err)
	require.False(t, cfg.Locked)
	require.Equal(t, uint64(10), cfg.RewardPercentage)

	details, err := restored.GetDetails(stakerA, stakerA)
	require.NoError(t, err)
	require.Equal(t, int64(3000), details.StakedAmount.Int64())

	paid, err := restored.Claim(stakerA)
	require.NoError(t, err)
	require.Equal(t, int64(600), paid.Int64())

	total, err := mgr.StakingTotalStaked()
	require.NoError(t, err)
	require.Equal(t, int64(3000), total.Int64())
}
