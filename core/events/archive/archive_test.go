package archive

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"stakeplatform/core/events"
)

func openTestArchive(t *testing.T, path string) *Archive {
	t.Helper()
	a, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestArchivePersistsEventsInOrder(t *testing.T) {
	a := openTestArchive(t, filepath.Join(t.TempDir(), "events.db"))
	fixed := time.Unix(1_700_000_000, 0).UTC()
	a.SetNowFunc(func() time.Time { return fixed })

	a.Emit(events.RewardRateChanged{Percentage: 15})
	a.Emit(events.TokenChanged{IsRewardToken: false, Old: common.HexToAddress("0x01"), New: common.HexToAddress("0x02")})
	a.Emit(events.RewardClaimed{Account: common.HexToAddress("0xaa"), Paid: big.NewInt(600), Periods: 2})
	require.Zero(t, a.Failures())

	records, err := a.List(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		require.Equal(t, uint64(i+1), rec.Seq)
		require.True(t, rec.CreatedAt.Equal(fixed))
	}

	evt, err := records[1].Decode()
	require.NoError(t, err)
	require.Equal(t, events.TypeTokenChanged, evt.Type)
	require.Equal(t, "false", evt.Attributes["isRewardToken"])
	require.Equal(t, common.HexToAddress("0x02").Hex(), evt.Attributes["new"])

	tail, err := a.List(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	require.Equal(t, events.TypeRewardClaimed, tail[0].Type)
}

func TestArchiveResumesSequenceAfterReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")

	first, err := Open(path)
	require.NoError(t, err)
	first.Emit(events.LockChanged{Locked: false})
	first.Emit(events.LockChanged{Locked: true})
	require.NoError(t, first.Close())

	second := openTestArchive(t, path)
	rec, err := second.Append(events.UnstakeDelayChanged{Delay: 60})
	require.NoError(t, err)
	require.Equal(t, uint64(3), rec.Seq)
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open("  ")
	require.ErrorIs(t, err, ErrDSNRequired)
}

func TestArchiveAsEmitterFanOut(t *testing.T) {
	a := openTestArchive(t, filepath.Join(t.TempDir(), "events.db"))
	log := events.NewLog()
	emitter := events.Multi(log, a)

	emitter.Emit(events.RewardDelayChanged{Delay: 15})

	require.Equal(t, 1, log.Len())
	records, err := a.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, events.TypeRewardDelayChanged, records[0].Type)
}
