package viewmodel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oceanguard/govclient/internal/chaintest"
	"github.com/oceanguard/govclient/pkg/commands"
	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var (
	alice = common.HexToAddress("0x480fbe37526226b6c6e2a7afa449cdf661939d2f")
	bob   = common.HexToAddress("0x1234567890123456789012345678901234567890")
	start = time.Unix(1_700_000_000, 0)
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func newChain() *chaintest.Chain {
	chain := chaintest.New()
	chain.SetBalance(alice, chaintest.Tokens(100))
	chain.SetBalance(bob, chaintest.Tokens(7))
	chain.SetStaked(alice, chaintest.Tokens(40))
	chain.SetVotingPower(alice, chaintest.Tokens(40))
	chain.SetTotalStaked(chaintest.Tokens(5000))

	for _, id := range []uint64{1, 2, 3} {
		chain.AddProposal(chaintest.RawProposal(id, start))
	}
	chain.SetActive(3, 1)
	chain.SetByStatus(governance.StatusActive, 3, 1)
	chain.SetByStatus(governance.StatusPassed, 2)

	return chain
}

func TestDisconnectedZeroState(t *testing.T) {
	chain := newChain()
	vm := New(chain, chaintest.NewWallet(alice), WithStatus(governance.StatusPassed))
	require.NoError(t, vm.Start(context.Background()))
	defer vm.Close()

	eventually(t, func() bool { return vm.TotalStaked.Snapshot().Value == "5000" })
	eventually(t, func() bool { return len(vm.ActiveProposals.Snapshot().Value) == 2 })
	eventually(t, func() bool { return len(vm.ProposalsByStatus.Snapshot().Value) == 1 })

	s := vm.Snapshot()
	require.False(t, s.Connected)
	require.Nil(t, s.Address)
	require.Equal(t, "0", s.TokenBalance.Value)
	require.Equal(t, "0", s.VotingPower.Value)
	require.Equal(t, uint64(3), s.ActiveProposals.Value[0].ID)
	require.Equal(t, uint64(2), s.ProposalsByStatus.Value[0].ID)
	require.Zero(t, chain.Count("BalanceOf"))

	info, err := vm.VoteInfo(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, governance.EmptyVoteInfo(), info)
}

func TestConnectStartsAddressReads(t *testing.T) {
	wallet := chaintest.NewWallet(alice)
	vm := New(newChain(), wallet)
	require.NoError(t, vm.Start(context.Background()))
	defer vm.Close()

	require.True(t, vm.Connect(context.Background()))

	eventually(t, func() bool { return vm.TokenBalance.Snapshot().Value == "100" })
	eventually(t, func() bool { return vm.StakedBalance.Snapshot().Value == "40" })
	eventually(t, func() bool { return vm.VotingPower.Snapshot().Value == "40" })

	// switching accounts re-keys the reads
	wallet.Emit(bob)
	eventually(t, func() bool { return vm.TokenBalance.Snapshot().Value == "7" })
	require.Equal(t, bob, *vm.Snapshot().Address)

	wallet.Emit()
	eventually(t, func() bool { return !vm.Snapshot().Connected })
	eventually(t, func() bool { return vm.TokenBalance.Snapshot().Value == "0" })
}

func TestReadErrorRetainsValue(t *testing.T) {
	chain := newChain()
	vm := New(chain, chaintest.NewWallet(alice))
	require.NoError(t, vm.Start(context.Background()))
	defer vm.Close()

	eventually(t, func() bool { return vm.TotalStaked.Snapshot().Value == "5000" })

	chain.Fail("TotalStaked", errors.New("rate limited"))
	vm.Refresh()
	eventually(t, func() bool { return vm.Snapshot().TotalStaked.Error == "rate limited" })
	require.Equal(t, "5000", vm.Snapshot().TotalStaked.Value)

	chain.Fail("TotalStaked", nil)
	chain.SetTotalStaked(chaintest.Tokens(6000))
	vm.Refresh()
	eventually(t, func() bool { return vm.Snapshot().TotalStaked.Value == "6000" })
	require.Empty(t, vm.Snapshot().TotalStaked.Error)
}

func TestIntervalPolling(t *testing.T) {
	chain := newChain()
	vm := New(chain, chaintest.NewWallet(alice), WithIntervals(10*time.Millisecond, 20*time.Millisecond))
	require.NoError(t, vm.Start(context.Background()))
	defer vm.Close()

	eventually(t, func() bool { return chain.Count("TotalStaked") >= 3 })
	eventually(t, func() bool { return chain.Count("ActiveProposals") >= 3 })
}

func TestWriteRefreshesReads(t *testing.T) {
	chain := newChain()
	wallet := chaintest.NewWallet(alice)
	vm := New(chain, wallet)
	require.NoError(t, vm.Start(context.Background()))
	defer vm.Close()

	require.True(t, vm.Connect(context.Background()))
	eventually(t, func() bool { return vm.StakedBalance.Snapshot().Value == "40" })

	chain.SetStaked(alice, chaintest.Tokens(50))
	require.NoError(t, vm.StakeTokens(context.Background(), "10"))

	eventually(t, func() bool { return vm.StakedBalance.Snapshot().Value == "50" })
	require.True(t, vm.Snapshot().Commands[commands.StakeTokens].IsSuccess)
}

func TestSetStatus(t *testing.T) {
	chain := newChain()
	vm := New(chain, chaintest.NewWallet(alice))
	require.NoError(t, vm.Start(context.Background()))
	defer vm.Close()

	eventually(t, func() bool { return len(vm.ProposalsByStatus.Snapshot().Value) == 2 })

	vm.SetStatus(governance.StatusPassed)
	require.Equal(t, governance.StatusPassed, vm.Status())
	eventually(t, func() bool {
		v := vm.ProposalsByStatus.Snapshot().Value
		return len(v) == 1 && v[0].ID == 2
	})
}

func TestCloseStopsPolling(t *testing.T) {
	chain := newChain()
	vm := New(chain, chaintest.NewWallet(alice), WithIntervals(5*time.Millisecond, 5*time.Millisecond))
	require.NoError(t, vm.Start(context.Background()))
	require.True(t, vm.Connect(context.Background()))

	eventually(t, func() bool { return chain.Count("BalanceOf") >= 2 })

	vm.Close()
	vm.Close()

	n := len(chain.Calls())
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, n, len(chain.Calls()))

	require.ErrorIs(t, vm.Start(context.Background()), ErrClosed)
}

func TestCloseWithoutStart(t *testing.T) {
	vm := New(newChain(), nil)
	vm.Close()
}
