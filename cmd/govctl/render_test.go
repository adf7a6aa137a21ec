package main

import (
	"bytes"
	"context"
	"math/big"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/oceanguard/govclient/internal/chaintest"
	"github.com/oceanguard/govclient/internal/wallet"
	"github.com/oceanguard/govclient/pkg/commands"
	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/oceanguard/govclient/pkg/viewmodel"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func proposal(t *testing.T, id uint64) *governance.Proposal {
	now := time.Unix(1_700_000_000, 0)
	p, err := governance.FormatProposal(chaintest.RawProposal(id, now), now)
	require.NoError(t, err)
	return p
}

func TestRenderProposals(t *testing.T) {
	var buf bytes.Buffer
	renderProposals(&buf, []*governance.Proposal{proposal(t, 3), proposal(t, 1)})

	out := buf.String()
	require.Contains(t, out, "Proposal 3")
	require.Contains(t, out, "Infrastructure")
	require.Contains(t, out, "75%")
	require.Contains(t, out, "7 days")
	require.Less(t, strings.Index(out, "Proposal 3"), strings.Index(out, "Proposal 1"))

	buf.Reset()
	renderProposals(&buf, nil)
	require.Equal(t, "no proposals\n", buf.String())
}

func TestRenderProposal(t *testing.T) {
	p := proposal(t, 9)

	var buf bytes.Buffer
	renderProposal(&buf, p, nil)

	out := buf.String()
	require.Contains(t, out, "#9 Proposal 9")
	require.Contains(t, out, "For:      3 (75%)")
	require.Contains(t, out, chaintest.Creator.Hex())
	require.NotContains(t, out, "Target:")
	require.NotContains(t, out, "(you)")

	buf.Reset()
	creator := chaintest.Creator
	renderProposal(&buf, p, &creator)
	require.Contains(t, buf.String(), chaintest.Creator.Hex()+" (you)")

	buf.Reset()
	other := common.HexToAddress("0x1234567890123456789012345678901234567890")
	renderProposal(&buf, p, &other)
	require.NotContains(t, buf.String(), "(you)")
}

func TestRenderVoteInfo(t *testing.T) {
	var buf bytes.Buffer
	renderVoteInfo(&buf, 2, governance.EmptyVoteInfo())
	require.Equal(t, "not voted on #2 (weight 0)\n", buf.String())

	vt := governance.VoteAbstain
	buf.Reset()
	renderVoteInfo(&buf, 2, governance.VoteInfo{HasVoted: true, VoteType: &vt, Weight: "12.5"})
	require.Equal(t, "voted Abstain on #2 with weight 12.5\n", buf.String())
}

func TestRenderCommand(t *testing.T) {
	hash := common.HexToHash("0xabc")

	tests := []struct {
		name     string
		state    commands.State
		expected string
	}{
		{"success", commands.State{IsSuccess: true, TxHash: &hash}, "✓ castVote " + hash.Hex() + "\n"},
		{"error", commands.State{IsError: true, Error: "Wallet not connected"}, "✗ castVote: Wallet not connected\n"},
		{"approving", commands.State{IsLoading: true, IsApproving: true, Phase: commands.PhaseApproving}, "… castVote (approving)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			renderCommand(&buf, commands.CastVote, tt.state)
			require.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestRenderStatus(t *testing.T) {
	addr := chaintest.Creator

	var buf bytes.Buffer
	renderStatus(&buf, viewmodel.Snapshot{
		Address:       &addr,
		Connected:     true,
		TokenBalance:  viewmodel.Read[string]{Value: "100"},
		StakedBalance: viewmodel.Read[string]{Value: "0", Loading: true},
		VotingPower:   viewmodel.Read[string]{Value: "5", Error: "rpc down"},
		TotalStaked:   viewmodel.Read[string]{Value: "1000"},
	})

	out := buf.String()
	require.Contains(t, out, "0x480F…9D2f")
	require.Contains(t, out, "Balance: 100\n")
	require.Contains(t, out, "Staked:  0 (loading)\n")
	require.Contains(t, out, "Power:   5 (rpc down)\n")
	require.Contains(t, out, "Active:  0 proposals\n")

	buf.Reset()
	renderStatus(&buf, viewmodel.Snapshot{})
	require.Contains(t, buf.String(), "not connected")
}

func TestSettled(t *testing.T) {
	require.True(t, settled(viewmodel.Snapshot{}))
	require.False(t, settled(viewmodel.Snapshot{ActiveProposals: viewmodel.Read[viewmodel.ProposalList]{Loading: true}}))
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	require.Equal(t, uint64(42), id)

	_, err = parseID("-1")
	require.Error(t, err)
}

func TestKeyCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "keys")

	cmd := keyCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--file", file})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "address: 0x")

	w, err := wallet.FromFile(big.NewInt(1), file)
	require.NoError(t, err)

	accounts, err := w.RequestAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Contains(t, out.String(), accounts[0].Hex())
}
