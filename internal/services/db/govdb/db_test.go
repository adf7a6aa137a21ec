//go:build db_test
// +build db_test

package govdb

import (
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	connStr := os.Getenv("GOVDB_TEST_DSN")
	if connStr == "" {
		connStr = "host=localhost port=5432 user=postgres password=postgres dbname=governance sslmode=disable"
	}

	gdb, err := NewDB(big.NewInt(31337), connStr)
	require.NoError(t, err)
	gdb.SetTesting()
	t.Cleanup(func() { gdb.Close() })

	return gdb
}

func TestProposalSnapshots(t *testing.T) {
	gdb := testDB(t)

	gov := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	forVotes, _ := new(big.Int).SetString("2500000000000000000000000", 10)
	start := time.Unix(1_700_000_000, 0)

	p := &governance.RawProposal{
		ID:             big.NewInt(12),
		Creator:        common.HexToAddress("0x480fbe37526226b6c6e2a7afa449cdf661939d2f"),
		Title:          "Mangrove restoration",
		Description:    "Replant 40ha",
		Category:       4,
		StartTime:      big.NewInt(start.Unix()),
		EndTime:        big.NewInt(start.Add(7 * 24 * time.Hour).Unix()),
		ForVotes:       forVotes,
		AgainstVotes:   big.NewInt(0),
		AbstainVotes:   big.NewInt(0),
		TargetContract: common.Address{},
	}

	require.NoError(t, gdb.ProposalsDB.Upsert(gov, p))

	p.Status = 1
	p.Executed = true
	require.NoError(t, gdb.ProposalsDB.Upsert(gov, p))

	s, err := gdb.ProposalsDB.Get(gov, big.NewInt(12))
	require.NoError(t, err)
	require.Equal(t, uint8(1), s.Proposal.Status)
	require.True(t, s.Proposal.Executed)
	require.Equal(t, forVotes.String(), s.Proposal.ForVotes.String())
	require.Equal(t, start.Unix(), s.Proposal.StartTime.Int64())

	_, err = gdb.ProposalsDB.Get(gov, big.NewInt(13))
	require.ErrorIs(t, err, ErrNotFound)

	list, err := gdb.ProposalsDB.List(gov, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Mangrove restoration", list[0].Proposal.Title)
}
