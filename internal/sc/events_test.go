package sc

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestExpectedEvent(t *testing.T) {
	gov, err := NewGovernance(common.HexToAddress("0x01"), nil)
	require.NoError(t, err)
	tok, err := NewToken(common.HexToAddress("0x02"), nil)
	require.NoError(t, err)

	pack := func(t *testing.T, method string, args ...interface{}) []byte {
		data, err := gov.abi.Pack(method, args...)
		require.NoError(t, err)
		return data
	}

	tests := []struct {
		name     string
		data     []byte
		expected common.Hash
	}{
		{"castVote", pack(t, "castVote", big.NewInt(1), uint8(0)), GovVoteCastID},
		{"stakeTokens", pack(t, "stakeTokens", big.NewInt(5)), GovTokensStakedID},
		{"unstakeTokens", pack(t, "unstakeTokens", big.NewInt(5)), GovTokensUnstakedID},
		{"createProposal", pack(t, "createProposal", "t", "d", uint8(5), []byte{}, common.Address{}), GovProposalCreatedID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := gov.ExpectedEvent(tt.data)
			require.True(t, ok)
			require.Equal(t, tt.expected, id)
		})
	}

	approve, err := tok.abi.Pack("approve", common.HexToAddress("0x01"), big.NewInt(5))
	require.NoError(t, err)
	id, ok := tok.ExpectedEvent(approve)
	require.True(t, ok)
	require.Equal(t, ERC20ApprovalID, id)

	// reads and short calldata log nothing
	_, ok = gov.ExpectedEvent(pack(t, "totalStaked"))
	require.False(t, ok)
	_, ok = gov.ExpectedEvent([]byte{0x1})
	require.False(t, ok)
	_, ok = tok.ExpectedEvent(pack(t, "castVote", big.NewInt(1), uint8(0)))
	require.False(t, ok)
}

func TestHasEvent(t *testing.T) {
	gov := common.HexToAddress("0x01")
	receipt := &types.Receipt{Logs: []*types.Log{
		{Address: common.HexToAddress("0x02"), Topics: []common.Hash{GovVoteCastID}},
		{Address: gov, Topics: []common.Hash{GovTokensStakedID}},
		{Address: gov},
	}}

	require.True(t, HasEvent(receipt, gov, GovTokensStakedID))
	require.False(t, HasEvent(receipt, gov, GovVoteCastID))
	require.False(t, HasEvent(nil, gov, GovVoteCastID))
}

func TestMarketEvents(t *testing.T) {
	tok, err := NewToken(common.HexToAddress("0x02"), nil)
	require.NoError(t, err)

	for name, id := range map[string]common.Hash{
		"ProjectCreated":      ProjectCreatedID,
		"ProjectValidated":    ProjectValidatedID,
		"TokensIssued":        TokensIssuedID,
		"CarbonCreditCreated": CarbonCreditCreatedID,
		"CarbonCreditListed":  CarbonCreditListedID,
		"CarbonCreditSold":    CarbonCreditSoldID,
	} {
		ev, ok := tok.abi.Events[name]
		require.True(t, ok, name)
		require.Equal(t, ev.ID, id, name)
	}

	pack := func(t *testing.T, method string, args ...interface{}) []byte {
		data, err := tok.abi.Pack(method, args...)
		require.NoError(t, err)
		return data
	}

	tests := []struct {
		name     string
		data     []byte
		expected common.Hash
	}{
		{"createProject", pack(t, "createProject", `{"name":"x"}`, uint8(2), big.NewInt(10)), ProjectCreatedID},
		{"validateProject", pack(t, "validateProject", big.NewInt(1)), ProjectValidatedID},
		{"issueTokens", pack(t, "issueTokens", big.NewInt(1)), TokensIssuedID},
		{"createCarbonCredit", pack(t, "createCarbonCredit", big.NewInt(1), big.NewInt(3)), CarbonCreditCreatedID},
		{"listCarbonCredit", pack(t, "listCarbonCredit", big.NewInt(1), big.NewInt(7)), CarbonCreditListedID},
		{"buyCarbonCredit", pack(t, "buyCarbonCredit", big.NewInt(1)), CarbonCreditSoldID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tok.ExpectedEvent(tt.data)
			require.True(t, ok)
			require.Equal(t, tt.expected, id)
		})
	}

	_, ok := tok.ExpectedEvent(pack(t, "getAvailableCredits"))
	require.False(t, ok)
}
