package sc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGovernanceABI(t *testing.T) {
	gABI, err := GovernanceABI()
	require.NoError(t, err)

	for _, m := range []string{
		"getStakedBalance", "totalStaked", "getVotingPower", "getActiveProposals",
		"getProposalsByStatus", "getProposal", "getVoteInfo", "stakeTokens",
		"unstakeTokens", "castVote", "createProposal", "getProposalCount",
		"getProposalsByCategory", "getUserDelegate",
	} {
		_, ok := gABI.Methods[m]
		require.True(t, ok, "missing method %s", m)
	}

	require.Equal(t, gABI.Events["ProposalCreated"].ID, GovProposalCreatedID)
	require.Equal(t, gABI.Events["VoteCast"].ID, GovVoteCastID)
	require.Equal(t, gABI.Events["TokensStaked"].ID, GovTokensStakedID)
	require.Equal(t, gABI.Events["TokensUnstaked"].ID, GovTokensUnstakedID)

	require.Len(t, gABI.Methods["createProposal"].Inputs, 5)
	require.Len(t, gABI.Methods["getVoteInfo"].Outputs, 3)
}

func TestTokenABI(t *testing.T) {
	tABI, err := TokenABI()
	require.NoError(t, err)

	for _, m := range []string{"balanceOf", "approve", "allowance"} {
		_, ok := tABI.Methods[m]
		require.True(t, ok, "missing method %s", m)
	}

	require.Equal(t, tABI.Events["Approval"].ID, ERC20ApprovalID)
}
