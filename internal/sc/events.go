package sc

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	ERC20Approval = "Approval(address,address,uint256)"

	GovProposalCreated = "ProposalCreated(uint256,address,string,uint8,uint256,uint256)"
	GovVoteCast        = "VoteCast(uint256,address,uint8,uint256)"
	GovTokensStaked    = "TokensStaked(address,uint256)"
	GovTokensUnstaked  = "TokensUnstaked(address,uint256)"

	ProjectCreated      = "ProjectCreated(uint256,address,uint8)"
	ProjectValidated    = "ProjectValidated(uint256,address)"
	TokensIssued        = "TokensIssued(uint256,address,uint256)"
	CarbonCreditCreated = "CarbonCreditCreated(uint256,address,uint256)"
	CarbonCreditListed  = "CarbonCreditListed(uint256,uint256)"
	CarbonCreditSold    = "CarbonCreditSold(uint256,address,address,uint256)"
)

var (
	ERC20ApprovalID = crypto.Keccak256Hash([]byte(ERC20Approval))

	GovProposalCreatedID = crypto.Keccak256Hash([]byte(GovProposalCreated))
	GovVoteCastID        = crypto.Keccak256Hash([]byte(GovVoteCast))
	GovTokensStakedID    = crypto.Keccak256Hash([]byte(GovTokensStaked))
	GovTokensUnstakedID  = crypto.Keccak256Hash([]byte(GovTokensUnstaked))

	ProjectCreatedID      = crypto.Keccak256Hash([]byte(ProjectCreated))
	ProjectValidatedID    = crypto.Keccak256Hash([]byte(ProjectValidated))
	TokensIssuedID        = crypto.Keccak256Hash([]byte(TokensIssued))
	CarbonCreditCreatedID = crypto.Keccak256Hash([]byte(CarbonCreditCreated))
	CarbonCreditListedID  = crypto.Keccak256Hash([]byte(CarbonCreditListed))
	CarbonCreditSoldID    = crypto.Keccak256Hash([]byte(CarbonCreditSold))
)

// events a successful call to each write method logs
var (
	governanceEvents = map[string]common.Hash{
		"castVote":       GovVoteCastID,
		"createProposal": GovProposalCreatedID,
		"stakeTokens":    GovTokensStakedID,
		"unstakeTokens":  GovTokensUnstakedID,
	}
	tokenEvents = map[string]common.Hash{
		"approve":            ERC20ApprovalID,
		"createProject":      ProjectCreatedID,
		"validateProject":    ProjectValidatedID,
		"issueTokens":        TokensIssuedID,
		"createCarbonCredit": CarbonCreditCreatedID,
		"listCarbonCredit":   CarbonCreditListedID,
		"buyCarbonCredit":    CarbonCreditSoldID,
	}
)

func expectedEvent(parsed *abi.ABI, events map[string]common.Hash, data []byte) (common.Hash, bool) {
	if len(data) < 4 {
		return common.Hash{}, false
	}

	m, err := parsed.MethodById(data[:4])
	if err != nil {
		return common.Hash{}, false
	}

	id, ok := events[m.Name]
	return id, ok
}

// ExpectedEvent returns the topic a successful governance call with this
// calldata logs. ok is false for calls that log nothing we track.
func (g *Governance) ExpectedEvent(data []byte) (common.Hash, bool) {
	return expectedEvent(g.abi, governanceEvents, data)
}

// ExpectedEvent is the token counterpart of Governance.ExpectedEvent.
func (t *Token) ExpectedEvent(data []byte) (common.Hash, bool) {
	return expectedEvent(t.abi, tokenEvents, data)
}

// HasEvent reports whether receipt holds a log with topic emitted by address.
func HasEvent(receipt *types.Receipt, address common.Address, topic common.Hash) bool {
	if receipt == nil {
		return false
	}

	for _, l := range receipt.Logs {
		if l.Address == address && len(l.Topics) > 0 && l.Topics[0] == topic {
			return true
		}
	}
	return false
}
