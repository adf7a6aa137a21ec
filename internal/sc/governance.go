package sc

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/oceanguard/govclient/pkg/governance"
)

// Governance is a binding for OceanGuardGovernance.
type Governance struct {
	Address  common.Address
	abi      *abi.ABI
	contract *bind.BoundContract
}

func NewGovernance(address common.Address, backend bind.ContractBackend) (*Governance, error) {
	parsed, err := GovernanceABI()
	if err != nil {
		return nil, err
	}

	return &Governance{
		Address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, *parsed, backend, backend, backend),
	}, nil
}

func (g *Governance) callBig(opts *bind.CallOpts, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	err := g.contract.Call(opts, &out, method, params...)
	if err != nil {
		return nil, err
	}

	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (g *Governance) callIDs(opts *bind.CallOpts, method string, params ...interface{}) ([]*big.Int, error) {
	var out []interface{}
	err := g.contract.Call(opts, &out, method, params...)
	if err != nil {
		return nil, err
	}

	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

func (g *Governance) GetStakedBalance(opts *bind.CallOpts, user common.Address) (*big.Int, error) {
	return g.callBig(opts, "getStakedBalance", user)
}

func (g *Governance) TotalStaked(opts *bind.CallOpts) (*big.Int, error) {
	return g.callBig(opts, "totalStaked")
}

func (g *Governance) GetVotingPower(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	return g.callBig(opts, "getVotingPower", account)
}

func (g *Governance) GetProposalCount(opts *bind.CallOpts) (*big.Int, error) {
	return g.callBig(opts, "getProposalCount")
}

func (g *Governance) GetUserDelegate(opts *bind.CallOpts, user common.Address) (common.Address, error) {
	var out []interface{}
	err := g.contract.Call(opts, &out, "getUserDelegate", user)
	if err != nil {
		return common.Address{}, err
	}

	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (g *Governance) GetActiveProposals(opts *bind.CallOpts) ([]*big.Int, error) {
	return g.callIDs(opts, "getActiveProposals")
}

func (g *Governance) GetProposalsByStatus(opts *bind.CallOpts, status uint8) ([]*big.Int, error) {
	return g.callIDs(opts, "getProposalsByStatus", status)
}

func (g *Governance) GetProposalsByCategory(opts *bind.CallOpts, category uint8) ([]*big.Int, error) {
	return g.callIDs(opts, "getProposalsByCategory", category)
}

func (g *Governance) GetProposal(opts *bind.CallOpts, id *big.Int) (*governance.RawProposal, error) {
	var out []interface{}
	err := g.contract.Call(opts, &out, "getProposal", id)
	if err != nil {
		return nil, err
	}

	p := abi.ConvertType(out[0], new(proposalTuple)).(*proposalTuple)

	return &governance.RawProposal{
		ID:             p.Id,
		Creator:        p.Creator,
		Title:          p.Title,
		Description:    p.Description,
		Category:       p.Category,
		Status:         p.Status,
		StartTime:      p.StartTime,
		EndTime:        p.EndTime,
		ForVotes:       p.ForVotes,
		AgainstVotes:   p.AgainstVotes,
		AbstainVotes:   p.AbstainVotes,
		Executed:       p.Executed,
		TargetContract: p.TargetContract,
	}, nil
}

func (g *Governance) GetVoteInfo(opts *bind.CallOpts, id *big.Int, voter common.Address) (*governance.RawVoteInfo, error) {
	var out []interface{}
	err := g.contract.Call(opts, &out, "getVoteInfo", id, voter)
	if err != nil {
		return nil, err
	}

	return &governance.RawVoteInfo{
		HasVoted: *abi.ConvertType(out[0], new(bool)).(*bool),
		VoteType: *abi.ConvertType(out[1], new(uint8)).(*uint8),
		Weight:   *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
	}, nil
}

func (g *Governance) StakeTokens(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return g.contract.Transact(opts, "stakeTokens", amount)
}

func (g *Governance) UnstakeTokens(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return g.contract.Transact(opts, "unstakeTokens", amount)
}

func (g *Governance) CastVote(opts *bind.TransactOpts, id *big.Int, voteType uint8) (*types.Transaction, error) {
	return g.contract.Transact(opts, "castVote", id, voteType)
}

func (g *Governance) CreateProposal(opts *bind.TransactOpts, title, description string, category uint8, executionData []byte, target common.Address) (*types.Transaction, error) {
	return g.contract.Transact(opts, "createProposal", title, description, category, executionData, target)
}
