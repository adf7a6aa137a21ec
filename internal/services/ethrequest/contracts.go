package ethrequest

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/oceanguard/govclient/internal/sc"
	"github.com/oceanguard/govclient/pkg/governance"
)

var ErrEventMissing = errors.New("transaction confirmed without its expected event")

// Contracts binds the token and governance contracts to one backend. It is
// built once per backend and shared by every read and write.
type Contracts struct {
	backend Backend

	Governance *sc.Governance
	Token      *sc.Token
}

func NewContracts(backend Backend, governanceAddr, tokenAddr string) (*Contracts, error) {
	if !common.IsHexAddress(governanceAddr) {
		return nil, fmt.Errorf("invalid governance address: %q", governanceAddr)
	}
	if !common.IsHexAddress(tokenAddr) {
		return nil, fmt.Errorf("invalid token address: %q", tokenAddr)
	}

	gov, err := sc.NewGovernance(common.HexToAddress(governanceAddr), backend)
	if err != nil {
		return nil, err
	}

	tok, err := sc.NewToken(common.HexToAddress(tokenAddr), backend)
	if err != nil {
		return nil, err
	}

	return &Contracts{
		backend:    backend,
		Governance: gov,
		Token:      tok,
	}, nil
}

func callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func (c *Contracts) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return c.Token.BalanceOf(callOpts(ctx), owner)
}

func (c *Contracts) StakedBalance(ctx context.Context, user common.Address) (*big.Int, error) {
	return c.Governance.GetStakedBalance(callOpts(ctx), user)
}

func (c *Contracts) TotalStaked(ctx context.Context) (*big.Int, error) {
	return c.Governance.TotalStaked(callOpts(ctx))
}

func (c *Contracts) VotingPower(ctx context.Context, account common.Address) (*big.Int, error) {
	return c.Governance.GetVotingPower(callOpts(ctx), account)
}

func (c *Contracts) UserDelegate(ctx context.Context, user common.Address) (common.Address, error) {
	return c.Governance.GetUserDelegate(callOpts(ctx), user)
}

func (c *Contracts) ProposalCount(ctx context.Context) (*big.Int, error) {
	return c.Governance.GetProposalCount(callOpts(ctx))
}

func (c *Contracts) ActiveProposals(ctx context.Context) ([]*big.Int, error) {
	return c.Governance.GetActiveProposals(callOpts(ctx))
}

func (c *Contracts) ProposalsByStatus(ctx context.Context, status governance.Status) ([]*big.Int, error) {
	return c.Governance.GetProposalsByStatus(callOpts(ctx), uint8(status))
}

func (c *Contracts) ProposalsByCategory(ctx context.Context, category governance.Category) ([]*big.Int, error) {
	return c.Governance.GetProposalsByCategory(callOpts(ctx), uint8(category))
}

func (c *Contracts) Proposal(ctx context.Context, id *big.Int) (*governance.RawProposal, error) {
	return c.Governance.GetProposal(callOpts(ctx), id)
}

func (c *Contracts) VoteInfo(ctx context.Context, id *big.Int, voter common.Address) (*governance.RawVoteInfo, error) {
	return c.Governance.GetVoteInfo(callOpts(ctx), id, voter)
}

func (c *Contracts) GovernanceAddress() common.Address {
	return c.Governance.Address
}

func (c *Contracts) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return c.Token.Approve(opts, spender, amount)
}

func (c *Contracts) StakeTokens(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return c.Governance.StakeTokens(opts, amount)
}

func (c *Contracts) UnstakeTokens(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return c.Governance.UnstakeTokens(opts, amount)
}

func (c *Contracts) CastVote(opts *bind.TransactOpts, id *big.Int, vote governance.VoteType) (*types.Transaction, error) {
	return c.Governance.CastVote(opts, id, uint8(vote))
}

func (c *Contracts) CreateProposal(opts *bind.TransactOpts, title, description string, category governance.Category, executionData []byte, target common.Address) (*types.Transaction, error) {
	return c.Governance.CreateProposal(opts, title, description, uint8(category), executionData, target)
}

// WaitMined blocks until tx is included. It fails if the transaction
// reverted or if its receipt lacks the event the called method emits.
func (c *Contracts) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", governance.ErrTxReverted, tx.Hash().Hex())
	}

	if addr, topic, ok := c.expectedEvent(tx); ok && !sc.HasEvent(receipt, addr, topic) {
		return receipt, fmt.Errorf("%w: %s", ErrEventMissing, tx.Hash().Hex())
	}

	return receipt, nil
}

func (c *Contracts) expectedEvent(tx *types.Transaction) (common.Address, common.Hash, bool) {
	to := tx.To()
	if to == nil {
		return common.Address{}, common.Hash{}, false
	}

	var (
		topic common.Hash
		ok    bool
	)
	switch *to {
	case c.Governance.Address:
		topic, ok = c.Governance.ExpectedEvent(tx.Data())
	case c.Token.Address:
		topic, ok = c.Token.ExpectedEvent(tx.Data())
	}

	return *to, topic, ok
}

var _ governance.Chain = (*Contracts)(nil)
