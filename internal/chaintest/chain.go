// Package chaintest provides an in-memory governance.Chain for tests.
package chaintest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/oceanguard/govclient/pkg/governance"
)

var GovernanceAddress = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

// Submission is a write that reached the chain.
type Submission struct {
	Method string
	From   common.Address
	Tx     *types.Transaction
	Args   []any
}

type voteKey struct {
	id    uint64
	voter common.Address
}

type Chain struct {
	mu sync.Mutex

	calls       []string
	submissions []Submission
	nonce       uint64
	failing     map[string]error
	reverting   map[string]bool
	txMethod    map[common.Hash]string
	onProposal  func(id uint64)

	balances   map[common.Address]*big.Int
	staked     map[common.Address]*big.Int
	power      map[common.Address]*big.Int
	delegates  map[common.Address]common.Address
	total      *big.Int
	proposals  map[uint64]*governance.RawProposal
	active     []*big.Int
	byStatus   map[governance.Status][]*big.Int
	byCategory map[governance.Category][]*big.Int
	votes      map[voteKey]*governance.RawVoteInfo

	market marketState
}

func New() *Chain {
	return &Chain{
		failing:    map[string]error{},
		reverting:  map[string]bool{},
		txMethod:   map[common.Hash]string{},
		balances:   map[common.Address]*big.Int{},
		staked:     map[common.Address]*big.Int{},
		power:      map[common.Address]*big.Int{},
		delegates:  map[common.Address]common.Address{},
		total:      new(big.Int),
		proposals:  map[uint64]*governance.RawProposal{},
		byStatus:   map[governance.Status][]*big.Int{},
		byCategory: map[governance.Category][]*big.Int{},
		votes:      map[voteKey]*governance.RawVoteInfo{},
		market:     newMarketState(),
	}
}

// Fail makes method return err until Fail(method, nil).
func (c *Chain) Fail(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		delete(c.failing, method)
		return
	}
	c.failing[method] = err
}

// Revert makes transactions of a write method fail to confirm.
func (c *Chain) Revert(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reverting[method] = true
}

// OnProposal runs before every Proposal read returns. It may block.
func (c *Chain) OnProposal(fn func(id uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onProposal = fn
}

func (c *Chain) SetBalance(addr common.Address, v *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[addr] = v
}

func (c *Chain) SetStaked(addr common.Address, v *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staked[addr] = v
}

func (c *Chain) SetVotingPower(addr common.Address, v *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.power[addr] = v
}

func (c *Chain) SetDelegate(user, delegate common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delegates[user] = delegate
}

func (c *Chain) SetTotalStaked(v *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = v
}

func (c *Chain) AddProposal(p *governance.RawProposal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proposals[p.ID.Uint64()] = p
}

func (c *Chain) SetActive(ids ...uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = bigs(ids)
}

func (c *Chain) SetByStatus(status governance.Status, ids ...uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byStatus[status] = bigs(ids)
}

func (c *Chain) SetByCategory(category governance.Category, ids ...uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byCategory[category] = bigs(ids)
}

func (c *Chain) SetVote(id uint64, voter common.Address, info *governance.RawVoteInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.votes[voteKey{id, voter}] = info
}

// Calls lists every method invoked, in order.
func (c *Chain) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *Chain) Count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, m := range c.calls {
		if m == method {
			n++
		}
	}
	return n
}

func (c *Chain) Submissions() []Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Submission(nil), c.submissions...)
}

func (c *Chain) call(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, method)
	return c.failing[method]
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

func bigs(ids []uint64) []*big.Int {
	out := make([]*big.Int, 0, len(ids))
	for _, id := range ids {
		out = append(out, new(big.Int).SetUint64(id))
	}
	return out
}

func (c *Chain) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	if err := c.call("BalanceOf"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return orZero(c.balances[owner]), nil
}

func (c *Chain) StakedBalance(ctx context.Context, user common.Address) (*big.Int, error) {
	if err := c.call("StakedBalance"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return orZero(c.staked[user]), nil
}

func (c *Chain) TotalStaked(ctx context.Context) (*big.Int, error) {
	if err := c.call("TotalStaked"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return orZero(c.total), nil
}

func (c *Chain) VotingPower(ctx context.Context, account common.Address) (*big.Int, error) {
	if err := c.call("VotingPower"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return orZero(c.power[account]), nil
}

func (c *Chain) UserDelegate(ctx context.Context, user common.Address) (common.Address, error) {
	if err := c.call("UserDelegate"); err != nil {
		return common.Address{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delegates[user], nil
}

func (c *Chain) ProposalCount(ctx context.Context) (*big.Int, error) {
	if err := c.call("ProposalCount"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return big.NewInt(int64(len(c.proposals))), nil
}

func (c *Chain) ActiveProposals(ctx context.Context) ([]*big.Int, error) {
	if err := c.call("ActiveProposals"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*big.Int{}, c.active...), nil
}

func (c *Chain) ProposalsByStatus(ctx context.Context, status governance.Status) ([]*big.Int, error) {
	if err := c.call("ProposalsByStatus"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*big.Int{}, c.byStatus[status]...), nil
}

func (c *Chain) ProposalsByCategory(ctx context.Context, category governance.Category) ([]*big.Int, error) {
	if err := c.call("ProposalsByCategory"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*big.Int{}, c.byCategory[category]...), nil
}

func (c *Chain) Proposal(ctx context.Context, id *big.Int) (*governance.RawProposal, error) {
	if err := c.call("Proposal"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	hook := c.onProposal
	p, ok := c.proposals[id.Uint64()]
	c.mu.Unlock()

	if hook != nil {
		hook(id.Uint64())
	}

	if !ok {
		return nil, fmt.Errorf("execution reverted: proposal %s does not exist", id)
	}

	cp := *p
	return &cp, nil
}

func (c *Chain) VoteInfo(ctx context.Context, id *big.Int, voter common.Address) (*governance.RawVoteInfo, error) {
	if err := c.call("VoteInfo"); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.votes[voteKey{id.Uint64(), voter}]
	if !ok {
		return &governance.RawVoteInfo{Weight: new(big.Int)}, nil
	}
	cp := *v
	return &cp, nil
}

func (c *Chain) GovernanceAddress() common.Address {
	return GovernanceAddress
}

func (c *Chain) submit(method string, opts *bind.TransactOpts, args ...any) (*types.Transaction, error) {
	if err := c.call(method); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.nonce++
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    c.nonce,
		To:       &GovernanceAddress,
		Value:    orZero(opts.Value),
		Gas:      21000,
		GasPrice: big.NewInt(1),
	})

	c.txMethod[tx.Hash()] = method
	c.submissions = append(c.submissions, Submission{
		Method: method,
		From:   opts.From,
		Tx:     tx,
		Args:   args,
	})

	return tx, nil
}

func (c *Chain) Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return c.submit("Approve", opts, spender, amount)
}

func (c *Chain) StakeTokens(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return c.submit("StakeTokens", opts, amount)
}

func (c *Chain) UnstakeTokens(opts *bind.TransactOpts, amount *big.Int) (*types.Transaction, error) {
	return c.submit("UnstakeTokens", opts, amount)
}

func (c *Chain) CastVote(opts *bind.TransactOpts, id *big.Int, vote governance.VoteType) (*types.Transaction, error) {
	return c.submit("CastVote", opts, id, vote)
}

func (c *Chain) CreateProposal(opts *bind.TransactOpts, title, description string, category governance.Category, executionData []byte, target common.Address) (*types.Transaction, error) {
	return c.submit("CreateProposal", opts, title, description, category, executionData, target)
}

func (c *Chain) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if err := c.call("WaitMined"); err != nil {
		return nil, err
	}

	c.mu.Lock()
	method := c.txMethod[tx.Hash()]
	revert := c.reverting[method]
	c.mu.Unlock()

	if revert {
		return &types.Receipt{Status: types.ReceiptStatusFailed, TxHash: tx.Hash()},
			fmt.Errorf("%w: %s", governance.ErrTxReverted, tx.Hash().Hex())
	}

	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}, nil
}

var _ governance.Chain = (*Chain)(nil)
