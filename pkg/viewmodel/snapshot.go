package viewmodel

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oceanguard/govclient/pkg/commands"
	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/oceanguard/govclient/pkg/poll"
)

// Read is a polled value as consumers render it.
type Read[V any] struct {
	Value     V         `json:"value"`
	Loading   bool      `json:"isLoading"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

func readOf[V any](r poll.Result[V]) Read[V] {
	out := Read[V]{
		Value:     r.Value,
		Loading:   r.Loading,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

type Snapshot struct {
	Address   *common.Address `json:"address"`
	Connected bool            `json:"isConnected"`

	TokenBalance  Read[string] `json:"tokenBalance"`
	StakedBalance Read[string] `json:"stakedBalance"`
	VotingPower   Read[string] `json:"votingPower"`
	TotalStaked   Read[string] `json:"totalStaked"`

	ActiveProposals   Read[ProposalList] `json:"activeProposals"`
	Status            governance.Status  `json:"status"`
	ProposalsByStatus Read[ProposalList] `json:"proposalsByStatus"`

	Commands map[string]commands.State `json:"commands"`

	Market *MarketSnapshot `json:"market,omitempty"`
}

// Snapshot copies the current state of every part of the view-model.
func (vm *ViewModel) Snapshot() Snapshot {
	s := vm.Account.State()

	cmds := map[string]commands.State{}
	for _, c := range vm.Commands.Commands() {
		cmds[c.Name()] = c.State()
	}

	var m *MarketSnapshot
	if vm.Market != nil {
		m = vm.Market.snapshot()
	}

	return Snapshot{
		Address:   s.Address,
		Connected: s.Connected,

		TokenBalance:  readOf(vm.TokenBalance.Snapshot()),
		StakedBalance: readOf(vm.StakedBalance.Snapshot()),
		VotingPower:   readOf(vm.VotingPower.Snapshot()),
		TotalStaked:   readOf(vm.TotalStaked.Snapshot()),

		ActiveProposals:   readOf(vm.ActiveProposals.Snapshot()),
		Status:            vm.Status(),
		ProposalsByStatus: readOf(vm.ProposalsByStatus.Snapshot()),

		Commands: cmds,
		Market:   m,
	}
}
