package commands

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type Phase string

const (
	PhaseIdle      Phase = ""
	PhaseApproving Phase = "approving"
	PhaseStaking   Phase = "staking"
)

// State is the observable progress of one command. Every invocation starts
// from a fresh State.
type State struct {
	IsLoading   bool         `json:"isLoading"`
	IsSuccess   bool         `json:"isSuccess"`
	IsError     bool         `json:"isError"`
	Error       string       `json:"error,omitempty"`
	TxHash      *common.Hash `json:"txHash,omitempty"`
	IsApproving bool         `json:"isApproving"`
	Phase       Phase        `json:"phase,omitempty"`
}

// Command holds the state of one write operation.
type Command struct {
	name string

	mu    sync.Mutex
	state State

	updates chan struct{}
}

func NewCommand(name string) *Command {
	return &Command{
		name:    name,
		updates: make(chan struct{}, 1),
	}
}

func (c *Command) Name() string {
	return c.name
}

func (c *Command) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.TxHash != nil {
		h := *s.TxHash
		s.TxHash = &h
	}
	return s
}

// Updates signals state changes. Signals are coalesced.
func (c *Command) Updates() <-chan struct{} {
	return c.updates
}

func (c *Command) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()

	select {
	case c.updates <- struct{}{}:
	default:
	}
}

func (c *Command) begin() {
	c.update(func(s *State) {
		*s = State{IsLoading: true}
	})
}

func (c *Command) setTxHash(h common.Hash) {
	c.update(func(s *State) {
		s.TxHash = &h
	})
}

func (c *Command) setPhase(p Phase) {
	c.update(func(s *State) {
		s.Phase = p
		s.IsApproving = p == PhaseApproving
	})
}

func (c *Command) finish(err error) {
	c.update(func(s *State) {
		s.IsLoading = false
		s.IsApproving = false
		s.Phase = PhaseIdle
		if err != nil {
			s.IsError = true
			s.Error = err.Error()
			return
		}
		s.IsSuccess = true
	})
}
