package viewmodel

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oceanguard/govclient/pkg/commands"
	"github.com/oceanguard/govclient/pkg/market"
	"github.com/oceanguard/govclient/pkg/poll"
)

type (
	ProjectList = []*market.Project
	CreditList  = []*market.Credit
)

// Market is the project and carbon credit part of the view-model. It
// shares the account tracker with the governance part.
type Market struct {
	Reads    *market.Reader
	Commands *market.Executor

	Rates        *poll.Unit[none, market.Rates]
	UserProjects *poll.Unit[common.Address, ProjectList]
	Credits      *poll.Unit[none, CreditList]

	account commands.AddressSource
	after   func(error) error
}

func newMarket(chain market.Chain, vm *ViewModel, o *options, pollOpts []poll.Option, cmdOpts []commands.Option) *Market {
	r := market.NewReader(chain)

	return &Market{
		Reads:    r,
		Commands: market.NewExecutor(chain, o.wallet, vm.Account, cmdOpts...),

		Rates:        poll.New("conversionRates", o.balanceInterval, market.ZeroRates(), func(ctx context.Context, _ none) (market.Rates, error) { return r.ConversionRates(ctx) }, pollOpts...),
		UserProjects: poll.New("userProjects", o.listInterval, ProjectList{}, r.UserProjects, pollOpts...),
		Credits:      poll.New("availableCredits", o.listInterval, CreditList{}, func(ctx context.Context, _ none) (CreditList, error) { return r.AvailableCredits(ctx) }, pollOpts...),

		account: vm.Account,
		after:   vm.afterWrite,
	}
}

func (m *Market) units() []unit {
	return []unit{m.Rates, m.UserProjects, m.Credits}
}

func (m *Market) start() {
	m.Rates.SetKey(none{})
	m.Credits.SetKey(none{})
}

func (m *Market) applyAccount(addr *common.Address) {
	if addr == nil {
		m.UserProjects.Clear()
		return
	}
	m.UserProjects.SetKey(*addr)
}

// IsValidator reports whether the connected account may validate projects.
func (m *Market) IsValidator(ctx context.Context) (bool, error) {
	addr := m.account.Address()
	if addr == nil {
		return false, nil
	}
	return m.Reads.IsValidator(ctx, *addr)
}

func (m *Market) CreateProject(ctx context.Context, req market.ProjectRequest) error {
	return m.after(m.Commands.CreateProject(ctx, req))
}

func (m *Market) ValidateProject(ctx context.Context, projectID uint64) error {
	return m.after(m.Commands.ValidateProject(ctx, projectID))
}

func (m *Market) IssueTokens(ctx context.Context, projectID uint64) error {
	return m.after(m.Commands.IssueTokens(ctx, projectID))
}

func (m *Market) CreateCarbonCredit(ctx context.Context, projectID, amount uint64) error {
	return m.after(m.Commands.CreateCarbonCredit(ctx, projectID, amount))
}

func (m *Market) ListCarbonCredit(ctx context.Context, creditID uint64, price string) error {
	return m.after(m.Commands.ListCarbonCredit(ctx, creditID, price))
}

func (m *Market) BuyCarbonCredit(ctx context.Context, creditID uint64) error {
	return m.after(m.Commands.BuyCarbonCredit(ctx, creditID))
}

type MarketSnapshot struct {
	Rates        Read[market.Rates] `json:"conversionRates"`
	UserProjects Read[ProjectList]  `json:"userProjects"`
	Credits      Read[CreditList]   `json:"availableCredits"`

	Commands map[string]commands.State `json:"commands"`
}

func (m *Market) snapshot() *MarketSnapshot {
	cmds := map[string]commands.State{}
	for _, c := range m.Commands.Commands() {
		cmds[c.Name()] = c.State()
	}

	return &MarketSnapshot{
		Rates:        readOf(m.Rates.Snapshot()),
		UserProjects: readOf(m.UserProjects.Snapshot()),
		Credits:      readOf(m.Credits.Snapshot()),
		Commands:     cmds,
	}
}
