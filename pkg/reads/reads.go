package reads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	BalanceInterval = 30 * time.Second
	ListInterval    = 60 * time.Second

	// maxDetailFetches bounds concurrent getProposal calls of one list read.
	maxDetailFetches = 8
)

var ErrNoSources = errors.New("no proposal sources configured")

type Option func(*Reader)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Reader) {
		r.now = now
	}
}

// WithSources replaces the single-proposal strategy list. Sources are tried
// in order.
func WithSources(sources ...ProposalSource) Option {
	return func(r *Reader) {
		r.sources = sources
	}
}

// WithSourceObserver is told about every proposal source attempt.
func WithSourceObserver(fn func(source string, err error)) Option {
	return func(r *Reader) {
		r.observe = fn
	}
}

// Reader performs the view-model's reads and converts every amount into
// human units.
type Reader struct {
	chain   governance.ChainReader
	sources []ProposalSource
	logger  *slog.Logger
	now     func() time.Time
	observe func(source string, err error)
}

// NewReader defaults to reading proposals from the contract only.
func NewReader(chain governance.ChainReader, opts ...Option) *Reader {
	r := &Reader{
		chain:   chain,
		sources: []ProposalSource{NewContractSource(chain)},
		logger:  slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.logger = r.logger.With("component", "reads")

	return r
}

func (r *Reader) TokenBalance(ctx context.Context, owner common.Address) (string, error) {
	v, err := r.chain.BalanceOf(ctx, owner)
	if err != nil {
		return "", err
	}
	return governance.FormatUnits(v), nil
}

func (r *Reader) StakedBalance(ctx context.Context, user common.Address) (string, error) {
	v, err := r.chain.StakedBalance(ctx, user)
	if err != nil {
		return "", err
	}
	return governance.FormatUnits(v), nil
}

func (r *Reader) VotingPower(ctx context.Context, account common.Address) (string, error) {
	v, err := r.chain.VotingPower(ctx, account)
	if err != nil {
		return "", err
	}
	return governance.FormatUnits(v), nil
}

func (r *Reader) TotalStaked(ctx context.Context) (string, error) {
	v, err := r.chain.TotalStaked(ctx)
	if err != nil {
		return "", err
	}
	return governance.FormatUnits(v), nil
}

func (r *Reader) ProposalCount(ctx context.Context) (uint64, error) {
	v, err := r.chain.ProposalCount(ctx)
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// UserDelegate returns nil when the user has not delegated.
func (r *Reader) UserDelegate(ctx context.Context, user common.Address) (*common.Address, error) {
	d, err := r.chain.UserDelegate(ctx, user)
	if err != nil {
		return nil, err
	}
	if d == governance.ZeroAddress {
		return nil, nil
	}
	return &d, nil
}

func (r *Reader) ActiveProposalIDs(ctx context.Context) ([]uint64, error) {
	ids, err := r.chain.ActiveProposals(ctx)
	if err != nil {
		return nil, err
	}
	return toUint64s(ids), nil
}

func (r *Reader) ActiveProposals(ctx context.Context) ([]*governance.Proposal, error) {
	ids, err := r.chain.ActiveProposals(ctx)
	if err != nil {
		return nil, err
	}
	return r.details(ctx, ids)
}

func (r *Reader) ProposalsByStatus(ctx context.Context, status governance.Status) ([]*governance.Proposal, error) {
	ids, err := r.chain.ProposalsByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	return r.details(ctx, ids)
}

func (r *Reader) ProposalsByCategory(ctx context.Context, category governance.Category) ([]*governance.Proposal, error) {
	ids, err := r.chain.ProposalsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return r.details(ctx, ids)
}

// details fetches every id concurrently. The result is in ids order
// regardless of completion order.
func (r *Reader) details(ctx context.Context, ids []*big.Int) ([]*governance.Proposal, error) {
	out := make([]*governance.Proposal, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxDetailFetches)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			raw, err := r.chain.Proposal(ctx, id)
			if err != nil {
				return fmt.Errorf("proposal %s: %w", id, err)
			}

			p, err := governance.FormatProposal(raw, r.now())
			if err != nil {
				return fmt.Errorf("proposal %s: %w", id, err)
			}

			out[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// Proposal loads one proposal, trying each source in order. The first
// success wins; if all fail the errors are joined.
func (r *Reader) Proposal(ctx context.Context, id uint64) (*governance.Proposal, error) {
	if len(r.sources) == 0 {
		return nil, ErrNoSources
	}

	bid := new(big.Int).SetUint64(id)

	var errs []error
	for _, s := range r.sources {
		raw, err := s.Proposal(ctx, bid)
		if err == nil {
			var p *governance.Proposal
			p, err = governance.FormatProposal(raw, r.now())
			if err == nil {
				r.attempt(s.Name(), id, nil)
				return p, nil
			}
		}

		r.attempt(s.Name(), id, err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}

	return nil, errors.Join(errs...)
}

func (r *Reader) attempt(source string, id uint64, err error) {
	if err != nil {
		r.logger.Warn("proposal source failed", "source", source, "id", id, "error", err)
	} else {
		r.logger.Debug("proposal loaded", "source", source, "id", id)
	}

	if r.observe != nil {
		r.observe(source, err)
	}
}

// VoteInfo reads the voter's record for a proposal.
func (r *Reader) VoteInfo(ctx context.Context, id uint64, voter common.Address) (governance.VoteInfo, error) {
	raw, err := r.chain.VoteInfo(ctx, new(big.Int).SetUint64(id), voter)
	if err != nil {
		return governance.EmptyVoteInfo(), err
	}
	return governance.FormatVoteInfo(raw)
}

func toUint64s(ids []*big.Int) []uint64 {
	return lo.Map(ids, func(id *big.Int, _ int) uint64 {
		return id.Uint64()
	})
}
