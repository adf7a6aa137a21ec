package market

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oceanguard/govclient/pkg/governance"
	"golang.org/x/sync/errgroup"
)

const maxDetailFetches = 8

// Reader loads registry state and formats it for display.
type Reader struct {
	chain ChainReader
}

func NewReader(chain ChainReader) *Reader {
	return &Reader{chain: chain}
}

func (r *Reader) ConversionRates(ctx context.Context) (Rates, error) {
	raw, err := r.chain.ConversionRates(ctx)
	if err != nil {
		return ZeroRates(), err
	}
	return FormatRates(raw), nil
}

// UserProjects lists the projects created by creator in registry order.
func (r *Reader) UserProjects(ctx context.Context, creator common.Address) ([]*Project, error) {
	ids, err := r.chain.ProjectsByCreator(ctx, creator)
	if err != nil {
		return nil, err
	}

	return fetchAll(ctx, ids, func(ctx context.Context, id *big.Int) (*Project, error) {
		raw, err := r.chain.Project(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", id, err)
		}

		p, err := FormatProject(raw)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", id, err)
		}
		return p, nil
	})
}

func (r *Reader) Project(ctx context.Context, id uint64) (*Project, error) {
	raw, err := r.chain.Project(ctx, new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return FormatProject(raw)
}

// AvailableCredits lists the credits currently offered for sale.
func (r *Reader) AvailableCredits(ctx context.Context) ([]*Credit, error) {
	ids, err := r.chain.AvailableCredits(ctx)
	if err != nil {
		return nil, err
	}

	return fetchAll(ctx, ids, func(ctx context.Context, id *big.Int) (*Credit, error) {
		raw, err := r.chain.CarbonCredit(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("credit %s: %w", id, err)
		}
		return FormatCredit(raw), nil
	})
}

func (r *Reader) Credit(ctx context.Context, id uint64) (*Credit, error) {
	raw, err := r.chain.CarbonCredit(ctx, new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return FormatCredit(raw), nil
}

func (r *Reader) IsValidator(ctx context.Context, account common.Address) (bool, error) {
	return r.chain.IsValidator(ctx, account)
}

// TokenAmount quotes the tokens a project with this impact would be issued,
// in human units.
func (r *Reader) TokenAmount(ctx context.Context, projectType ProjectType, impactMetric uint64) (string, error) {
	if !projectType.Valid() {
		return "0", fmt.Errorf("%w: %d", ErrUnknownProjectType, projectType)
	}

	v, err := r.chain.CalculateTokenAmount(ctx, projectType, new(big.Int).SetUint64(impactMetric))
	if err != nil {
		return "0", err
	}
	return governance.FormatUnits(v), nil
}

// fetchAll runs fetch for every id concurrently and returns the results in
// ids order.
func fetchAll[T any](ctx context.Context, ids []*big.Int, fetch func(ctx context.Context, id *big.Int) (T, error)) ([]T, error) {
	out := make([]T, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxDetailFetches)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			v, err := fetch(ctx, id)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
