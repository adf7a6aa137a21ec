package market_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oceanguard/govclient/internal/chaintest"
	"github.com/oceanguard/govclient/pkg/market"
	"github.com/stretchr/testify/require"
)

func rawProject(id uint64, owner common.Address, pt market.ProjectType) *market.RawProject {
	return &market.RawProject{
		ID:           new(big.Int).SetUint64(id),
		Creator:      owner,
		Metadata:     `{"name":"p` + new(big.Int).SetUint64(id).String() + `"}`,
		ProjectType:  uint8(pt),
		ImpactMetric: big.NewInt(100),
	}
}

func rawCredit(id uint64, price int64, forSale bool) *market.RawCredit {
	return &market.RawCredit{
		ID:      new(big.Int).SetUint64(id),
		Owner:   creator,
		Amount:  big.NewInt(5),
		Price:   big.NewInt(price),
		ForSale: forSale,
	}
}

func TestUserProjectsKeepOrder(t *testing.T) {
	chain := chaintest.New()
	for _, id := range []uint64{7, 3, 11, 1, 5, 2, 9, 4, 8, 6} {
		chain.AddProject(rawProject(id, creator, market.ReefRestoration))
	}
	chain.AddProject(rawProject(20, common.HexToAddress("0x01"), market.PlasticRemoval))

	projects, err := market.NewReader(chain).UserProjects(context.Background(), creator)
	require.NoError(t, err)

	var ids []uint64
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	require.Equal(t, []uint64{7, 3, 11, 1, 5, 2, 9, 4, 8, 6}, ids)
	require.Equal(t, "p7", projects[0].Name)
}

func TestUserProjectsEmpty(t *testing.T) {
	projects, err := market.NewReader(chaintest.New()).UserProjects(context.Background(), creator)
	require.NoError(t, err)
	require.Empty(t, projects)
}

func TestUserProjectsDetailError(t *testing.T) {
	chain := chaintest.New()
	chain.AddProject(rawProject(1, creator, market.PlasticRemoval))
	chain.Fail("Project", errors.New("execution reverted"))

	_, err := market.NewReader(chain).UserProjects(context.Background(), creator)
	require.ErrorContains(t, err, "project 1: execution reverted")
}

func TestAvailableCredits(t *testing.T) {
	chain := chaintest.New()
	chain.AddCredit(rawCredit(3, 1e18, true))
	chain.AddCredit(rawCredit(1, 5e17, true))
	chain.AddCredit(rawCredit(2, 0, false))

	credits, err := market.NewReader(chain).AvailableCredits(context.Background())
	require.NoError(t, err)
	require.Len(t, credits, 2)
	require.Equal(t, uint64(1), credits[0].ID)
	require.Equal(t, "0.5", credits[0].PriceEth)
	require.Equal(t, uint64(3), credits[1].ID)
	require.Equal(t, "1", credits[1].PriceEth)

	unlisted, err := market.NewReader(chain).Credit(context.Background(), 2)
	require.NoError(t, err)
	require.False(t, unlisted.ForSale)
	require.Equal(t, "0", unlisted.PriceEth)
}

func TestConversionRates(t *testing.T) {
	chain := chaintest.New()
	r := market.NewReader(chain)

	chain.Fail("ConversionRates", errors.New("dial tcp: connection refused"))
	rates, err := r.ConversionRates(context.Background())
	require.Error(t, err)
	require.Equal(t, market.ZeroRates(), rates)

	chain.Fail("ConversionRates", nil)
	chain.SetRates(10, 20, 100)
	rates, err = r.ConversionRates(context.Background())
	require.NoError(t, err)
	require.Equal(t, market.Rates{PlasticRemoval: "10", ReefRestoration: "20", CarbonSequestration: "100"}, rates)
}

func TestTokenAmount(t *testing.T) {
	chain := chaintest.New()
	chain.SetRates(10, 20, 100)
	r := market.NewReader(chain)

	amount, err := r.TokenAmount(context.Background(), market.CarbonSequestration, 3)
	require.NoError(t, err)
	require.Equal(t, "0.0000000000000003", amount)

	_, err = r.TokenAmount(context.Background(), market.ProjectType(4), 3)
	require.ErrorIs(t, err, market.ErrUnknownProjectType)
	require.Equal(t, 1, chain.Count("CalculateTokenAmount"))
}

func TestIsValidator(t *testing.T) {
	chain := chaintest.New()
	chain.SetValidator(creator, true)
	r := market.NewReader(chain)

	ok, err := r.IsValidator(context.Background(), creator)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.IsValidator(context.Background(), common.HexToAddress("0x02"))
	require.NoError(t, err)
	require.False(t, ok)
}
