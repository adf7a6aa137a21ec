package reads

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oceanguard/govclient/internal/chaintest"
	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/stretchr/testify/require"
)

var (
	voter = common.HexToAddress("0x1234567890123456789012345678901234567890")
	start = time.Unix(1_700_000_000, 0)
)

func clock() time.Time {
	return start.Add(24 * time.Hour)
}

func TestBalancesInHumanUnits(t *testing.T) {
	ctx := context.Background()

	chain := chaintest.New()
	chain.SetBalance(voter, chaintest.Tokens(150))
	chain.SetStaked(voter, big.NewInt(1_500_000_000_000_000_000))
	chain.SetTotalStaked(chaintest.Tokens(1_000_000))

	r := NewReader(chain)

	b, err := r.TokenBalance(ctx, voter)
	require.NoError(t, err)
	require.Equal(t, "150", b)

	s, err := r.StakedBalance(ctx, voter)
	require.NoError(t, err)
	require.Equal(t, "1.5", s)

	p, err := r.VotingPower(ctx, voter)
	require.NoError(t, err)
	require.Equal(t, "0", p)

	total, err := r.TotalStaked(ctx)
	require.NoError(t, err)
	require.Equal(t, "1000000", total)

	chain.Fail("BalanceOf", errors.New("connection refused"))
	_, err = r.TokenBalance(ctx, voter)
	require.EqualError(t, err, "connection refused")
}

func TestListOrderFollowsIDs(t *testing.T) {
	chain := chaintest.New()
	for _, id := range []uint64{5, 2, 9} {
		chain.AddProposal(chaintest.RawProposal(id, start))
	}
	chain.SetActive(5, 2, 9)

	// id 2 only resolves after 5 and 9 have both completed
	var mu sync.Mutex
	done := map[uint64]bool{}
	others := make(chan struct{})
	var order []uint64

	chain.OnProposal(func(id uint64) {
		if id == 2 {
			<-others
		}

		mu.Lock()
		defer mu.Unlock()
		done[id] = true
		order = append(order, id)
		if done[5] && done[9] && !done[2] {
			close(others)
		}
	})

	r := NewReader(chain, WithClock(clock))

	proposals, err := r.ActiveProposals(context.Background())
	require.NoError(t, err)

	require.Equal(t, uint64(2), order[len(order)-1])

	ids := []uint64{}
	for _, p := range proposals {
		ids = append(ids, p.ID)
	}
	require.Equal(t, []uint64{5, 2, 9}, ids)
	require.Equal(t, "6 days", proposals[0].TimeRemaining)
}

func TestListFailsWhenAnyDetailFails(t *testing.T) {
	chain := chaintest.New()
	chain.AddProposal(chaintest.RawProposal(1, start))
	chain.SetByStatus(governance.StatusPassed, 1, 404)

	r := NewReader(chain)

	_, err := r.ProposalsByStatus(context.Background(), governance.StatusPassed)
	require.ErrorContains(t, err, "proposal 404")

	empty, err := r.ProposalsByStatus(context.Background(), governance.StatusFailed)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestListRejectsUnknownCodes(t *testing.T) {
	chain := chaintest.New()
	p := chaintest.RawProposal(3, start)
	p.Category = 6
	chain.AddProposal(p)
	chain.SetByCategory(governance.CategoryOther, 3)

	r := NewReader(chain)

	_, err := r.ProposalsByCategory(context.Background(), governance.CategoryOther)
	require.ErrorIs(t, err, governance.ErrUnknownCategory)
}

type failingSource struct {
	err error
}

func (s failingSource) Name() string { return "broken" }

func (s failingSource) Proposal(ctx context.Context, id *big.Int) (*governance.RawProposal, error) {
	return nil, s.err
}

func TestProposalFallsBackToContract(t *testing.T) {
	chain := chaintest.New()
	chain.AddProposal(chaintest.RawProposal(7, start))

	var attempts []string
	observe := func(source string, err error) {
		if err != nil {
			attempts = append(attempts, source+" failed")
			return
		}
		attempts = append(attempts, source+" ok")
	}

	r := NewReader(chain,
		WithClock(clock),
		WithSources(failingSource{errors.New("502 bad gateway")}, NewContractSource(chain)),
		WithSourceObserver(observe),
	)

	p, err := r.Proposal(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, uint64(7), p.ID)
	require.Equal(t, []string{"broken failed", "contract ok"}, attempts)
}

func TestProposalAllSourcesFail(t *testing.T) {
	chain := chaintest.New()
	chain.Fail("Proposal", errors.New("node down"))

	first := errors.New("proxy down")

	r := NewReader(chain, WithSources(failingSource{first}, NewContractSource(chain)))

	_, err := r.Proposal(context.Background(), 1)
	require.ErrorIs(t, err, first)
	require.ErrorContains(t, err, "broken: proxy down")
	require.ErrorContains(t, err, "contract: node down")

	_, err = NewReader(chain, WithSources()).Proposal(context.Background(), 1)
	require.ErrorIs(t, err, ErrNoSources)
}

func TestProxySourceNumericStrings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/proposal/12":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"id": "12",
				"creator": "0x480fbe37526226b6c6e2a7afa449cdf661939d2f",
				"title": "Mangrove restoration",
				"description": "Replant 40ha",
				"category": 4,
				"status": "1",
				"startTime": 1700000000,
				"endTime": "1700604800",
				"forVotes": "2500000000000000000000000",
				"againstVotes": "500000000000000000000000",
				"abstainVotes": 0,
				"executed": true,
				"targetContract": "0x0000000000000000000000000000000000000000"
			}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"Failed to fetch proposal"}`))
		}
	}))
	defer srv.Close()

	src := NewProxySource(srv.URL+"/", srv.Client())

	raw, err := src.Proposal(context.Background(), big.NewInt(12))
	require.NoError(t, err)
	require.Equal(t, uint64(12), raw.ID.Uint64())
	require.Equal(t, uint8(4), raw.Category)
	require.Equal(t, uint8(1), raw.Status)
	require.Equal(t, "2500000000000000000000000", raw.ForVotes.String())
	require.True(t, raw.Executed)

	p, err := governance.FormatProposal(raw, clock())
	require.NoError(t, err)
	require.Equal(t, "Research", p.Category.String())
	require.Equal(t, "Passed", p.Status.String())
	require.Equal(t, "2500000", p.ForVotes)
	require.Equal(t, governance.VotePercentages{For: 83, Against: 17, Abstain: 0}, p.Votes)
	require.False(t, p.HasTarget)

	_, err = src.Proposal(context.Background(), big.NewInt(13))
	require.ErrorContains(t, err, "Failed to fetch proposal")
}

func TestProxyAndContractProduceSameShape(t *testing.T) {
	chain := chaintest.New()
	raw := chaintest.RawProposal(4, start)
	chain.AddProposal(raw)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		b, _ := json.Marshal(NewProxyProposal(raw))
		w.Write(b)
	}))
	defer srv.Close()

	viaProxy, err := NewReader(chain, WithClock(clock), WithSources(NewProxySource(srv.URL, nil))).Proposal(context.Background(), 4)
	require.NoError(t, err)

	viaContract, err := NewReader(chain, WithClock(clock)).Proposal(context.Background(), 4)
	require.NoError(t, err)

	viaProxy.Raw, viaContract.Raw = nil, nil
	require.Equal(t, viaContract, viaProxy)
}

func TestVoteInfo(t *testing.T) {
	chain := chaintest.New()
	chain.SetVote(3, voter, &governance.RawVoteInfo{HasVoted: true, VoteType: 2, Weight: chaintest.Tokens(40)})

	r := NewReader(chain)

	info, err := r.VoteInfo(context.Background(), 3, voter)
	require.NoError(t, err)
	require.True(t, info.HasVoted)
	require.Equal(t, governance.VoteAbstain, *info.VoteType)
	require.Equal(t, "40", info.Weight)

	info, err = r.VoteInfo(context.Background(), 4, voter)
	require.NoError(t, err)
	require.Equal(t, governance.EmptyVoteInfo(), info)
}

func TestDelegateAndCount(t *testing.T) {
	chain := chaintest.New()
	chain.AddProposal(chaintest.RawProposal(1, start))
	chain.AddProposal(chaintest.RawProposal(2, start))
	chain.SetActive(2, 1)

	r := NewReader(chain)

	n, err := r.ProposalCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)

	ids, err := r.ActiveProposalIDs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint64{2, 1}, ids)

	d, err := r.UserDelegate(context.Background(), voter)
	require.NoError(t, err)
	require.Nil(t, d)

	chain.SetDelegate(voter, chaintest.Creator)
	d, err = r.UserDelegate(context.Background(), voter)
	require.NoError(t, err)
	require.Equal(t, chaintest.Creator, *d)
}
