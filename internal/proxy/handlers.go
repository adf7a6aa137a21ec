package proxy

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	com "github.com/oceanguard/govclient/internal/common"
	"github.com/oceanguard/govclient/internal/services/db/govdb"
	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/oceanguard/govclient/pkg/reads"
	"github.com/samber/lo"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// SnapshotStore keeps the proposals served by the proxy. It is optional.
type SnapshotStore interface {
	Upsert(gov common.Address, p *governance.RawProposal) error
	List(gov common.Address, limit, offset int) ([]*govdb.Snapshot, error)
}

type Service struct {
	chain      governance.ChainReader
	governance common.Address
	store      SnapshotStore
	onSnapshot func()
	logger     *slog.Logger
}

type Option func(*Service)

func WithSnapshots(store SnapshotStore, written func()) Option {
	return func(s *Service) {
		s.store = store
		s.onSnapshot = written
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(chain governance.ChainReader, gov common.Address, opts ...Option) *Service {
	s := &Service{
		chain:      chain,
		governance: gov,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetProposal serves GET /api/proposal/{id}.
func (s *Service) GetProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := new(big.Int).SetString(chi.URLParam(r, "id"), 10)
	if !ok || id.Sign() < 0 {
		com.Error(w, http.StatusBadRequest, "Invalid proposal id")
		return
	}

	p, err := s.chain.Proposal(r.Context(), id)
	if err != nil {
		s.logger.Error("fetching proposal", "id", id, "error", err)
		com.Error(w, http.StatusInternalServerError, "Failed to fetch proposal")
		return
	}

	if err := validCodes(p); err != nil {
		s.logger.Error("unknown proposal codes", "id", id, "error", err)
		com.Error(w, http.StatusInternalServerError, "Failed to fetch proposal")
		return
	}

	s.snapshot(r.Context(), p)

	err = com.JSON(w, http.StatusOK, reads.NewProxyProposal(p))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// validCodes rejects records whose status or category the client cannot
// format, so they are neither served nor stored.
func validCodes(p *governance.RawProposal) error {
	if _, err := governance.StatusFromCode(p.Status); err != nil {
		return err
	}
	_, err := governance.CategoryFromCode(p.Category)
	return err
}

type activeResponse struct {
	ProposalIDs []uint64 `json:"proposalIds"`
}

// GetActive serves GET /api/proposal/active.
func (s *Service) GetActive(w http.ResponseWriter, r *http.Request) {
	ids, err := s.chain.ActiveProposals(r.Context())
	if err != nil {
		s.logger.Error("fetching active proposals", "error", err)
		com.Error(w, http.StatusInternalServerError, "Failed to fetch active proposals")
		return
	}

	err = com.JSON(w, http.StatusOK, &activeResponse{
		ProposalIDs: lo.Map(ids, func(id *big.Int, _ int) uint64 { return id.Uint64() }),
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

type snapshotMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// GetSnapshots serves GET /api/snapshots, the proposals stored so far.
func (s *Service) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		com.Error(w, http.StatusNotFound, "Snapshots are not enabled")
		return
	}

	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil || limit < 1 || limit > maxLimit {
		com.Error(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		com.Error(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	snapshots, err := s.store.List(s.governance, limit, offset)
	if err != nil {
		s.logger.Error("listing snapshots", "error", err)
		com.Error(w, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}

	props := lo.Map(snapshots, func(sn *govdb.Snapshot, _ int) reads.ProxyProposal {
		return reads.NewProxyProposal(sn.Proposal)
	})

	err = com.BodyMultiple(w, props, &snapshotMeta{Limit: limit, Offset: offset})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *Service) snapshot(ctx context.Context, p *governance.RawProposal) {
	if s.store == nil {
		return
	}

	if err := s.store.Upsert(s.governance, p); err != nil {
		s.logger.WarnContext(ctx, "storing proposal snapshot", "id", p.ID, "error", err)
		return
	}

	if s.onSnapshot != nil {
		s.onSnapshot()
	}
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
