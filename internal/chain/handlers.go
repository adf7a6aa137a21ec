package chain

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	com "github.com/oceanguard/govclient/internal/common"
)

// BlockSource reports the node's head.
type BlockSource interface {
	LatestBlock() (*big.Int, error)
}

type Service struct {
	evm        BlockSource
	chainId    *big.Int
	governance common.Address
}

func NewService(evm BlockSource, chid *big.Int, gov common.Address) *Service {
	return &Service{
		evm,
		chid,
		gov,
	}
}

type response struct {
	ChainID     string `json:"chainId"`
	Governance  string `json:"governance"`
	LatestBlock string `json:"latestBlock"`
}

// Info describes the chain the proxy reads from.
func (s *Service) Info(w http.ResponseWriter, r *http.Request) {
	block, err := s.evm.LatestBlock()
	if err != nil {
		com.Error(w, http.StatusBadGateway, "Failed to fetch latest block")
		return
	}

	err = com.Body(w, &response{
		ChainID:     s.chainId.String(),
		Governance:  s.governance.Hex(),
		LatestBlock: block.String(),
	}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
