package ethrequest

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	comm "github.com/oceanguard/govclient/internal/common"
)

const (
	ETHChainID = "eth_chainId"
)

// Backend is everything the contract bindings need from a node connection.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type EthService struct {
	rpc    *rpc.Client
	client *ethclient.Client
	ctx    context.Context
}

func NewEthService(ctx context.Context, endpoint string) (*EthService, error) {
	rpc, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	client := ethclient.NewClient(rpc)

	return &EthService{rpc, client, ctx}, nil
}

func (e *EthService) Close() {
	e.client.Close()
}

func (e *EthService) Backend() Backend {
	return e.client
}

func (e *EthService) LatestBlock() (*big.Int, error) {
	h, err := e.client.HeaderByNumber(e.ctx, nil)
	if err != nil {
		return common.Big0, err
	}

	return h.Number, nil
}

func (e *EthService) ChainID() (*big.Int, error) {
	var id string
	err := e.rpc.CallContext(e.ctx, &id, ETHChainID)
	if err != nil {
		return nil, err
	}

	chid := comm.HexToBigInt(id)
	if chid.Sign() == 0 {
		return nil, errors.New("invalid chain id")
	}

	return chid, nil
}
