package sc

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/oceanguard/govclient/pkg/market"
)

func (t *Token) callBig(opts *bind.CallOpts, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	err := t.contract.Call(opts, &out, method, params...)
	if err != nil {
		return nil, err
	}

	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (t *Token) callIDs(opts *bind.CallOpts, method string, params ...interface{}) ([]*big.Int, error) {
	var out []interface{}
	err := t.contract.Call(opts, &out, method, params...)
	if err != nil {
		return nil, err
	}

	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

func (t *Token) PlasticRemovalRate(opts *bind.CallOpts) (*big.Int, error) {
	return t.callBig(opts, "plasticRemovalRate")
}

func (t *Token) ReefRestorationRate(opts *bind.CallOpts) (*big.Int, error) {
	return t.callBig(opts, "reefRestorationRate")
}

func (t *Token) CarbonSequestrationRate(opts *bind.CallOpts) (*big.Int, error) {
	return t.callBig(opts, "carbonSequestrationRate")
}

func (t *Token) CalculateTokenAmount(opts *bind.CallOpts, projectType uint8, impactMetric *big.Int) (*big.Int, error) {
	return t.callBig(opts, "calculateTokenAmount", projectType, impactMetric)
}

func (t *Token) GetProjectsByCreator(opts *bind.CallOpts, creator common.Address) ([]*big.Int, error) {
	return t.callIDs(opts, "getProjectsByCreator", creator)
}

func (t *Token) GetAvailableCredits(opts *bind.CallOpts) ([]*big.Int, error) {
	return t.callIDs(opts, "getAvailableCredits")
}

func (t *Token) Validators(opts *bind.CallOpts, account common.Address) (bool, error) {
	var out []interface{}
	err := t.contract.Call(opts, &out, "validators", account)
	if err != nil {
		return false, err
	}

	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// Projects reads the public projects mapping getter.
func (t *Token) Projects(opts *bind.CallOpts, id *big.Int) (*market.RawProject, error) {
	var out []interface{}
	err := t.contract.Call(opts, &out, "projects", id)
	if err != nil {
		return nil, err
	}

	return &market.RawProject{
		ID:           *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Creator:      *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		Metadata:     *abi.ConvertType(out[2], new(string)).(*string),
		ProjectType:  *abi.ConvertType(out[3], new(uint8)).(*uint8),
		ImpactMetric: *abi.ConvertType(out[4], new(*big.Int)).(**big.Int),
		IsValidated:  *abi.ConvertType(out[5], new(bool)).(*bool),
		TokensIssued: *abi.ConvertType(out[6], new(bool)).(*bool),
	}, nil
}

func (t *Token) CarbonCredits(opts *bind.CallOpts, id *big.Int) (*market.RawCredit, error) {
	var out []interface{}
	err := t.contract.Call(opts, &out, "carbonCredits", id)
	if err != nil {
		return nil, err
	}

	return &market.RawCredit{
		ID:      *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Owner:   *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		Amount:  *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
		Price:   *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		ForSale: *abi.ConvertType(out[4], new(bool)).(*bool),
	}, nil
}

func (t *Token) CreateProject(opts *bind.TransactOpts, metadata string, projectType uint8, impactMetric *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "createProject", metadata, projectType, impactMetric)
}

func (t *Token) ValidateProject(opts *bind.TransactOpts, projectID *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "validateProject", projectID)
}

func (t *Token) IssueTokens(opts *bind.TransactOpts, projectID *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "issueTokens", projectID)
}

func (t *Token) CreateCarbonCredit(opts *bind.TransactOpts, projectID, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "createCarbonCredit", projectID, amount)
}

func (t *Token) ListCarbonCredit(opts *bind.TransactOpts, creditID, price *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "listCarbonCredit", creditID, price)
}

// BuyCarbonCredit sends price wei along with the call. opts is not modified.
func (t *Token) BuyCarbonCredit(opts *bind.TransactOpts, creditID, price *big.Int) (*types.Transaction, error) {
	paid := *opts
	paid.Value = price
	return t.contract.Transact(&paid, "buyCarbonCredit", creditID)
}
