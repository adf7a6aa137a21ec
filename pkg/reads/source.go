package reads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oceanguard/govclient/pkg/governance"
)

// ProposalSource is one way of loading a single proposal.
type ProposalSource interface {
	Name() string
	Proposal(ctx context.Context, id *big.Int) (*governance.RawProposal, error)
}

// ContractSource reads getProposal straight from the governance contract.
type ContractSource struct {
	chain governance.ChainReader
}

func NewContractSource(chain governance.ChainReader) *ContractSource {
	return &ContractSource{chain: chain}
}

func (s *ContractSource) Name() string {
	return "contract"
}

func (s *ContractSource) Proposal(ctx context.Context, id *big.Int) (*governance.RawProposal, error) {
	return s.chain.Proposal(ctx, id)
}

// ProxySource calls GET {baseURL}/api/proposal/{id}.
type ProxySource struct {
	baseURL string
	client  *http.Client
}

func NewProxySource(baseURL string, client *http.Client) *ProxySource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &ProxySource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (s *ProxySource) Name() string {
	return "proxy"
}

func (s *ProxySource) Proposal(ctx context.Context, id *big.Int) (*governance.RawProposal, error) {
	u, err := url.JoinPath(s.baseURL, "api", "proposal", id.String())
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("proxy returned %d: %s", resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("proxy returned %d", resp.StatusCode)
	}

	var p proxyProposal
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decoding proxy response: %w", err)
	}

	return p.raw()
}

// ProxyProposal is the proxy wire format. Vote counts are strings so that
// 18 decimal weights survive JSON.
type ProxyProposal struct {
	ID             uint64 `json:"id"`
	Creator        string `json:"creator"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       uint8  `json:"category"`
	Status         uint8  `json:"status"`
	StartTime      int64  `json:"startTime"`
	EndTime        int64  `json:"endTime"`
	ForVotes       string `json:"forVotes"`
	AgainstVotes   string `json:"againstVotes"`
	AbstainVotes   string `json:"abstainVotes"`
	Executed       bool   `json:"executed"`
	TargetContract string `json:"targetContract"`
}

// NewProxyProposal converts a contract record into the proxy wire format.
func NewProxyProposal(raw *governance.RawProposal) ProxyProposal {
	return ProxyProposal{
		ID:             raw.ID.Uint64(),
		Creator:        raw.Creator.Hex(),
		Title:          raw.Title,
		Description:    raw.Description,
		Category:       raw.Category,
		Status:         raw.Status,
		StartTime:      raw.StartTime.Int64(),
		EndTime:        raw.EndTime.Int64(),
		ForVotes:       raw.ForVotes.String(),
		AgainstVotes:   raw.AgainstVotes.String(),
		AbstainVotes:   raw.AbstainVotes.String(),
		Executed:       raw.Executed,
		TargetContract: raw.TargetContract.Hex(),
	}
}

// proxyProposal is the lenient decoder: any numeric field may arrive as a
// JSON number or a numeric string.
type proxyProposal struct {
	ID             number `json:"id"`
	Creator        string `json:"creator"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       number `json:"category"`
	Status         number `json:"status"`
	StartTime      number `json:"startTime"`
	EndTime        number `json:"endTime"`
	ForVotes       number `json:"forVotes"`
	AgainstVotes   number `json:"againstVotes"`
	AbstainVotes   number `json:"abstainVotes"`
	Executed       bool   `json:"executed"`
	TargetContract string `json:"targetContract"`
}

func (p *proxyProposal) raw() (*governance.RawProposal, error) {
	if p.ID.Int == nil {
		return nil, fmt.Errorf("proxy response has no id")
	}

	category, err := p.Category.uint8("category")
	if err != nil {
		return nil, err
	}

	status, err := p.Status.uint8("status")
	if err != nil {
		return nil, err
	}

	if !common.IsHexAddress(p.Creator) {
		return nil, fmt.Errorf("invalid creator address: %q", p.Creator)
	}

	target := common.Address{}
	if p.TargetContract != "" {
		if !common.IsHexAddress(p.TargetContract) {
			return nil, fmt.Errorf("invalid target address: %q", p.TargetContract)
		}
		target = common.HexToAddress(p.TargetContract)
	}

	return &governance.RawProposal{
		ID:             p.ID.value(),
		Creator:        common.HexToAddress(p.Creator),
		Title:          p.Title,
		Description:    p.Description,
		Category:       category,
		Status:         status,
		StartTime:      p.StartTime.value(),
		EndTime:        p.EndTime.value(),
		ForVotes:       p.ForVotes.value(),
		AgainstVotes:   p.AgainstVotes.value(),
		AbstainVotes:   p.AbstainVotes.value(),
		Executed:       p.Executed,
		TargetContract: target,
	}, nil
}

type number struct {
	*big.Int
}

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("not an integer: %s", string(b))
	}

	n.Int = v
	return nil
}

func (n number) value() *big.Int {
	if n.Int == nil {
		return new(big.Int)
	}
	return n.Int
}

func (n number) uint8(field string) (uint8, error) {
	v := n.value()
	if v.Sign() < 0 || v.Cmp(big.NewInt(255)) > 0 {
		return 0, fmt.Errorf("%s out of range: %s", field, v)
	}
	return uint8(v.Uint64()), nil
}
