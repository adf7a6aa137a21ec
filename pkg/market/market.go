// Package market covers the conservation project and carbon credit side of
// the OceanGuard token contract.
package market

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oceanguard/govclient/pkg/governance"
)

var (
	ErrUnknownProjectType = errors.New("unknown project type")
	ErrNotForSale         = errors.New("carbon credit is not for sale")
)

// ProjectType mirrors OceanGuard.ProjectType.
type ProjectType uint8

const (
	PlasticRemoval ProjectType = iota
	ReefRestoration
	CarbonSequestration
)

var ProjectTypes = []ProjectType{
	PlasticRemoval,
	ReefRestoration,
	CarbonSequestration,
}

func (p ProjectType) String() string {
	switch p {
	case PlasticRemoval:
		return "PlasticRemoval"
	case ReefRestoration:
		return "ReefRestoration"
	case CarbonSequestration:
		return "CarbonSequestration"
	}
	return fmt.Sprintf("ProjectType(%d)", uint8(p))
}

// ImpactUnit names what a project's impact metric counts.
func (p ProjectType) ImpactUnit() string {
	switch p {
	case PlasticRemoval:
		return "kg plastic removed"
	case ReefRestoration:
		return "m² reef restored"
	case CarbonSequestration:
		return "t carbon sequestered"
	}
	return ""
}

func (p ProjectType) Valid() bool {
	return p <= CarbonSequestration
}

func ProjectTypeFromCode(code uint8) (ProjectType, error) {
	p := ProjectType(code)
	if !p.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownProjectType, code)
	}
	return p, nil
}

func ParseProjectType(s string) (ProjectType, error) {
	s = strings.TrimSpace(s)
	for _, p := range ProjectTypes {
		if strings.EqualFold(p.String(), s) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProjectType, s)
}

func (p ProjectType) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProjectType, uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *ProjectType) UnmarshalText(b []byte) error {
	v, err := ParseProjectType(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// RawRates are the contract's token issuance rates per unit of impact.
type RawRates struct {
	PlasticRemoval      *big.Int
	ReefRestoration     *big.Int
	CarbonSequestration *big.Int
}

type Rates struct {
	PlasticRemoval      string `json:"plasticRemovalRate"`
	ReefRestoration     string `json:"reefRestorationRate"`
	CarbonSequestration string `json:"carbonSequestrationRate"`
}

// ZeroRates is reported before the first successful read.
func ZeroRates() Rates {
	return Rates{PlasticRemoval: "0", ReefRestoration: "0", CarbonSequestration: "0"}
}

func FormatRates(raw *RawRates) Rates {
	if raw == nil {
		return ZeroRates()
	}
	return Rates{
		PlasticRemoval:      bigString(raw.PlasticRemoval),
		ReefRestoration:     bigString(raw.ReefRestoration),
		CarbonSequestration: bigString(raw.CarbonSequestration),
	}
}

// RawProject is the projects(id) getter result.
type RawProject struct {
	ID           *big.Int
	Creator      common.Address
	Metadata     string
	ProjectType  uint8
	ImpactMetric *big.Int
	IsValidated  bool
	TokensIssued bool
}

// Metadata is the JSON document stored with each project.
type Metadata struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func EncodeMetadata(m Metadata) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type Project struct {
	ID           uint64      `json:"id"`
	Creator      string      `json:"creator"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Metadata     string      `json:"metadata"`
	Type         ProjectType `json:"projectType"`
	ImpactMetric string      `json:"impactMetric"`
	IsValidated  bool        `json:"isValidated"`
	TokensIssued bool        `json:"tokensIssued"`
}

// FormatProject normalizes a project record. Metadata that is not a JSON
// document leaves Description empty and names the project by id.
func FormatProject(raw *RawProject) (*Project, error) {
	if raw == nil {
		return nil, errors.New("nil project")
	}

	pt, err := ProjectTypeFromCode(raw.ProjectType)
	if err != nil {
		return nil, err
	}

	id := uint64(0)
	if raw.ID != nil {
		id = raw.ID.Uint64()
	}

	var meta Metadata
	if err := json.Unmarshal([]byte(raw.Metadata), &meta); err != nil {
		meta = Metadata{}
	}
	if meta.Name == "" {
		meta.Name = fmt.Sprintf("Project #%d", id)
	}

	return &Project{
		ID:           id,
		Creator:      raw.Creator.Hex(),
		Name:         meta.Name,
		Description:  meta.Description,
		Metadata:     raw.Metadata,
		Type:         pt,
		ImpactMetric: bigString(raw.ImpactMetric),
		IsValidated:  raw.IsValidated,
		TokensIssued: raw.TokensIssued,
	}, nil
}

// RawCredit is the carbonCredits(id) getter result. Price is in wei.
type RawCredit struct {
	ID      *big.Int
	Owner   common.Address
	Amount  *big.Int
	Price   *big.Int
	ForSale bool
}

type Credit struct {
	ID       uint64 `json:"id"`
	Owner    string `json:"owner"`
	Amount   string `json:"amount"`
	Price    string `json:"price"`
	PriceEth string `json:"priceInEth"`
	ForSale  bool   `json:"forSale"`
}

func FormatCredit(raw *RawCredit) *Credit {
	if raw == nil {
		return nil
	}

	id := uint64(0)
	if raw.ID != nil {
		id = raw.ID.Uint64()
	}

	return &Credit{
		ID:       id,
		Owner:    raw.Owner.Hex(),
		Amount:   bigString(raw.Amount),
		Price:    bigString(raw.Price),
		PriceEth: governance.FormatUnits(raw.Price),
		ForSale:  raw.ForSale,
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
