package governance

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCategory = errors.New("unknown proposal category")
	ErrUnknownStatus   = errors.New("unknown proposal status")
	ErrUnknownVoteType = errors.New("unknown vote type")
)

// Category mirrors OceanGuardGovernance.ProposalCategory.
type Category uint8

const (
	CategoryInfrastructure Category = iota
	CategoryTokenomics
	CategoryPartnership
	CategoryProtocol
	CategoryResearch
	CategoryOther
)

var Categories = []Category{
	CategoryInfrastructure,
	CategoryTokenomics,
	CategoryPartnership,
	CategoryProtocol,
	CategoryResearch,
	CategoryOther,
}

func (c Category) String() string {
	switch c {
	case CategoryInfrastructure:
		return "Infrastructure"
	case CategoryTokenomics:
		return "Tokenomics"
	case CategoryPartnership:
		return "Partnership"
	case CategoryProtocol:
		return "Protocol"
	case CategoryResearch:
		return "Research"
	case CategoryOther:
		return "Other"
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

func (c Category) Valid() bool {
	return c <= CategoryOther
}

// CategoryFromCode converts the on-chain enum value, rejecting codes the
// client does not know about.
func CategoryFromCode(code uint8) (Category, error) {
	c := Category(code)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCategory, code)
	}
	return c, nil
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(c.String(), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Status mirrors OceanGuardGovernance.ProposalStatus.
type Status uint8

const (
	StatusActive Status = iota
	StatusPassed
	StatusFailed
	StatusCanceled
)

var Statuses = []Status{
	StatusActive,
	StatusPassed,
	StatusFailed,
	StatusCanceled,
}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusPassed:
		return "Passed"
	case StatusFailed:
		return "Failed"
	case StatusCanceled:
		return "Canceled"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

func (s Status) Valid() bool {
	return s <= StatusCanceled
}

func StatusFromCode(code uint8) (Status, error) {
	s := Status(code)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownStatus, code)
	}
	return s, nil
}

func ParseStatus(str string) (Status, error) {
	for _, s := range Statuses {
		if strings.EqualFold(s.String(), strings.TrimSpace(str)) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, str)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// VoteType mirrors OceanGuardGovernance.VoteType.
type VoteType uint8

const (
	VoteFor VoteType = iota
	VoteAgainst
	VoteAbstain
)

var VoteTypes = []VoteType{
	VoteFor,
	VoteAgainst,
	VoteAbstain,
}

func (v VoteType) String() string {
	switch v {
	case VoteFor:
		return "For"
	case VoteAgainst:
		return "Against"
	case VoteAbstain:
		return "Abstain"
	}
	return fmt.Sprintf("VoteType(%d)", uint8(v))
}

func (v VoteType) Valid() bool {
	return v <= VoteAbstain
}

func VoteTypeFromCode(code uint8) (VoteType, error) {
	v := VoteType(code)
	if !v.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownVoteType, code)
	}
	return v, nil
}

func ParseVoteType(s string) (VoteType, error) {
	for _, v := range VoteTypes {
		if strings.EqualFold(v.String(), strings.TrimSpace(s)) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVoteType, s)
}

func (v VoteType) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVoteType, uint8(v))
	}
	return []byte(v.String()), nil
}

func (v *VoteType) UnmarshalText(b []byte) error {
	p, err := ParseVoteType(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}
