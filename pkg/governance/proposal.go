package governance

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const day = 24 * time.Hour

// TimeEnded is shown once a proposal's voting window has closed.
const TimeEnded = "Ended"

// RawProposal is the getProposal tuple as returned by the governance contract.
type RawProposal struct {
	ID             *big.Int
	Creator        common.Address
	Title          string
	Description    string
	Category       uint8
	Status         uint8
	StartTime      *big.Int
	EndTime        *big.Int
	ForVotes       *big.Int
	AgainstVotes   *big.Int
	AbstainVotes   *big.Int
	Executed       bool
	TargetContract common.Address
}

type VotePercentages struct {
	For     int `json:"for"`
	Against int `json:"against"`
	Abstain int `json:"abstain"`
}

// Proposal is a RawProposal normalized for display.
type Proposal struct {
	ID             uint64          `json:"id"`
	Creator        string          `json:"creator"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       Category        `json:"category"`
	Status         Status          `json:"status"`
	StartTime      time.Time       `json:"startTime"`
	EndTime        time.Time       `json:"endTime"`
	TimeRemaining  string          `json:"timeRemaining"`
	Votes          VotePercentages `json:"votes"`
	ForVotes       string          `json:"forVotes"`
	AgainstVotes   string          `json:"againstVotes"`
	AbstainVotes   string          `json:"abstainVotes"`
	Executed       bool            `json:"executed"`
	TargetContract string          `json:"targetContract"`
	HasTarget      bool            `json:"hasTarget"`

	Raw *RawProposal `json:"-"`
}

// RawVoteInfo is the getVoteInfo result.
type RawVoteInfo struct {
	HasVoted bool
	VoteType uint8
	Weight   *big.Int
}

type VoteInfo struct {
	HasVoted bool      `json:"hasVoted"`
	VoteType *VoteType `json:"voteType"`
	Weight   string    `json:"weight"`
}

// EmptyVoteInfo is reported before the vote record has been fetched.
func EmptyVoteInfo() VoteInfo {
	return VoteInfo{Weight: "0"}
}

// FormatProposal normalizes a contract record. Unknown status or category
// codes are reported as errors.
func FormatProposal(raw *RawProposal, now time.Time) (*Proposal, error) {
	if raw == nil {
		return nil, fmt.Errorf("nil proposal")
	}

	status, err := StatusFromCode(raw.Status)
	if err != nil {
		return nil, err
	}

	category, err := CategoryFromCode(raw.Category)
	if err != nil {
		return nil, err
	}

	end := unixTime(raw.EndTime)

	return &Proposal{
		ID:             bigUint64(raw.ID),
		Creator:        raw.Creator.Hex(),
		Title:          raw.Title,
		Description:    raw.Description,
		Category:       category,
		Status:         status,
		StartTime:      unixTime(raw.StartTime),
		EndTime:        end,
		TimeRemaining:  TimeRemaining(end, now),
		Votes:          Percentages(raw.ForVotes, raw.AgainstVotes, raw.AbstainVotes),
		ForVotes:       FormatUnits(raw.ForVotes),
		AgainstVotes:   FormatUnits(raw.AgainstVotes),
		AbstainVotes:   FormatUnits(raw.AbstainVotes),
		Executed:       raw.Executed,
		TargetContract: raw.TargetContract.Hex(),
		HasTarget:      raw.TargetContract != (common.Address{}),
		Raw:            raw,
	}, nil
}

// FormatVoteInfo converts a getVoteInfo result. The vote type is only
// meaningful once the voter has voted.
func FormatVoteInfo(raw *RawVoteInfo) (VoteInfo, error) {
	if raw == nil || !raw.HasVoted {
		info := EmptyVoteInfo()
		if raw != nil && raw.Weight != nil {
			info.Weight = FormatUnits(raw.Weight)
		}
		return info, nil
	}

	vt, err := VoteTypeFromCode(raw.VoteType)
	if err != nil {
		return VoteInfo{}, err
	}

	return VoteInfo{
		HasVoted: true,
		VoteType: &vt,
		Weight:   FormatUnits(raw.Weight),
	}, nil
}

// TimeRemaining renders "{N} days" with N rounded up, or "Ended".
func TimeRemaining(end, now time.Time) string {
	if !end.After(now) {
		return TimeEnded
	}

	remaining := end.Sub(now)
	days := int64((remaining + day - 1) / day)
	if days < 1 {
		days = 1
	}

	return fmt.Sprintf("%d days", days)
}

// Percentages rounds each tally to the nearest whole percent of the total
// cast. All zero when nothing has been cast.
func Percentages(forVotes, againstVotes, abstainVotes *big.Int) VotePercentages {
	total := new(big.Int)
	for _, v := range []*big.Int{forVotes, againstVotes, abstainVotes} {
		if v != nil {
			total.Add(total, v)
		}
	}

	if total.Sign() == 0 {
		return VotePercentages{}
	}

	return VotePercentages{
		For:     percent(forVotes, total),
		Against: percent(againstVotes, total),
		Abstain: percent(abstainVotes, total),
	}
}

// percent computes round(v*100/total) with halves rounded up.
func percent(v, total *big.Int) int {
	if v == nil {
		return 0
	}

	num := new(big.Int).Mul(v, big.NewInt(200))
	num.Add(num, total)
	den := new(big.Int).Mul(total, big.NewInt(2))

	return int(num.Quo(num, den).Int64())
}

func unixTime(v *big.Int) time.Time {
	if v == nil {
		return time.Unix(0, 0).UTC()
	}
	return time.Unix(v.Int64(), 0).UTC()
}

func bigUint64(v *big.Int) uint64 {
	if v == nil {
		return 0
	}
	return v.Uint64()
}
