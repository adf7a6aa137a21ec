package chaintest

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oceanguard/govclient/pkg/governance"
)

var Creator = common.HexToAddress("0x480fbe37526226b6c6e2a7afa449cdf661939d2f")

// Tokens returns n whole tokens in base units.
func Tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}

// RawProposal builds an active Infrastructure proposal ending a week after
// start.
func RawProposal(id uint64, start time.Time) *governance.RawProposal {
	return &governance.RawProposal{
		ID:           new(big.Int).SetUint64(id),
		Creator:      Creator,
		Title:        fmt.Sprintf("Proposal %d", id),
		Description:  "Fund reef monitoring",
		Category:     uint8(governance.CategoryInfrastructure),
		Status:       uint8(governance.StatusActive),
		StartTime:    big.NewInt(start.Unix()),
		EndTime:      big.NewInt(start.Add(7 * 24 * time.Hour).Unix()),
		ForVotes:     Tokens(3),
		AgainstVotes: Tokens(1),
		AbstainVotes: new(big.Int),
	}
}
