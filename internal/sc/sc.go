package sc

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// proposalTuple matches the getProposal return struct field for field.
type proposalTuple struct {
	Id             *big.Int
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
