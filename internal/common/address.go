package common

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsSameHexAddress compares hex addresses ignoring checksum case.
func IsSameHexAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}

// ParseAddress rejects anything that is not a 20 byte hex address.
func ParseAddress(addr string) (common.Address, error) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("invalid address: %q", addr)
	}

	return common.HexToAddress(addr), nil
}
