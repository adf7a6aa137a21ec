package common

import (
	"math/big"
	"strings"
)

// HexToBigInt parses a hex quantity with or without the 0x prefix. Invalid
// input yields zero.
func HexToBigInt(hex string) *big.Int {
	hex = strings.TrimPrefix(strings.TrimPrefix(hex, "0x"), "0X")

	i, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		return big.NewInt(0)
	}

	return i
}
