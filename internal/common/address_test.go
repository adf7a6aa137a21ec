package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress(" 0x480fbe37526226b6c6e2a7afa449cdf661939d2f ")
	require.NoError(t, err)
	require.Equal(t, "0x480Fbe37526226b6c6E2a7AfA449cDf661939D2f", addr.Hex())

	_, err = ParseAddress("0x1234")
	require.Error(t, err)

}

func TestIsSameHexAddress(t *testing.T) {
	require.True(t, IsSameHexAddress("0x480Fbe37526226b6c6E2a7AfA449cDf661939D2f", "0x480fbe37526226b6c6e2a7afa449cdf661939d2f"))
	require.False(t, IsSameHexAddress("0x480fbe37526226b6c6e2a7afa449cdf661939d2f", "0x1234567890123456789012345678901234567890"))
}
