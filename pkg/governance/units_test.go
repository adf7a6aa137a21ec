package governance

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"0", "0"},
		{"1", "1000000000000000000"},
		{"1.5", "1500000000000000000"},
		{" 42 ", "42000000000000000000"},
		{"0.000000000000000001", "1"},
		{"100000000", "100000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			v, err := ParseUnits(tt.amount)
			require.NoError(t, err)
			require.Equal(t, tt.expected, v.String())
		})
	}
}

func TestParseUnitsInvalid(t *testing.T) {
	for _, amount := range []string{"", "abc", "-1", "0.0000000000000000001", "1,5"} {
		t.Run(amount, func(t *testing.T) {
			_, err := ParseUnits(amount)
			require.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"0", "0"},
		{"1", "0.000000000000000001"},
		{"1500000000000000000", "1.5"},
		{"42000000000000000000", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, ok := new(big.Int).SetString(tt.raw, 10)
			require.True(t, ok)
			require.Equal(t, tt.expected, FormatUnits(v))
		})
	}

	require.Equal(t, "0", FormatUnits(nil))
}
