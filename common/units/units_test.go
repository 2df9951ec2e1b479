package units

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     string
		wantErr  bool
	}{
		{name: "whole 18 decimals", amount: "1", decimals: 18, want: "1000000000000000000"},
		{name: "fractional 18 decimals", amount: "1.5", decimals: 18, want: "1500000000000000000"},
		{name: "six decimals", amount: "25", decimals: 6, want: "25000000"},
		{name: "sub unit", amount: "0.000001", decimals: 6, want: "1"},
		{name: "zero", amount: "0", decimals: 18, want: "0"},
		{name: "leading dot", amount: ".5", decimals: 2, want: "50"},
		{name: "too many decimals", amount: "0.1234567", decimals: 6, wantErr: true},
		{name: "negative", amount: "-1", decimals: 18, wantErr: true},
		{name: "garbage", amount: "ten", decimals: 18, wantErr: true},
		{name: "empty", amount: "", decimals: 18, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(tt.amount, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	wei := func(s string) *big.Int {
		v, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok)
		return v
	}

	assert.Equal(t, "1", FromBaseUnits(wei("1000000000000000000"), 18))
	assert.Equal(t, "1.5", FromBaseUnits(wei("1500000000000000000"), 18))
	assert.Equal(t, "0.000000000000000001", FromBaseUnits(wei("1"), 18))
	assert.Equal(t, "25", FromBaseUnits(wei("25000000"), 6))
	assert.Equal(t, "0", FromBaseUnits(big.NewInt(0), 18))
	assert.Equal(t, "0", FromBaseUnits(nil, 18))
	assert.Equal(t, "42", FromBaseUnits(big.NewInt(42), 0))
}

func TestRoundTrip(t *testing.T) {
	for _, decimals := range []uint8{6, 18} {
		for _, amount := range []string{"1", "0.5", "123.456", "0.000001"} {
			base, err := ToBaseUnits(amount, decimals)
			require.NoError(t, err)
			assert.Equal(t, amount, FromBaseUnits(base, decimals))
		}
	}
}
