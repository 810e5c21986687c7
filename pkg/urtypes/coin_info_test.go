package urtypes

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinInfoWire(t *testing.T) {
	tests := []struct {
		coinType uint32
		network  int
		encoded  string
	}{
		{0, NetworkMainnet, "a0"},
		{0, NetworkTestnet, "a10201"},
		{60, NetworkMainnet, "a101183c"},
		{60, NetworkTestnet, "a201183c0201"},
	}

	for _, tt := range tests {
		info, err := NewCoinInfo(tt.coinType, tt.network)
		require.NoError(t, err)

		data, err := info.MarshalCBOR()
		require.NoError(t, err)
		assert.Equal(t, tt.encoded, hex.EncodeToString(data))

		decoded, err := DecodeCoinInfo(data)
		require.NoError(t, err)
		assert.Equal(t, info, decoded)
	}
}

func TestFailingNewCoinInfo(t *testing.T) {
	_, err := NewCoinInfo(HardenedKeyStart, NetworkMainnet)
	assert.ErrorIs(t, err, ErrCoinTypeOutOfRange)
	assert.ErrorIs(t, err, ErrRange)
}
