package urtypes

import (
	"fmt"

	"github.com/ngraveio/ur-registry-sub000/pkg/codec"
)

// Registry tags of the records defined in this package.
const (
	TagHDKey    uint64 = 303
	TagKeypath  uint64 = 304
	TagCoinInfo uint64 = 305
)

// Networks a coin can live on.
const (
	NetworkMainnet = 0
	NetworkTestnet = 1
)

// CoinInfo tells which coin, and on which network, a key is meant for. The
// zero value is bitcoin mainnet.
type CoinInfo struct {
	coinType uint32
	network  int
}

// NewCoinInfo returns the use info for the given BIP44 coin type and
// network.
func NewCoinInfo(coinType uint32, network int) (CoinInfo, error) {
	if coinType >= HardenedKeyStart {
		return CoinInfo{}, fmt.Errorf("%w: got %d", ErrCoinTypeOutOfRange, coinType)
	}
	return CoinInfo{coinType: coinType, network: network}, nil
}

// Type returns the BIP44 coin type.
func (c CoinInfo) Type() uint32 {
	return c.coinType
}

// Network returns the network identifier.
func (c CoinInfo) Network() int {
	return c.network
}

// CBORTag returns the registry tag of coin infos.
func (CoinInfo) CBORTag() uint64 {
	return TagCoinInfo
}

type coinInfoWire struct {
	Type    uint32 `cbor:"1,keyasint,omitempty"`
	Network int    `cbor:"2,keyasint,omitempty"`
}

// MarshalCBOR encodes the coin info as an untagged map, omitting default
// values.
func (c CoinInfo) MarshalCBOR() ([]byte, error) {
	return codec.Marshal(coinInfoWire{Type: c.coinType, Network: c.network})
}

// UnmarshalCBOR decodes an untagged coin info map.
func (c *CoinInfo) UnmarshalCBOR(data []byte) error {
	var w coinInfoWire
	if err := codec.Unmarshal(data, &w); err != nil {
		return decodeError(err)
	}
	decoded, err := NewCoinInfo(w.Type, w.Network)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// DecodeCoinInfo decodes an untagged coin info map.
func DecodeCoinInfo(data []byte) (CoinInfo, error) {
	var c CoinInfo
	if err := c.UnmarshalCBOR(data); err != nil {
		return CoinInfo{}, err
	}
	return c, nil
}
