package urtypes

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// KeyDataLen is the length of serialized key data: a compressed
	// public key, or a private key prefixed by 0x00.
	KeyDataLen = 33
	// ChainCodeLen is the length of a BIP32 chain code.
	ChainCodeLen = 32

	serializedKeyLen = 4 + 1 + 4 + 4 + ChainCodeLen + KeyDataLen
	checksumLen      = 4
)

type keyVersion struct {
	private bool
	network int
}

var keyVersions = map[[4]byte]keyVersion{
	chaincfg.MainNetParams.HDPrivateKeyID:  {private: true, network: NetworkMainnet},
	chaincfg.MainNetParams.HDPublicKeyID:   {private: false, network: NetworkMainnet},
	chaincfg.TestNet3Params.HDPrivateKeyID: {private: true, network: NetworkTestnet},
	chaincfg.TestNet3Params.HDPublicKeyID:  {private: false, network: NetworkTestnet},
}

// VersionFor returns the extended key version bytes of a private or public
// key on the given network.
func VersionFor(private bool, network int) ([4]byte, error) {
	var params *chaincfg.Params
	switch network {
	case NetworkMainnet:
		params = &chaincfg.MainNetParams
	case NetworkTestnet:
		params = &chaincfg.TestNet3Params
	default:
		return [4]byte{}, fmt.Errorf("%w: got %d", ErrUnknownNetwork, network)
	}
	if private {
		return params.HDPrivateKeyID, nil
	}
	return params.HDPublicKeyID, nil
}

// ExtendedKey is the decoded form of a BIP32 xpub/xprv string.
type ExtendedKey struct {
	version           [4]byte
	depth             uint8
	parentFingerprint uint32
	childNumber       uint32
	chainCode         [ChainCodeLen]byte
	keyData           [KeyDataLen]byte
}

// DecodeExtendedKey parses a base58check encoded BIP32 extended key.
func DecodeExtendedKey(key string) (ExtendedKey, error) {
	raw := base58.Decode(key)
	if len(raw) != serializedKeyLen+checksumLen {
		return ExtendedKey{}, fmt.Errorf("%w, got %d", ErrInvalidExtendedKeyLength, len(raw))
	}

	payload, checksum := raw[:serializedKeyLen], raw[serializedKeyLen:]
	if !bytes.Equal(chainhash.DoubleHashB(payload)[:checksumLen], checksum) {
		return ExtendedKey{}, ErrChecksumMismatch
	}

	var k ExtendedKey
	copy(k.version[:], payload[0:4])
	k.depth = payload[4]
	k.parentFingerprint = binary.BigEndian.Uint32(payload[5:9])
	k.childNumber = binary.BigEndian.Uint32(payload[9:13])
	copy(k.chainCode[:], payload[13:45])
	copy(k.keyData[:], payload[45:78])

	if err := k.validate(); err != nil {
		return ExtendedKey{}, err
	}
	return k, nil
}

func (k ExtendedKey) validate() error {
	v, ok := keyVersions[k.version]
	if !ok {
		return fmt.Errorf("%w %x", ErrUnknownKeyVersion, k.version)
	}

	if v.private {
		if k.keyData[0] != 0x00 {
			return ErrInvalidKeyPrefix
		}
	} else {
		if k.keyData[0] != 0x02 && k.keyData[0] != 0x03 {
			return ErrInvalidKeyPrefix
		}
		if _, err := btcec.ParsePubKey(k.keyData[:]); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
	}

	if k.depth == 0 && (k.parentFingerprint != 0 || k.childNumber != 0) {
		return ErrInvalidMasterKey
	}
	return nil
}

// String encodes the key in its base58check form.
func (k ExtendedKey) String() string {
	payload := make([]byte, serializedKeyLen, serializedKeyLen+checksumLen)
	copy(payload[0:4], k.version[:])
	payload[4] = k.depth
	binary.BigEndian.PutUint32(payload[5:9], k.parentFingerprint)
	binary.BigEndian.PutUint32(payload[9:13], k.childNumber)
	copy(payload[13:45], k.chainCode[:])
	copy(payload[45:78], k.keyData[:])

	checksum := chainhash.DoubleHashB(payload)[:checksumLen]
	return base58.Encode(append(payload, checksum...))
}

// Version returns the version bytes.
func (k ExtendedKey) Version() [4]byte {
	return k.version
}

// Depth returns the number of derivation steps from the master key.
func (k ExtendedKey) Depth() uint8 {
	return k.depth
}

// ParentFingerprint returns the fingerprint of the parent key, zero for
// master keys.
func (k ExtendedKey) ParentFingerprint() uint32 {
	return k.parentFingerprint
}

// ChildNumber returns the child number, including the hardened bit.
func (k ExtendedKey) ChildNumber() uint32 {
	return k.childNumber
}

// ChainCode returns a copy of the chain code.
func (k ExtendedKey) ChainCode() []byte {
	return append([]byte(nil), k.chainCode[:]...)
}

// KeyData returns a copy of the 33 bytes key data.
func (k ExtendedKey) KeyData() []byte {
	return append([]byte(nil), k.keyData[:]...)
}

// IsPrivate reports whether the key carries private key material.
func (k ExtendedKey) IsPrivate() bool {
	return keyVersions[k.version].private
}

// IsMaster reports whether the key sits at depth 0.
func (k ExtendedKey) IsMaster() bool {
	return k.depth == 0
}

// Network returns the network the version bytes belong to.
func (k ExtendedKey) Network() int {
	return keyVersions[k.version].network
}

// CheckPath verifies that the key can sit at the end of path: the depth
// must match the path depth and the child number must match its last
// step.
func (k ExtendedKey) CheckPath(path Keypath) error {
	if depth := path.EffectiveDepth(); depth != k.depth {
		return fmt.Errorf(
			"%w: key depth is %d, path depth is %d", ErrPathMismatch, k.depth, depth,
		)
	}

	if path.Len() == 0 {
		if k.childNumber != 0 {
			return fmt.Errorf("%w: empty path with child number %d", ErrPathMismatch, k.childNumber)
		}
		return nil
	}

	last := path.Component(path.Len() - 1)
	childNumber, ok := last.ChildNumber()
	if !ok {
		return fmt.Errorf("%w: last path step is a %s", ErrPathMismatch, last.Kind())
	}
	if childNumber != k.childNumber {
		return fmt.Errorf(
			"%w: key child number is %d, path ends with %s",
			ErrPathMismatch, k.childNumber, last,
		)
	}
	return nil
}
