package urtypes

import (
	"fmt"

	"github.com/ngraveio/ur-registry-sub000/pkg/codec"
)

// HDKey is a BIP32 key record: either a master key, always private, or a
// derived key optionally described by its origin, its children, the coin
// it is meant for and a name.
type HDKey struct {
	master               bool
	private              bool
	keyData              [KeyDataLen]byte
	chainCode            [ChainCodeLen]byte
	hasChainCode         bool
	useInfo              *CoinInfo
	origin               *Keypath
	children             *Keypath
	parentFingerprint    uint32
	hasParentFingerprint bool
	name                 string
	note                 string
}

// NewMasterKey returns a master key record. Both the key data and the chain
// code are mandatory.
func NewMasterKey(keyData, chainCode []byte) (HDKey, error) {
	if len(keyData) != KeyDataLen {
		return HDKey{}, fmt.Errorf("%w, got %d", ErrInvalidKeyDataLength, len(keyData))
	}
	if len(chainCode) == 0 {
		return HDKey{}, ErrMissingChainCode
	}
	if len(chainCode) != ChainCodeLen {
		return HDKey{}, fmt.Errorf("%w, got %d", ErrInvalidChainCodeLength, len(chainCode))
	}

	k := HDKey{master: true, private: true, hasChainCode: true}
	copy(k.keyData[:], keyData)
	copy(k.chainCode[:], chainCode)
	return k, nil
}

// DerivedKeyOpts is the struct given to NewDerivedKey. Nil and empty
// fields are absent.
type DerivedKeyOpts struct {
	IsPrivate         bool
	KeyData           []byte
	ChainCode         []byte
	UseInfo           *CoinInfo
	Origin            *Keypath
	Children          *Keypath
	ParentFingerprint *uint32
	Name              string
	Note              string
}

func (o DerivedKeyOpts) validate() error {
	if len(o.KeyData) != KeyDataLen {
		return fmt.Errorf("%w, got %d", ErrInvalidKeyDataLength, len(o.KeyData))
	}
	if len(o.ChainCode) > 0 && len(o.ChainCode) != ChainCodeLen {
		return fmt.Errorf("%w, got %d", ErrInvalidChainCodeLength, len(o.ChainCode))
	}

	if o.Origin != nil && o.ParentFingerprint != nil && o.Origin.Len() == 1 {
		if source, ok := o.Origin.SourceFingerprint(); ok && source != *o.ParentFingerprint {
			return fmt.Errorf(
				"%w: source fingerprint is %08x, parent fingerprint is %08x",
				ErrParentFingerprintMismatch, source, *o.ParentFingerprint,
			)
		}
	}

	if o.UseInfo != nil && o.Origin != nil {
		if o.Origin.Len() < 2 {
			return fmt.Errorf(
				"%w: origin %q has no coin type component", ErrCoinTypeMismatch, o.Origin,
			)
		}
		coinType, ok := o.Origin.Component(1).Index()
		if !ok || coinType != o.UseInfo.Type() {
			return fmt.Errorf(
				"%w: origin %q, coin type %d", ErrCoinTypeMismatch, o.Origin, o.UseInfo.Type(),
			)
		}
	}

	if o.Children != nil && !o.IsPrivate && o.Children.IsHardened() {
		return fmt.Errorf("%w: children %q", ErrHardenedPublicChildren, o.Children)
	}

	return nil
}

// NewDerivedKey returns a derived key record after checking the
// consistency of its fields.
func NewDerivedKey(opts DerivedKeyOpts) (HDKey, error) {
	if err := opts.validate(); err != nil {
		return HDKey{}, err
	}

	k := HDKey{private: opts.IsPrivate, name: opts.Name, note: opts.Note}
	copy(k.keyData[:], opts.KeyData)
	if len(opts.ChainCode) > 0 {
		copy(k.chainCode[:], opts.ChainCode)
		k.hasChainCode = true
	}
	if opts.UseInfo != nil {
		useInfo := *opts.UseInfo
		k.useInfo = &useInfo
	}
	if opts.Origin != nil {
		origin := opts.Origin.clone()
		k.origin = &origin
	}
	if opts.Children != nil {
		children := opts.Children.clone()
		k.children = &children
	}
	if opts.ParentFingerprint != nil {
		k.parentFingerprint = *opts.ParentFingerprint
		k.hasParentFingerprint = true
	}
	return k, nil
}

// IsMaster reports whether the record is a master key.
func (k HDKey) IsMaster() bool {
	return k.master
}

// IsPrivate reports whether the key data is a private key.
func (k HDKey) IsPrivate() bool {
	return k.private
}

// KeyData returns a copy of the 33 bytes key data.
func (k HDKey) KeyData() []byte {
	return append([]byte(nil), k.keyData[:]...)
}

// ChainCode returns a copy of the chain code, or nil if absent.
func (k HDKey) ChainCode() []byte {
	if !k.hasChainCode {
		return nil
	}
	return append([]byte(nil), k.chainCode[:]...)
}

// UseInfo returns the coin the key is meant for, if set.
func (k HDKey) UseInfo() (CoinInfo, bool) {
	if k.useInfo == nil {
		return CoinInfo{}, false
	}
	return *k.useInfo, true
}

// Origin returns the path that led to this key, if set.
func (k HDKey) Origin() (Keypath, bool) {
	if k.origin == nil {
		return Keypath{}, false
	}
	return k.origin.clone(), true
}

// Children returns the path of the keys derivable from this one, if set.
func (k HDKey) Children() (Keypath, bool) {
	if k.children == nil {
		return Keypath{}, false
	}
	return k.children.clone(), true
}

// ParentFingerprint returns the fingerprint of the parent key, if set.
func (k HDKey) ParentFingerprint() (uint32, bool) {
	return k.parentFingerprint, k.hasParentFingerprint
}

// Name returns the short name of the key, empty if unset.
func (k HDKey) Name() string {
	return k.name
}

// Note returns the free text note of the key, empty if unset.
func (k HDKey) Note() string {
	return k.note
}

// CBORTag returns the registry tag of hd keys.
func (HDKey) CBORTag() uint64 {
	return TagHDKey
}

// ExtendedKey projects the record to its BIP32 layout. The network comes
// from the use info, mainnet if unset; depth and child number come from
// the origin.
func (k HDKey) ExtendedKey() (ExtendedKey, error) {
	if !k.hasChainCode {
		return ExtendedKey{}, ErrMissingChainCode
	}

	network := NetworkMainnet
	if k.useInfo != nil {
		network = k.useInfo.Network()
	}
	version, err := VersionFor(k.private, network)
	if err != nil {
		return ExtendedKey{}, err
	}

	ek := ExtendedKey{
		version:   version,
		chainCode: k.chainCode,
		keyData:   k.keyData,
	}
	if k.origin != nil {
		ek.depth = k.origin.EffectiveDepth()
		if n := k.origin.Len(); n > 0 {
			last := k.origin.Component(n - 1)
			childNumber, ok := last.ChildNumber()
			if !ok {
				return ExtendedKey{}, fmt.Errorf(
					"%w: last origin step is a %s", ErrPathMismatch, last.Kind(),
				)
			}
			ek.childNumber = childNumber
		}
	}
	if k.hasParentFingerprint {
		ek.parentFingerprint = k.parentFingerprint
	}

	if err := ek.validate(); err != nil {
		return ExtendedKey{}, err
	}
	return ek, nil
}

// BIP32Key returns the base58check xpub/xprv form of the record.
func (k HDKey) BIP32Key() (string, error) {
	ek, err := k.ExtendedKey()
	if err != nil {
		return "", err
	}
	return ek.String(), nil
}

// ImportOpts is the struct given to NewHDKeyFromExtendedKey.
type ImportOpts struct {
	// Origin, if set, is checked against the depth and child number of
	// the extended key.
	Origin   *Keypath
	Children *Keypath
	UseInfo  *CoinInfo
	Name     string
	Note     string
}

// NewHDKeyFromExtendedKey builds a record from an xpub/xprv string.
//
// A private key of depth 0 becomes a master key. Any other key becomes a
// derived key; when neither origin nor use info is given, a partial origin
// holding the key depth and its child number is recorded so that BIP32Key
// reproduces the same string.
//
// The network of a non mainnet key is kept as use info only when the origin
// can agree with it, that is when there is no origin or its second step is
// an index, used as coin type. Otherwise the record has no use info and
// exports on mainnet.
func NewHDKeyFromExtendedKey(key string, opts ImportOpts) (HDKey, error) {
	ek, err := DecodeExtendedKey(key)
	if err != nil {
		return HDKey{}, err
	}
	if opts.Origin != nil {
		if err := ek.CheckPath(*opts.Origin); err != nil {
			return HDKey{}, err
		}
	}
	if opts.UseInfo != nil && opts.UseInfo.Network() != ek.Network() {
		return HDKey{}, fmt.Errorf(
			"%w: key network is %d, use info network is %d",
			ErrNetworkMismatch, ek.Network(), opts.UseInfo.Network(),
		)
	}

	if ek.IsMaster() && ek.IsPrivate() {
		if opts.Origin != nil || opts.Children != nil || opts.UseInfo != nil ||
			opts.Name != "" || opts.Note != "" {
			return HDKey{}, ErrMasterExtraFields
		}
		return NewMasterKey(ek.keyData[:], ek.chainCode[:])
	}

	origin := opts.Origin
	if origin == nil && opts.UseInfo == nil && !ek.IsMaster() {
		partial, err := partialOrigin(ek)
		if err != nil {
			return HDKey{}, err
		}
		origin = &partial
	}

	useInfo := opts.UseInfo
	if useInfo == nil && ek.Network() != NetworkMainnet {
		info, ok, err := networkUseInfo(ek.Network(), origin)
		if err != nil {
			return HDKey{}, err
		}
		if ok {
			useInfo = &info
		}
	}

	derivedOpts := DerivedKeyOpts{
		IsPrivate: ek.IsPrivate(),
		KeyData:   ek.keyData[:],
		ChainCode: ek.chainCode[:],
		UseInfo:   useInfo,
		Origin:    origin,
		Children:  opts.Children,
		Name:      opts.Name,
		Note:      opts.Note,
	}
	if !ek.IsMaster() {
		parentFingerprint := ek.parentFingerprint
		derivedOpts.ParentFingerprint = &parentFingerprint
	}
	return NewDerivedKey(derivedOpts)
}

// networkUseInfo returns use info on network consistent with origin, if any.
func networkUseInfo(network int, origin *Keypath) (CoinInfo, bool, error) {
	if origin == nil {
		info, err := NewCoinInfo(0, network)
		return info, err == nil, err
	}
	if origin.Len() < 2 {
		return CoinInfo{}, false, nil
	}
	coinType, ok := origin.Component(1).Index()
	if !ok {
		return CoinInfo{}, false, nil
	}
	info, err := NewCoinInfo(coinType, network)
	return info, err == nil, err
}

func partialOrigin(ek ExtendedKey) (Keypath, error) {
	index := ek.childNumber
	hardened := index >= HardenedKeyStart
	if hardened {
		index -= HardenedKeyStart
	}
	child, err := NewIndexComponent(index, hardened)
	if err != nil {
		return Keypath{}, err
	}
	depth := ek.depth
	return NewKeypath([]PathComponent{child}, KeypathOpts{Depth: &depth})
}

type hdKeyWire struct {
	IsMaster          bool          `cbor:"1,keyasint,omitempty"`
	IsPrivate         bool          `cbor:"2,keyasint,omitempty"`
	KeyData           []byte        `cbor:"3,keyasint"`
	ChainCode         []byte        `cbor:"4,keyasint,omitempty"`
	UseInfo           *codec.RawTag `cbor:"5,keyasint,omitempty"`
	Origin            *codec.RawTag `cbor:"6,keyasint,omitempty"`
	Children          *codec.RawTag `cbor:"7,keyasint,omitempty"`
	ParentFingerprint *uint32       `cbor:"8,keyasint,omitempty"`
	Name              string        `cbor:"9,keyasint,omitempty"`
	Note              string        `cbor:"10,keyasint,omitempty"`
}

// MarshalCBOR encodes the record as an untagged map. Nested coin info and
// keypaths are tagged.
func (k HDKey) MarshalCBOR() ([]byte, error) {
	if k.master {
		return codec.Marshal(hdKeyWire{
			IsMaster:  true,
			KeyData:   k.keyData[:],
			ChainCode: k.chainCode[:],
		})
	}

	w := hdKeyWire{
		IsPrivate: k.private,
		KeyData:   k.keyData[:],
		Name:      k.name,
		Note:      k.note,
	}
	if k.hasChainCode {
		w.ChainCode = k.chainCode[:]
	}
	var err error
	if k.useInfo != nil {
		if w.UseInfo, err = tagged(*k.useInfo); err != nil {
			return nil, err
		}
	}
	if k.origin != nil {
		if w.Origin, err = tagged(*k.origin); err != nil {
			return nil, err
		}
	}
	if k.children != nil {
		if w.Children, err = tagged(*k.children); err != nil {
			return nil, err
		}
	}
	if k.hasParentFingerprint {
		parentFingerprint := k.parentFingerprint
		w.ParentFingerprint = &parentFingerprint
	}
	return codec.Marshal(w)
}

// UnmarshalCBOR decodes an untagged hd key map and validates it as the
// constructors do.
func (k *HDKey) UnmarshalCBOR(data []byte) error {
	var w hdKeyWire
	if err := codec.Unmarshal(data, &w); err != nil {
		return decodeError(err)
	}
	if len(w.KeyData) == 0 {
		return ErrMissingKeyData
	}

	if w.IsMaster {
		if w.ParentFingerprint != nil {
			return ErrMasterParentFingerprint
		}
		if w.UseInfo != nil || w.Origin != nil || w.Children != nil ||
			w.Name != "" || w.Note != "" {
			return ErrMasterExtraFields
		}
		decoded, err := NewMasterKey(w.KeyData, w.ChainCode)
		if err != nil {
			return err
		}
		*k = decoded
		return nil
	}

	opts := DerivedKeyOpts{
		IsPrivate:         w.IsPrivate,
		KeyData:           w.KeyData,
		ChainCode:         w.ChainCode,
		ParentFingerprint: w.ParentFingerprint,
		Name:              w.Name,
		Note:              w.Note,
	}
	if w.UseInfo != nil {
		var useInfo CoinInfo
		if err := untag(w.UseInfo, TagCoinInfo, &useInfo); err != nil {
			return err
		}
		opts.UseInfo = &useInfo
	}
	if w.Origin != nil {
		var origin Keypath
		if err := untag(w.Origin, TagKeypath, &origin); err != nil {
			return err
		}
		opts.Origin = &origin
	}
	if w.Children != nil {
		var children Keypath
		if err := untag(w.Children, TagKeypath, &children); err != nil {
			return err
		}
		opts.Children = &children
	}

	decoded, err := NewDerivedKey(opts)
	if err != nil {
		return err
	}
	*k = decoded
	return nil
}

// DecodeHDKey decodes an untagged hd key map.
func DecodeHDKey(data []byte) (HDKey, error) {
	var k HDKey
	if err := k.UnmarshalCBOR(data); err != nil {
		return HDKey{}, err
	}
	return k, nil
}

type taggedValue interface {
	CBORTag() uint64
	MarshalCBOR() ([]byte, error)
}

func tagged(v taggedValue) (*codec.RawTag, error) {
	content, err := v.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	return &codec.RawTag{Number: v.CBORTag(), Content: content}, nil
}

type untaggedValue interface {
	UnmarshalCBOR([]byte) error
}

func untag(tag *codec.RawTag, number uint64, v untaggedValue) error {
	if tag.Number != number {
		return fmt.Errorf("%w %d, expected %d", ErrUnexpectedTag, tag.Number, number)
	}
	return v.UnmarshalCBOR(tag.Content)
}
