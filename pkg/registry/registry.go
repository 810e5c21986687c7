// Package registry maps CBOR tags to the record types able to decode them.
//
// Records know how to encode themselves as untagged maps; the registry adds
// the outer tag on encoding and picks the decoder from it on decoding:
//
//	data, err := registry.Encode(keypath)
//	value, err := registry.Default.Decode(data)
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ngraveio/ur-registry-sub000/pkg/codec"
	"github.com/ngraveio/ur-registry-sub000/pkg/urtypes"
)

var (
	// ErrUnknownTag ...
	ErrUnknownTag = fmt.Errorf("%w: unknown tag", urtypes.ErrDecode)
	// ErrTagAlreadyRegistered ...
	ErrTagAlreadyRegistered = errors.New("tag is already registered")
	// ErrNullDecoder ...
	ErrNullDecoder = errors.New("decoder must not be null")
)

// Tagged is implemented by every record the registry can encode.
type Tagged interface {
	CBORTag() uint64
	MarshalCBOR() ([]byte, error)
}

// DecodeFunc decodes the untagged content of a record.
type DecodeFunc func(content []byte) (interface{}, error)

// Registry is a tag to decoder table. The zero value is empty and ready to
// use.
type Registry struct {
	mu       sync.RWMutex
	decoders map[uint64]DecodeFunc
}

// Default knows every record of the urtypes package.
var Default = New()

// New returns a registry knowing every record of the urtypes package.
func New() *Registry {
	r := &Registry{}
	r.mustRegister(urtypes.TagHDKey, func(content []byte) (interface{}, error) {
		return urtypes.DecodeHDKey(content)
	})
	r.mustRegister(urtypes.TagKeypath, func(content []byte) (interface{}, error) {
		return urtypes.DecodeKeypath(content)
	})
	r.mustRegister(urtypes.TagCoinInfo, func(content []byte) (interface{}, error) {
		return urtypes.DecodeCoinInfo(content)
	})
	return r
}

func (r *Registry) mustRegister(tag uint64, decode DecodeFunc) {
	if err := r.Register(tag, decode); err != nil {
		panic(err)
	}
}

// Register adds a decoder for tag.
func (r *Registry) Register(tag uint64, decode DecodeFunc) error {
	if decode == nil {
		return ErrNullDecoder
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.decoders == nil {
		r.decoders = make(map[uint64]DecodeFunc)
	}
	if _, ok := r.decoders[tag]; ok {
		return fmt.Errorf("%w: %d", ErrTagAlreadyRegistered, tag)
	}
	r.decoders[tag] = decode
	return nil
}

// Tags returns the number of registered tags.
func (r *Registry) Tags() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.decoders)
}

// Decode reads a tagged record and returns the value built by the decoder
// registered for its tag.
func (r *Registry) Decode(data []byte) (interface{}, error) {
	var tag codec.RawTag
	if err := codec.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("%w: %v", urtypes.ErrDecode, err)
	}

	r.mu.RLock()
	decode, ok := r.decoders[tag.Number]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnknownTag, tag.Number)
	}
	return decode(tag.Content)
}

// Encode returns the tagged encoding of v.
func Encode(v Tagged) ([]byte, error) {
	content, err := v.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	return codec.Marshal(codec.RawTag{Number: v.CBORTag(), Content: content})
}
