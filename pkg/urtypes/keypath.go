package urtypes

import (
	"strings"

	"github.com/ngraveio/ur-registry-sub000/pkg/codec"
)

// maxPathDepth is the deepest path a BIP32 depth byte can describe.
const maxPathDepth = 255

// KeypathOpts is the struct given to NewKeypath and NewKeypathFromString.
// Nil fields are absent.
type KeypathOpts struct {
	SourceFingerprint *uint32
	Depth             *uint8
}

// Keypath is an ordered derivation path, optionally anchored to the
// fingerprint of the key it starts from.
type Keypath struct {
	components           []PathComponent
	sourceFingerprint    uint32
	hasSourceFingerprint bool
	depth                uint8
	hasDepth             bool
}

// NewKeypath builds a keypath from already constructed components.
func NewKeypath(components []PathComponent, opts KeypathOpts) (Keypath, error) {
	if len(components) > maxPathDepth {
		return Keypath{}, ErrPathTooDeep
	}

	k := Keypath{components: make([]PathComponent, len(components))}
	copy(k.components, components)

	if opts.SourceFingerprint != nil {
		if *opts.SourceFingerprint == 0 {
			return Keypath{}, ErrNullSourceFingerprint
		}
		k.sourceFingerprint = *opts.SourceFingerprint
		k.hasSourceFingerprint = true
	}
	if len(k.components) == 0 && !k.hasSourceFingerprint {
		return Keypath{}, ErrMissingSourceFingerprint
	}
	if opts.Depth != nil {
		k.depth = *opts.Depth
		k.hasDepth = true
	}

	return k, nil
}

// NewKeypathFromString parses a path like m/44'/0'/0'/<0;1>/*. The leading
// "m" or "m/" is optional.
func NewKeypathFromString(path string, opts KeypathOpts) (Keypath, error) {
	switch {
	case path == "m":
		path = ""
	case strings.HasPrefix(path, "m/"):
		path = path[2:]
	}

	var components []PathComponent
	if path != "" {
		segments := strings.Split(path, "/")
		components = make([]PathComponent, 0, len(segments))
		for _, segment := range segments {
			component, err := ParsePathComponent(segment)
			if err != nil {
				return Keypath{}, err
			}
			components = append(components, component)
		}
	}

	return NewKeypath(components, opts)
}

// Components returns a copy of the path steps.
func (k Keypath) Components() []PathComponent {
	components := make([]PathComponent, len(k.components))
	copy(components, k.components)
	return components
}

// Len returns the number of path steps.
func (k Keypath) Len() int {
	return len(k.components)
}

// Component returns the i-th path step.
func (k Keypath) Component(i int) PathComponent {
	return k.components[i]
}

// SourceFingerprint returns the fingerprint of the key the path starts
// from, if known.
func (k Keypath) SourceFingerprint() (uint32, bool) {
	return k.sourceFingerprint, k.hasSourceFingerprint
}

// Depth returns the explicit depth of the path, if set. It may differ from
// Len for partial paths.
func (k Keypath) Depth() (uint8, bool) {
	return k.depth, k.hasDepth
}

// EffectiveDepth returns the explicit depth or, when missing, the number
// of steps.
func (k Keypath) EffectiveDepth() uint8 {
	if k.hasDepth {
		return k.depth
	}
	return uint8(len(k.components))
}

// WithDepth returns a copy of the keypath whose depth is its number of
// steps.
func (k Keypath) WithDepth() Keypath {
	d := k.clone()
	d.depth = uint8(len(k.components))
	d.hasDepth = true
	return d
}

func (k Keypath) clone() Keypath {
	c := k
	c.components = k.Components()
	return c
}

// IsHardened reports whether any step requires hardened derivation.
func (k Keypath) IsHardened() bool {
	for _, c := range k.components {
		if c.IsHardened() {
			return true
		}
	}
	return false
}

// Equal reports whether both keypaths hold the same steps and metadata.
func (k Keypath) Equal(other Keypath) bool {
	if len(k.components) != len(other.components) ||
		k.hasSourceFingerprint != other.hasSourceFingerprint ||
		k.sourceFingerprint != other.sourceFingerprint ||
		k.hasDepth != other.hasDepth ||
		k.depth != other.depth {
		return false
	}
	for i := range k.components {
		if k.components[i] != other.components[i] {
			return false
		}
	}
	return true
}

// String renders the path with the ' hardened marker and no leading "m/".
func (k Keypath) String() string {
	return k.Render(MarkerApostrophe)
}

// Render renders the path using the given hardened marker.
func (k Keypath) Render(marker HardenedMarker) string {
	segments := make([]string, 0, len(k.components))
	for _, c := range k.components {
		segments = append(segments, c.Render(marker))
	}
	return strings.Join(segments, "/")
}

// CBORTag returns the registry tag of keypaths.
func (Keypath) CBORTag() uint64 {
	return TagKeypath
}

type keypathWire struct {
	Components        codec.RawMessage `cbor:"1,keyasint"`
	SourceFingerprint *uint32          `cbor:"2,keyasint,omitempty"`
	Depth             *uint8           `cbor:"3,keyasint,omitempty"`
}

// MarshalCBOR encodes the keypath as an untagged map.
func (k Keypath) MarshalCBOR() ([]byte, error) {
	items := make([]interface{}, 0, 2*len(k.components))
	for _, c := range k.components {
		items = append(items, c.wireItems()...)
	}
	components, err := codec.Marshal(items)
	if err != nil {
		return nil, err
	}

	w := keypathWire{Components: components}
	if k.hasSourceFingerprint {
		fingerprint := k.sourceFingerprint
		w.SourceFingerprint = &fingerprint
	}
	if k.hasDepth {
		depth := k.depth
		w.Depth = &depth
	}
	return codec.Marshal(w)
}

// UnmarshalCBOR decodes an untagged keypath map and validates it as
// NewKeypath does.
func (k *Keypath) UnmarshalCBOR(data []byte) error {
	var w keypathWire
	if err := codec.Unmarshal(data, &w); err != nil {
		return decodeError(err)
	}
	if len(w.Components) == 0 {
		return ErrMissingComponents
	}

	var items []interface{}
	if err := codec.Unmarshal(w.Components, &items); err != nil {
		return decodeError(err)
	}
	components, err := componentsFromWire(items)
	if err != nil {
		return err
	}

	decoded, err := NewKeypath(components, KeypathOpts{
		SourceFingerprint: w.SourceFingerprint,
		Depth:             w.Depth,
	})
	if err != nil {
		return err
	}

	*k = decoded
	return nil
}

// DecodeKeypath decodes an untagged keypath map.
func DecodeKeypath(data []byte) (Keypath, error) {
	var k Keypath
	if err := k.UnmarshalCBOR(data); err != nil {
		return Keypath{}, err
	}
	return k, nil
}
