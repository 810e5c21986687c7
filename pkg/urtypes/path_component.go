package urtypes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// HardenedKeyStart is the first hardened child number. Child indexes
// carried by path components are always lower than this value, hardening
// being a separate flag.
const HardenedKeyStart = hdkeychain.HardenedKeyStart

// HardenedMarker is the suffix used to render a hardened step.
type HardenedMarker string

const (
	// MarkerApostrophe renders hardened steps as 44'.
	MarkerApostrophe HardenedMarker = "'"
	// MarkerH renders hardened steps as 44h.
	MarkerH HardenedMarker = "h"
)

// ParseHardenedMarker converts the textual marker to its typed form.
func ParseHardenedMarker(marker string) (HardenedMarker, error) {
	switch marker {
	case "'":
		return MarkerApostrophe, nil
	case "h", "H":
		return MarkerH, nil
	}
	return "", fmt.Errorf("%w %q", ErrInvalidHardenedMarker, marker)
}

func (m HardenedMarker) suffix(hardened bool) string {
	if !hardened {
		return ""
	}
	if m == MarkerH {
		return "h"
	}
	return "'"
}

// ComponentKind distinguishes the shapes a path component can take.
type ComponentKind uint8

const (
	// IndexComponent is a single child index, like 44'.
	IndexComponent ComponentKind = iota
	// RangeComponent is an inclusive range of child indexes, like 1-6h.
	RangeComponent
	// WildcardComponent stands for any child, like *.
	WildcardComponent
	// PairComponent is a receive/change pair of a multipath
	// descriptor, like <0;1>.
	PairComponent
)

func (k ComponentKind) String() string {
	switch k {
	case IndexComponent:
		return "index"
	case RangeComponent:
		return "range"
	case WildcardComponent:
		return "wildcard"
	case PairComponent:
		return "pair"
	default:
		return fmt.Sprintf("ComponentKind(%d)", k)
	}
}

// ChildIndex is one side of a pair component.
type ChildIndex struct {
	Index    uint32
	Hardened bool
}

func (c ChildIndex) validate() error {
	if c.Index >= HardenedKeyStart {
		return fmt.Errorf("%w: got %d", ErrChildIndexOutOfRange, c.Index)
	}
	return nil
}

func (c ChildIndex) render(marker HardenedMarker) string {
	return strconv.FormatUint(uint64(c.Index), 10) + marker.suffix(c.Hardened)
}

// PathComponent is one step of a derivation path. Values are built with
// one of the New*Component constructors, or by ParsePathComponent, and are
// never modified afterwards.
type PathComponent struct {
	kind     ComponentKind
	index    uint32
	low      uint32
	high     uint32
	hardened bool
	external ChildIndex
	internal ChildIndex
}

// NewIndexComponent returns a single child index step.
func NewIndexComponent(index uint32, hardened bool) (PathComponent, error) {
	if err := (ChildIndex{Index: index}).validate(); err != nil {
		return PathComponent{}, err
	}
	return PathComponent{kind: IndexComponent, index: index, hardened: hardened}, nil
}

// NewRangeComponent returns a step covering children low to high. The
// hardening flag applies to the whole range.
func NewRangeComponent(low, high uint32, hardened bool) (PathComponent, error) {
	if err := (ChildIndex{Index: low}).validate(); err != nil {
		return PathComponent{}, err
	}
	if err := (ChildIndex{Index: high}).validate(); err != nil {
		return PathComponent{}, err
	}
	if low >= high {
		return PathComponent{}, fmt.Errorf("%w: got %d-%d", ErrInvalidRangeBounds, low, high)
	}
	return PathComponent{kind: RangeComponent, low: low, high: high, hardened: hardened}, nil
}

// NewWildcardComponent returns a step matching any child.
func NewWildcardComponent(hardened bool) PathComponent {
	return PathComponent{kind: WildcardComponent, hardened: hardened}
}

// NewPairComponent returns a multipath step whose sides are hardened
// independently.
func NewPairComponent(external, internal ChildIndex) (PathComponent, error) {
	if err := external.validate(); err != nil {
		return PathComponent{}, err
	}
	if err := internal.validate(); err != nil {
		return PathComponent{}, err
	}
	return PathComponent{kind: PairComponent, external: external, internal: internal}, nil
}

// Kind returns the shape of the component.
func (c PathComponent) Kind() ComponentKind {
	return c.kind
}

// Index returns the child index of an index component. The boolean is
// false for every other kind.
func (c PathComponent) Index() (uint32, bool) {
	return c.index, c.kind == IndexComponent
}

// Range returns the bounds of a range component. The boolean is false for
// every other kind.
func (c PathComponent) Range() (uint32, uint32, bool) {
	return c.low, c.high, c.kind == RangeComponent
}

// Pair returns both sides of a pair component. The boolean is false for
// every other kind.
func (c PathComponent) Pair() (ChildIndex, ChildIndex, bool) {
	return c.external, c.internal, c.kind == PairComponent
}

// Hardened returns the hardening flag of index, range and wildcard
// components. Pairs carry no outer flag and always return false.
func (c PathComponent) Hardened() bool {
	return c.hardened
}

// IsHardened reports whether deriving this step needs a private key.
func (c PathComponent) IsHardened() bool {
	if c.kind == PairComponent {
		return c.external.Hardened || c.internal.Hardened
	}
	return c.hardened
}

// ChildNumber returns the BIP32 child number of an index component, with
// the hardened bit set when relevant.
func (c PathComponent) ChildNumber() (uint32, bool) {
	if c.kind != IndexComponent {
		return 0, false
	}
	if c.hardened {
		return c.index + HardenedKeyStart, true
	}
	return c.index, true
}

// String renders the component with the ' hardened marker.
func (c PathComponent) String() string {
	return c.Render(MarkerApostrophe)
}

// Render renders the component using the given hardened marker, whatever
// marker was used when it was parsed.
func (c PathComponent) Render(marker HardenedMarker) string {
	switch c.kind {
	case RangeComponent:
		return fmt.Sprintf("%d-%d%s", c.low, c.high, marker.suffix(c.hardened))
	case WildcardComponent:
		return "*" + marker.suffix(c.hardened)
	case PairComponent:
		return "<" + c.external.render(marker) + ";" + c.internal.render(marker) + ">"
	default:
		return ChildIndex{Index: c.index, Hardened: c.hardened}.render(marker)
	}
}

// ParsePathComponent parses a single path segment, without any leading
// "m/" or "/" separator.
//
// Accepted forms are 44, 44', 44h, 1-6, 1-6h, *, *', <0;1> and <0h;1h>. The
// hardened marker of a range is read after its high bound; 1h-6h is
// accepted too, while 1h-6 is rejected.
func ParsePathComponent(text string) (PathComponent, error) {
	switch {
	case text == "":
		return PathComponent{}, ErrEmptyPathSegment

	case strings.HasPrefix(text, "*"):
		hardened, err := parseMarker(text[1:])
		if err != nil {
			return PathComponent{}, err
		}
		return NewWildcardComponent(hardened), nil

	case strings.HasPrefix(text, "<"):
		return parsePair(text)

	case strings.Contains(text, "-"):
		return parseRange(text)

	default:
		child, err := parseChildIndex(text)
		if err != nil {
			return PathComponent{}, err
		}
		return NewIndexComponent(child.Index, child.Hardened)
	}
}

func parsePair(text string) (PathComponent, error) {
	if len(text) < 2 || !strings.HasSuffix(text, ">") {
		return PathComponent{}, fmt.Errorf("%w, got %q", ErrInvalidPairSyntax, text)
	}
	sides := strings.Split(text[1:len(text)-1], ";")
	if len(sides) != 2 {
		return PathComponent{}, fmt.Errorf("%w, got %q", ErrInvalidPairSyntax, text)
	}

	external, err := parseChildIndex(sides[0])
	if err != nil {
		return PathComponent{}, err
	}
	internal, err := parseChildIndex(sides[1])
	if err != nil {
		return PathComponent{}, err
	}
	return NewPairComponent(external, internal)
}

func parseRange(text string) (PathComponent, error) {
	bounds := strings.Split(text, "-")
	if len(bounds) != 2 {
		return PathComponent{}, fmt.Errorf("%w, got %q", ErrInvalidRangeSyntax, text)
	}

	lowDigits, lowHardened := splitMarker(bounds[0])
	highDigits, hardened := splitMarker(bounds[1])
	if lowHardened && !hardened {
		return PathComponent{}, fmt.Errorf(
			"%w: range marker must follow the high bound, got %q",
			ErrInvalidHardenedMarker, text,
		)
	}

	low, err := parseIndexValue(lowDigits)
	if err != nil {
		return PathComponent{}, err
	}
	high, err := parseIndexValue(highDigits)
	if err != nil {
		return PathComponent{}, err
	}
	return NewRangeComponent(low, high, hardened)
}

func parseChildIndex(text string) (ChildIndex, error) {
	digits, hardened := splitMarker(text)
	index, err := parseIndexValue(digits)
	if err != nil {
		return ChildIndex{}, err
	}
	return ChildIndex{Index: index, Hardened: hardened}, nil
}

func parseMarker(marker string) (bool, error) {
	if marker == "" {
		return false, nil
	}
	if _, err := ParseHardenedMarker(marker); err != nil {
		return false, err
	}
	return true, nil
}

// splitMarker separates a trailing hardened marker from its number.
func splitMarker(token string) (string, bool) {
	if n := len(token); n > 0 {
		switch token[n-1] {
		case '\'', 'h', 'H':
			return token[:n-1], true
		}
	}
	return token, false
}

func parseIndexValue(digits string) (uint32, error) {
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, fmt.Errorf("%w, got %q", ErrInvalidChildIndex, digits)
	}
	value, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || value >= HardenedKeyStart {
		return 0, fmt.Errorf("%w: got %s", ErrChildIndexOutOfRange, digits)
	}
	return uint32(value), nil
}

// wireItems returns the positions the component occupies inside the
// flattened components array of a keypath.
func (c PathComponent) wireItems() []interface{} {
	switch c.kind {
	case RangeComponent:
		return []interface{}{[]uint32{c.low, c.high}, c.hardened}
	case WildcardComponent:
		return []interface{}{[]interface{}{}, c.hardened}
	case PairComponent:
		// A pair stays wrapped in one array, as in BCR-2020-007 multi-path
		// steps. Inline, it would read back as two consecutive indexes.
		return []interface{}{[]interface{}{
			c.external.Index, c.external.Hardened,
			c.internal.Index, c.internal.Hardened,
		}}
	default:
		return []interface{}{c.index, c.hardened}
	}
}

// componentsFromWire rebuilds path components from a flattened components
// array, classifying each position by its shape:
//
//	uint, bool              index
//	[uint, uint], bool      range
//	[], bool                wildcard
//	[uint, bool, uint, bool] pair
func componentsFromWire(items []interface{}) ([]PathComponent, error) {
	components := make([]PathComponent, 0, len(items)/2)

	for i := 0; i < len(items); {
		var (
			component PathComponent
			err       error
			consumed  = 2
		)

		switch item := items[i].(type) {
		case uint64:
			hardened, ok := wireBool(items, i+1)
			if !ok {
				return nil, unclassifiable(i)
			}
			index, err := wireIndex(item)
			if err != nil {
				return nil, err
			}
			component, err = NewIndexComponent(index, hardened)
			if err != nil {
				return nil, err
			}

		case []interface{}:
			switch len(item) {
			case 0:
				hardened, ok := wireBool(items, i+1)
				if !ok {
					return nil, unclassifiable(i)
				}
				component = NewWildcardComponent(hardened)

			case 2:
				hardened, ok := wireBool(items, i+1)
				if !ok {
					return nil, unclassifiable(i)
				}
				low, lowOk := item[0].(uint64)
				high, highOk := item[1].(uint64)
				if !lowOk || !highOk {
					return nil, unclassifiable(i)
				}
				lowIndex, err := wireIndex(low)
				if err != nil {
					return nil, err
				}
				highIndex, err := wireIndex(high)
				if err != nil {
					return nil, err
				}
				component, err = NewRangeComponent(lowIndex, highIndex, hardened)
				if err != nil {
					return nil, err
				}

			case 4:
				external, ok := wireChildIndex(item[0], item[1])
				if !ok {
					return nil, unclassifiable(i)
				}
				internal, ok := wireChildIndex(item[2], item[3])
				if !ok {
					return nil, unclassifiable(i)
				}
				component, err = NewPairComponent(external, internal)
				if err != nil {
					return nil, err
				}
				consumed = 1

			default:
				return nil, unclassifiable(i)
			}

		default:
			return nil, unclassifiable(i)
		}

		components = append(components, component)
		i += consumed
	}

	return components, nil
}

func wireBool(items []interface{}, i int) (bool, bool) {
	if i >= len(items) {
		return false, false
	}
	b, ok := items[i].(bool)
	return b, ok
}

func wireIndex(value uint64) (uint32, error) {
	if value >= HardenedKeyStart {
		return 0, fmt.Errorf("%w: got %d", ErrChildIndexOutOfRange, value)
	}
	return uint32(value), nil
}

func wireChildIndex(index, hardened interface{}) (ChildIndex, bool) {
	value, ok := index.(uint64)
	if !ok || value >= HardenedKeyStart {
		return ChildIndex{}, false
	}
	flag, ok := hardened.(bool)
	if !ok {
		return ChildIndex{}, false
	}
	return ChildIndex{Index: uint32(value), Hardened: flag}, true
}

func unclassifiable(position int) error {
	return fmt.Errorf("%w at position %d", ErrUnclassifiableComponent, position)
}
