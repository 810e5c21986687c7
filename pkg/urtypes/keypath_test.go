package urtypes

import (
	"encoding/hex"
	"testing"

	"github.com/ngraveio/ur-registry-sub000/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func uint32Ptr(v uint32) *uint32 {
	return &v
}

func uint8Ptr(v uint8) *uint8 {
	return &v
}

func TestKeypathVectors(t *testing.T) {
	tests := []struct {
		path    string
		opts    KeypathOpts
		encoded string
	}{
		{
			path:    "44'/0'/0'/0/0",
			encoded: "a1018a182cf500f500f500f400f4",
		},
		{
			path:    "1-6h",
			encoded: "a10182820106f5",
		},
		{
			path:    "44'/0'/0'/*",
			encoded: "a10188182cf500f500f580f4",
		},
		{
			path:    "",
			opts:    KeypathOpts{SourceFingerprint: uint32Ptr(912348765), Depth: uint8Ptr(0)},
			encoded: "a30180021a3661565d0300",
		},
		{
			path:    "48'/0'/0'/2'",
			opts:    KeypathOpts{SourceFingerprint: uint32Ptr(0x37b5eed4)},
			encoded: "a201881830f500f500f502f5021a37b5eed4",
		},
		{
			path:    "<0;1>/*",
			encoded: "a101838400f401f480f4",
		},
	}

	for _, tt := range tests {
		keypath, err := NewKeypathFromString(tt.path, tt.opts)
		require.NoError(t, err, tt.path)

		data, err := keypath.MarshalCBOR()
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.encoded, hex.EncodeToString(data), tt.path)

		raw, err := hex.DecodeString(tt.encoded)
		require.NoError(t, err)
		decoded, err := DecodeKeypath(raw)
		require.NoError(t, err, tt.path)
		assert.Equal(t, keypath, decoded, tt.path)
		assert.True(t, keypath.Equal(decoded), tt.path)
		assert.Equal(t, canonicalPath(t, tt.path), decoded.String(), tt.path)
	}
}

func canonicalPath(t *testing.T, path string) string {
	keypath, err := NewKeypathFromString(path, KeypathOpts{SourceFingerprint: uint32Ptr(1)})
	require.NoError(t, err)
	return keypath.String()
}

func TestNewKeypathFromString(t *testing.T) {
	tests := []struct {
		input       string
		apostrophe  string
		hMarker     string
		numOfLevels int
	}{
		{"m/44'/0'/0'/0/0", "44'/0'/0'/0/0", "44h/0h/0h/0/0", 5},
		{"44h/0h/0h/1/*", "44'/0'/0'/1/*", "44h/0h/0h/1/*", 5},
		{"m/48'/0'/0'/2'/<0;1>/*", "48'/0'/0'/2'/<0;1>/*", "48h/0h/0h/2h/<0;1>/*", 6},
		{"0/1-10/*h", "0/1-10/*'", "0/1-10/*h", 3},
	}

	for _, tt := range tests {
		keypath, err := NewKeypathFromString(tt.input, KeypathOpts{})
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.numOfLevels, keypath.Len())
		assert.Equal(t, tt.apostrophe, keypath.String())
		assert.Equal(t, tt.hMarker, keypath.Render(MarkerH))
	}
}

func TestFailingNewKeypath(t *testing.T) {
	tests := []struct {
		input string
		opts  KeypathOpts
		err   error
	}{
		{"", KeypathOpts{}, ErrMissingSourceFingerprint},
		{"m", KeypathOpts{}, ErrMissingSourceFingerprint},
		{"m/", KeypathOpts{}, ErrMissingSourceFingerprint},
		{"", KeypathOpts{SourceFingerprint: uint32Ptr(0)}, ErrNullSourceFingerprint},
		{"44'/0'", KeypathOpts{SourceFingerprint: uint32Ptr(0)}, ErrNullSourceFingerprint},
		{"44'//0", KeypathOpts{}, ErrEmptyPathSegment},
		{"44'/0'/", KeypathOpts{}, ErrEmptyPathSegment},
		{"/44'", KeypathOpts{}, ErrEmptyPathSegment},
		{"M/44'", KeypathOpts{}, ErrGrammar},
		{"m/2147483649", KeypathOpts{}, ErrRange},
		{"m/6-1", KeypathOpts{}, ErrRange},
	}

	for _, tt := range tests {
		_, err := NewKeypathFromString(tt.input, tt.opts)
		assert.ErrorIs(t, err, tt.err, tt.input)
	}

	_, err := NewKeypath(nil, KeypathOpts{})
	assert.ErrorIs(t, err, ErrMissingSourceFingerprint)

	_, err = NewKeypath(make([]PathComponent, maxPathDepth+1), KeypathOpts{})
	assert.ErrorIs(t, err, ErrPathTooDeep)
}

func TestKeypathWithDepth(t *testing.T) {
	keypath, err := NewKeypathFromString("44'/0'/0'", KeypathOpts{Depth: uint8Ptr(7)})
	require.NoError(t, err)

	depth, ok := keypath.Depth()
	assert.True(t, ok)
	assert.Equal(t, uint8(7), depth)

	recomputed := keypath.WithDepth()
	depth, ok = recomputed.Depth()
	assert.True(t, ok)
	assert.Equal(t, uint8(3), depth)

	// The receiver is left untouched.
	depth, _ = keypath.Depth()
	assert.Equal(t, uint8(7), depth)
	assert.False(t, keypath.Equal(recomputed))
}

func TestKeypathComponentsAreCopied(t *testing.T) {
	index, err := NewIndexComponent(44, true)
	require.NoError(t, err)
	components := []PathComponent{index}

	keypath, err := NewKeypath(components, KeypathOpts{})
	require.NoError(t, err)

	components[0] = NewWildcardComponent(false)
	assert.Equal(t, "44'", keypath.String())

	got := keypath.Components()
	got[0] = NewWildcardComponent(false)
	assert.Equal(t, "44'", keypath.String())
}

func TestFailingDecodeKeypath(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
		err  error
	}{
		{
			name: "missing components",
			data: map[int]interface{}{2: 912348765},
			err:  ErrMissingComponents,
		},
		{
			name: "unclassifiable component",
			data: map[int]interface{}{1: []interface{}{44, 44}},
			err:  ErrUnclassifiableComponent,
		},
		{
			name: "index out of range",
			data: map[int]interface{}{1: []interface{}{0x80000001, true}},
			err:  ErrChildIndexOutOfRange,
		},
		{
			name: "reversed range",
			data: map[int]interface{}{1: []interface{}{[]int{6, 1}, false}},
			err:  ErrInvalidRangeBounds,
		},
		{
			name: "empty path without fingerprint",
			data: map[int]interface{}{1: []interface{}{}},
			err:  ErrMissingSourceFingerprint,
		},
		{
			name: "null fingerprint",
			data: map[int]interface{}{1: []interface{}{}, 2: 0},
			err:  ErrNullSourceFingerprint,
		},
		{
			name: "fingerprint overflow",
			data: map[int]interface{}{1: []interface{}{}, 2: uint64(1) << 33},
			err:  ErrDecode,
		},
		{
			name: "components not an array",
			data: map[int]interface{}{1: 44},
			err:  ErrDecode,
		},
	}

	for _, tt := range tests {
		data, err := codec.Marshal(tt.data)
		require.NoError(t, err, tt.name)

		_, err = DecodeKeypath(data)
		assert.ErrorIs(t, err, tt.err, tt.name)
	}
}

func TestKeypathWireRoundtrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		components := make([]PathComponent, rapid.IntRange(0, 8).Draw(t, "len"))
		for i := range components {
			components[i] = drawComponent(t)
		}

		var opts KeypathOpts
		if len(components) == 0 || rapid.Bool().Draw(t, "withFingerprint") {
			fingerprint := rapid.Uint32Range(1, 0xffffffff).Draw(t, "fingerprint")
			opts.SourceFingerprint = &fingerprint
		}
		if rapid.Bool().Draw(t, "withDepth") {
			depth := rapid.Uint8().Draw(t, "depth")
			opts.Depth = &depth
		}

		keypath, err := NewKeypath(components, opts)
		require.NoError(t, err)

		data, err := keypath.MarshalCBOR()
		require.NoError(t, err)
		decoded, err := DecodeKeypath(data)
		require.NoError(t, err)
		require.True(t, keypath.Equal(decoded))

		parsed, err := NewKeypathFromString(keypath.Render(MarkerH), opts)
		require.NoError(t, err)
		require.True(t, keypath.Equal(parsed))
	})
}
