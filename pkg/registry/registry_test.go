package registry_test

import (
	"encoding/hex"
	"testing"

	"github.com/ngraveio/ur-registry-sub000/pkg/codec"
	"github.com/ngraveio/ur-registry-sub000/pkg/registry"
	"github.com/ngraveio/ur-registry-sub000/pkg/urtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	fingerprint := uint32(912348765)
	depth := uint8(0)
	keypath, err := urtypes.NewKeypathFromString("", urtypes.KeypathOpts{
		SourceFingerprint: &fingerprint,
		Depth:             &depth,
	})
	require.NoError(t, err)

	coinInfo, err := urtypes.NewCoinInfo(60, urtypes.NetworkMainnet)
	require.NoError(t, err)

	keyData, err := hex.DecodeString("026fe2355745bb2db3630bbc80ef5d58951c963c841f54170ba6e5c12be7fc12a6")
	require.NoError(t, err)
	hdKey, err := urtypes.NewDerivedKey(urtypes.DerivedKeyOpts{
		KeyData: keyData,
		Origin:  &keypath,
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		value   registry.Tagged
		encoded string
	}{
		{"keypath", keypath, "d90130a30180021a3661565d0300"},
		{"coin info", coinInfo, "d90131a101183c"},
		{"hd key", hdKey, ""},
	}

	for _, tt := range tests {
		data, err := registry.Encode(tt.value)
		require.NoError(t, err, tt.name)
		if tt.encoded != "" {
			assert.Equal(t, tt.encoded, hex.EncodeToString(data), tt.name)
		}

		decoded, err := registry.Default.Decode(data)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.value, decoded, tt.name)
	}
}

func TestFailingDecode(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		err     error
	}{
		{"unknown tag", "d90132a0", registry.ErrUnknownTag},
		{"untagged", "a0", urtypes.ErrDecode},
		{"malformed", "d901", urtypes.ErrDecode},
		{"invalid content", "d90130a10181f5", urtypes.ErrUnclassifiableComponent},
	}

	for _, tt := range tests {
		data, err := hex.DecodeString(tt.encoded)
		require.NoError(t, err)

		_, err = registry.Default.Decode(data)
		assert.ErrorIs(t, err, tt.err, tt.name)
	}
}

func TestRegister(t *testing.T) {
	r := registry.New()
	assert.Equal(t, 3, r.Tags())

	err := r.Register(urtypes.TagKeypath, func([]byte) (interface{}, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, registry.ErrTagAlreadyRegistered)

	err = r.Register(40000, nil)
	assert.ErrorIs(t, err, registry.ErrNullDecoder)

	err = r.Register(40000, func(content []byte) (interface{}, error) {
		var s string
		err := codec.Unmarshal(content, &s)
		return s, err
	})
	require.NoError(t, err)
	assert.Equal(t, 4, r.Tags())
	assert.Equal(t, 3, registry.Default.Tags())

	// d9 9c40 = tag 40000
	data, err := hex.DecodeString("d99c4063666f6f")
	require.NoError(t, err)
	value, err := r.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "foo", value)

	var empty registry.Registry
	_, err = empty.Decode(data)
	assert.ErrorIs(t, err, registry.ErrUnknownTag)
}
