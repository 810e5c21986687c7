package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ngraveio/ur-registry-sub000/pkg/urtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	masterXprv  = "xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6cq3jPPqjiChkVvvNKmPGJxWUtg6LnF5kejMRNNU3TGtRBeJgk33yuGBxrMPHi"
	child0HXpub = "xpub68Gmy5EdvgibQVfPdqkBBCHxA5htiqg55crXYuXoQRKfDBFA1WEjWgP6LHhwBZeNK1VTsfTFUHCdrfp1bgwQ9xv5ski8PX9rL2dZXvgGDnw"
)

func runCLICommand(t *testing.T, args ...string) (string, error) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run(append([]string{"urkit"}, args...))
	return strings.TrimSpace(out.String()), err
}

func TestKeypath(t *testing.T) {
	t.Setenv("URKIT_DATADIR", t.TempDir())

	t.Run("should encode a path", func(t *testing.T) {
		out, err := runCLICommand(t, "keypath", "encode", "m/44'/0'/0'/0/0")
		require.NoError(t, err)
		assert.Equal(t, "a1018a182cf500f500f500f400f4", out)
	})

	t.Run("should encode a tagged path", func(t *testing.T) {
		out, err := runCLICommand(t, "keypath", "encode", "--tagged", "1-6h")
		require.NoError(t, err)
		assert.Equal(t, "d90130a10182820106f5", out)
	})

	t.Run("should encode an empty path with fingerprint and depth", func(t *testing.T) {
		out, err := runCLICommand(
			t, "keypath", "encode", "--fingerprint", "3661565d", "--depth", "0", "m",
		)
		require.NoError(t, err)
		assert.Equal(t, "a30180021a3661565d0300", out)
	})

	t.Run("should print diagnostic notation", func(t *testing.T) {
		out, err := runCLICommand(t, "keypath", "encode", "--format", "diag", "1-6h")
		require.NoError(t, err)
		assert.Equal(t, "{1: [[1, 6], true]}", out)
	})

	t.Run("should write a QR code", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keypath.png")
		out, err := runCLICommand(t, "keypath", "encode", "--qr", path, "44'/0'/0'/*")
		require.NoError(t, err)
		assert.Equal(t, "a10188182cf500f500f580f4", out)

		png, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	})

	t.Run("should decode a path", func(t *testing.T) {
		out, err := runCLICommand(t, "keypath", "decode", "a1018a182cf500f500f500f400f4")
		require.NoError(t, err)
		assert.Equal(t, "44'/0'/0'/0/0", out)

		out, err = runCLICommand(t, "keypath", "decode", "--marker", "h", "d90130a10182820106f5")
		require.NoError(t, err)
		assert.Equal(t, "1-6h", out)

		out, err = runCLICommand(t, "keypath", "decode", "a30180021a3661565d0300")
		require.NoError(t, err)
		assert.Equal(t, "source fingerprint: 3661565d\ndepth: 0", out)
	})

	t.Run("should fail", func(t *testing.T) {
		_, err := runCLICommand(t, "keypath", "encode")
		assert.Error(t, err)

		_, err = runCLICommand(t, "keypath", "encode", "m/2147483648")
		assert.ErrorIs(t, err, urtypes.ErrRange)

		_, err = runCLICommand(t, "keypath", "decode", "zz")
		assert.Error(t, err)

		_, err = runCLICommand(t, "keypath", "decode", "d90131a0")
		assert.Error(t, err)
	})
}

func TestHDKey(t *testing.T) {
	t.Setenv("URKIT_DATADIR", t.TempDir())

	t.Run("should import and export a master key", func(t *testing.T) {
		out, err := runCLICommand(t, "hdkey", "import", masterXprv)
		require.NoError(t, err)
		assert.Equal(t, "d9012fa301f503582100e8f32e723decf4051aefac8e2c93c9c5b214313817cdb01a1494b917c8436b35045820873dff81c02f525623fd1fe5167eac3a55a049de3d314bb42ee227ffed37d508", out)

		xkey, err := runCLICommand(t, "hdkey", "export", out)
		require.NoError(t, err)
		assert.Equal(t, masterXprv, xkey)
	})

	t.Run("should import and export a derived key", func(t *testing.T) {
		out, err := runCLICommand(
			t, "hdkey", "import",
			"--path", "0'", "--fingerprint", "3442193e", "--children", "0/*", "--name", "vector 1",
			child0HXpub,
		)
		require.NoError(t, err)

		xkey, err := runCLICommand(t, "hdkey", "export", out)
		require.NoError(t, err)
		assert.Equal(t, child0HXpub, xkey)

		// Untagged records are accepted too.
		xkey, err = runCLICommand(t, "hdkey", "export", out[len("d9012f"):])
		require.NoError(t, err)
		assert.Equal(t, child0HXpub, xkey)
	})

	t.Run("should apply NETWORK to coin type only", func(t *testing.T) {
		t.Setenv("URKIT_NETWORK", "testnet")

		out, err := runCLICommand(t, "hdkey", "import", child0HXpub)
		require.NoError(t, err)
		xkey, err := runCLICommand(t, "hdkey", "export", out)
		require.NoError(t, err)
		assert.Equal(t, child0HXpub, xkey)

		_, err = runCLICommand(t, "hdkey", "import", "--coin-type", "0", child0HXpub)
		assert.ErrorIs(t, err, urtypes.ErrNetworkMismatch)
	})

	t.Run("should fail", func(t *testing.T) {
		_, err := runCLICommand(t, "hdkey", "import", "--path", "1'", child0HXpub)
		assert.ErrorIs(t, err, urtypes.ErrPathMismatch)

		_, err = runCLICommand(t, "hdkey", "import", "--name", "master", masterXprv)
		assert.ErrorIs(t, err, urtypes.ErrMasterExtraFields)

		_, err = runCLICommand(t, "hdkey", "export", "d90130a10182820106f5")
		assert.Error(t, err)
	})
}

func TestDiag(t *testing.T) {
	t.Setenv("URKIT_DATADIR", t.TempDir())

	out, err := runCLICommand(t, "diag", "d90131a101183c")
	require.NoError(t, err)
	assert.Equal(t, "305({1: 60})", out)

	_, err = runCLICommand(t, "diag")
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	t.Setenv("URKIT_DATADIR", t.TempDir())

	out, err := runCLICommand(t, "config", "set", "HARDENED_MARKER", "h")
	require.NoError(t, err)
	assert.Equal(t, "HARDENED_MARKER h has been set", out)

	out, err = runCLICommand(t, "keypath", "decode", "a1018a182cf500f500f500f400f4")
	require.NoError(t, err)
	assert.Equal(t, "44h/0h/0h/0/0", out)

	out, err = runCLICommand(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "HARDENED_MARKER: h")

	_, err = runCLICommand(t, "config", "set", "NETWORK", "regtest")
	assert.Error(t, err)
}
