package main

import (
	"fmt"

	"github.com/ngraveio/ur-registry-sub000/pkg/registry"
	"github.com/ngraveio/ur-registry-sub000/pkg/urtypes"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	depthFlag = cli.UintFlag{
		Name:  "depth",
		Usage: "depth of the key the path leads to, if different from the path length",
	}

	taggedFlag = cli.BoolFlag{
		Name:  "tagged",
		Usage: "wrap the record in its registry tag",
	}
)

var keypathCmd = cli.Command{
	Name:  "keypath",
	Usage: "encode or decode a derivation path",
	Subcommands: []*cli.Command{
		{
			Name:      "encode",
			Usage:     "encode a path like m/44'/0'/0'/<0;1>/* as CBOR",
			ArgsUsage: "<path>",
			Action:    keypathEncodeAction,
			Flags: []cli.Flag{
				&fingerprintFlag,
				&depthFlag,
				&taggedFlag,
				&formatFlag,
				&qrFlag,
			},
		},
		{
			Name:      "decode",
			Usage:     "decode a CBOR keypath, tagged or not, into its path",
			ArgsUsage: "<hex>",
			Action:    keypathDecodeAction,
			Flags: []cli.Flag{
				&markerFlag,
			},
		},
	},
}

func keypathEncodeAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	fingerprint, err := parseFingerprint(ctx.String(fingerprintFlag.Name))
	if err != nil {
		return err
	}
	opts := urtypes.KeypathOpts{SourceFingerprint: fingerprint}
	if ctx.IsSet(depthFlag.Name) {
		depth := ctx.Uint(depthFlag.Name)
		if depth > 255 {
			return fmt.Errorf("depth must be lower than 256, got %d", depth)
		}
		d := uint8(depth)
		opts.Depth = &d
	}

	keypath, err := urtypes.NewKeypathFromString(ctx.Args().First(), opts)
	if err != nil {
		return err
	}
	log.Debugf("encoding path %s", keypath)

	var data []byte
	if ctx.Bool(taggedFlag.Name) {
		data, err = registry.Encode(keypath)
	} else {
		data, err = keypath.MarshalCBOR()
	}
	if err != nil {
		return err
	}

	return printCBOR(ctx, data)
}

func keypathDecodeAction(ctx *cli.Context) error {
	data, err := hexArg(ctx)
	if err != nil {
		return err
	}
	marker, err := getMarker(ctx)
	if err != nil {
		return err
	}

	keypath, err := decodeKeypath(data)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, keypath.Render(marker))
	if fingerprint, ok := keypath.SourceFingerprint(); ok {
		fmt.Fprintf(ctx.App.Writer, "source fingerprint: %08x\n", fingerprint)
	}
	if depth, ok := keypath.Depth(); ok {
		fmt.Fprintf(ctx.App.Writer, "depth: %d\n", depth)
	}
	return nil
}

func decodeKeypath(data []byte) (urtypes.Keypath, error) {
	if !isTagged(data) {
		return urtypes.DecodeKeypath(data)
	}

	value, err := registry.Default.Decode(data)
	if err != nil {
		return urtypes.Keypath{}, err
	}
	keypath, ok := value.(urtypes.Keypath)
	if !ok {
		return urtypes.Keypath{}, fmt.Errorf("expected a keypath record, got %T", value)
	}
	log.Debugf("decoded tagged keypath %s", keypath)
	return keypath, nil
}
