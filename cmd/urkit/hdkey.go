package main

import (
	"fmt"

	"github.com/ngraveio/ur-registry-sub000/internal/config"
	"github.com/ngraveio/ur-registry-sub000/pkg/registry"
	"github.com/ngraveio/ur-registry-sub000/pkg/urtypes"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	pathFlag = cli.StringFlag{
		Name:  "path",
		Usage: "origin path of the key, checked against its depth and child number",
	}

	childrenFlag = cli.StringFlag{
		Name:  "children",
		Usage: "path of the keys derivable from the imported one, ie. <0;1>/*",
	}

	coinTypeFlag = cli.UintFlag{
		Name:  "coin-type",
		Usage: "BIP44 coin type the key is meant for, on the configured NETWORK",
	}

	nameFlag = cli.StringFlag{
		Name:  "name",
		Usage: "short name of the key",
	}

	noteFlag = cli.StringFlag{
		Name:  "note",
		Usage: "free text note attached to the key",
	}
)

var hdkeyCmd = cli.Command{
	Name:  "hdkey",
	Usage: "convert between BIP32 extended keys and hd key records",
	Subcommands: []*cli.Command{
		{
			Name:      "import",
			Usage:     "encode an xpub/xprv as a tagged hd key record",
			ArgsUsage: "<xkey>",
			Action:    hdkeyImportAction,
			Flags: []cli.Flag{
				&pathFlag,
				&fingerprintFlag,
				&childrenFlag,
				&coinTypeFlag,
				&nameFlag,
				&noteFlag,
				&formatFlag,
				&qrFlag,
			},
		},
		{
			Name:      "export",
			Usage:     "decode a hd key record, tagged or not, into its xpub/xprv",
			ArgsUsage: "<hex>",
			Action:    hdkeyExportAction,
		},
	},
}

func hdkeyImportAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	opts := urtypes.ImportOpts{
		Name: ctx.String(nameFlag.Name),
		Note: ctx.String(noteFlag.Name),
	}

	fingerprint, err := parseFingerprint(ctx.String(fingerprintFlag.Name))
	if err != nil {
		return err
	}
	if path := ctx.String(pathFlag.Name); path != "" || fingerprint != nil {
		origin, err := urtypes.NewKeypathFromString(path, urtypes.KeypathOpts{
			SourceFingerprint: fingerprint,
		})
		if err != nil {
			return fmt.Errorf("invalid origin: %w", err)
		}
		opts.Origin = &origin
	}
	if path := ctx.String(childrenFlag.Name); path != "" {
		children, err := urtypes.NewKeypathFromString(path, urtypes.KeypathOpts{})
		if err != nil {
			return fmt.Errorf("invalid children: %w", err)
		}
		opts.Children = &children
	}
	if ctx.IsSet(coinTypeFlag.Name) {
		useInfo, err := urtypes.NewCoinInfo(uint32(ctx.Uint(coinTypeFlag.Name)), config.GetNetwork())
		if err != nil {
			return err
		}
		opts.UseInfo = &useInfo
	}

	key, err := urtypes.NewHDKeyFromExtendedKey(ctx.Args().First(), opts)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"master":  key.IsMaster(),
		"private": key.IsPrivate(),
	}).Debug("imported extended key")

	data, err := registry.Encode(key)
	if err != nil {
		return err
	}
	return printCBOR(ctx, data)
}

func hdkeyExportAction(ctx *cli.Context) error {
	data, err := hexArg(ctx)
	if err != nil {
		return err
	}

	key, err := decodeHDKey(data)
	if err != nil {
		return err
	}
	if origin, ok := key.Origin(); ok {
		log.Debugf("hd key origin %s", origin)
	}

	xkey, err := key.BIP32Key()
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, xkey)
	return nil
}

func decodeHDKey(data []byte) (urtypes.HDKey, error) {
	if !isTagged(data) {
		return urtypes.DecodeHDKey(data)
	}

	value, err := registry.Default.Decode(data)
	if err != nil {
		return urtypes.HDKey{}, err
	}
	key, ok := value.(urtypes.HDKey)
	if !ok {
		return urtypes.HDKey{}, fmt.Errorf("expected a hd key record, got %T", value)
	}
	return key, nil
}
