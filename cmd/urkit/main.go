package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ngraveio/ur-registry-sub000/internal/config"
	"github.com/ngraveio/ur-registry-sub000/pkg/codec"
	"github.com/ngraveio/ur-registry-sub000/pkg/urtypes"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// majorTypeTag is the CBOR major type of tagged items, in the top 3 bits
// of the initial byte.
const majorTypeTag = 6

var (
	formatFlag = cli.StringFlag{
		Name:  "format",
		Usage: "output format of CBOR results: hex or diag, defaults to OUTPUT_FORMAT",
	}

	markerFlag = cli.StringFlag{
		Name:  "marker",
		Usage: "hardened marker for rendered paths: ' or h, defaults to HARDENED_MARKER",
	}

	fingerprintFlag = cli.StringFlag{
		Name:  "fingerprint",
		Usage: "hex encoded 4 bytes source fingerprint of the path",
	}
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "urkit"
	app.Usage = "Encode and decode BIP32 keys and derivation paths as CBOR registry records"
	app.Before = initConfig
	app.Commands = append(
		app.Commands,
		&keypathCmd,
		&hdkeyCmd,
		&diagCmd,
		&configCmd,
	)

	return app
}

func initConfig(_ *cli.Context) error {
	if err := config.InitConfig(); err != nil {
		return err
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	return nil
}

// hexArg decodes the first positional argument of the command.
func hexArg(ctx *cli.Context) ([]byte, error) {
	if ctx.NArg() < 1 {
		return nil, &invalidUsageError{ctx, ctx.Command.Name}
	}
	data, err := hex.DecodeString(strings.TrimSpace(ctx.Args().First()))
	if err != nil {
		return nil, fmt.Errorf("invalid hex argument: %w", err)
	}
	return data, nil
}

func isTagged(data []byte) bool {
	return len(data) > 0 && data[0]>>5 == majorTypeTag
}

func parseFingerprint(s string) (*uint32, error) {
	if s == "" {
		return nil, nil
	}
	fingerprint, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid fingerprint %q: %w", s, err)
	}
	fp := uint32(fingerprint)
	return &fp, nil
}

func getMarker(ctx *cli.Context) (urtypes.HardenedMarker, error) {
	if marker := ctx.String(markerFlag.Name); marker != "" {
		return urtypes.ParseHardenedMarker(marker)
	}
	return config.GetHardenedMarker(), nil
}

func printCBOR(ctx *cli.Context, data []byte) error {
	if path := ctx.String(qrFlag.Name); path != "" {
		if err := writeQRCode(path, data); err != nil {
			return err
		}
	}

	format := ctx.String(formatFlag.Name)
	if format == "" {
		format = config.GetString(config.OutputFormatKey)
	}

	switch strings.ToLower(format) {
	case config.HexFormat:
		fmt.Fprintln(ctx.App.Writer, hex.EncodeToString(data))
	case config.DiagFormat:
		notation, err := codec.Diagnose(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, notation)
	default:
		return config.ErrInvalidOutputFormat
	}
	return nil
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[urkit] %v\n", err)
	}
	os.Exit(1)
}
