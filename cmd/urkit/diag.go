package main

import (
	"fmt"

	"github.com/ngraveio/ur-registry-sub000/pkg/codec"
	"github.com/urfave/cli/v2"
)

var diagCmd = cli.Command{
	Name:      "diag",
	Usage:     "print the diagnostic notation of any CBOR item",
	ArgsUsage: "<hex>",
	Action:    diagAction,
}

func diagAction(ctx *cli.Context) error {
	data, err := hexArg(ctx)
	if err != nil {
		return err
	}

	notation, err := codec.Diagnose(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, notation)
	return nil
}
