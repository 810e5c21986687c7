package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ngraveio/ur-registry-sub000/internal/config"
	"github.com/urfave/cli/v2"
)

var configCmd = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the urkit CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local config file",
			Action: configSetAction,
		},
	},
}

func configAction(ctx *cli.Context) error {
	settings := config.Settings()

	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintln(ctx.App.Writer, key+": "+settings[key])
	}
	fmt.Fprintln(ctx.App.Writer, config.DatadirKey+": "+config.GetDatadir())

	return nil
}

func configSetAction(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		return errors.New("key and value are missing")
	}

	key := ctx.Args().Get(0)
	value := ctx.Args().Get(1)

	if err := config.Set(key, value); err != nil {
		return err
	}

	fmt.Fprintf(ctx.App.Writer, "%s %s has been set\n", key, value)

	return nil
}
