package main

import (
	"fmt"

	"github.com/tos-network/gsigner/keyring"
	"github.com/urfave/cli/v2"
)

const defaultMnemonicBits = 128

var mnemonicCommand = &cli.Command{
	Action:    generateMnemonic,
	Name:      "mnemonic",
	Usage:     "Generate a new recovery phrase",
	ArgsUsage: " ",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "bits",
			Usage: "Entropy size (128, 160, 192, 224 or 256)",
			Value: defaultMnemonicBits,
		},
	},
	Description: `
The mnemonic command prints a fresh recovery phrase. Keep it offline; every
key of the seed is derived from it.`,
}

func generateMnemonic(ctx *cli.Context) error {
	phrase, err := keyring.Generate(ctx.Int("bits"))
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, phrase)
	return nil
}
