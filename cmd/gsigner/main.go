// gsigner is the command line host of the air-gapped signer. It parses
// payloads into display cards, stages the resulting actions and commits
// them on approval.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/tos-network/gsigner/cmd/utils"
	"github.com/tos-network/gsigner/internal/flags"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/urfave/cli/v2"
)

const clientIdentifier = "gsigner"

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""
var gitDate = ""

var app = newApp()

func newApp() *cli.App {
	app := flags.NewApp(gitCommit, gitDate, "the air-gapped transaction signer")
	app.Flags = flags.Merge(
		[]cli.Flag{utils.ConfigFileFlag},
		utils.StoreFlags,
		utils.LoggingFlags,
	)
	app.Commands = []*cli.Command{
		initCommand,
		parseCommand,
		approveCommand,
		networksCommand,
		addressCommand,
		stagedCommand,
		historyCommand,
		mnemonicCommand,
		dumpConfigCommand,
		versionCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		cfg, err := makeConfig(ctx)
		if err != nil {
			return err
		}
		utils.SetupLogging(&cfg.Log)
		if !cfg.Log.Color {
			color.NoColor = true
		}
		return nil
	}
	return app
}

// openStore opens the store selected by the config file and flags.
func openStore(ctx *cli.Context) (kvdb.KeyValueStore, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, err
	}
	return utils.OpenStore(&cfg.Store)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
