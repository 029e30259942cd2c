package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/tos-network/gsigner/cards"
	"github.com/tos-network/gsigner/cmd/utils"
	"github.com/tos-network/gsigner/executor"
	"github.com/tos-network/gsigner/internal/flags"
	"github.com/tos-network/gsigner/keyring"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/parser"
	"github.com/tos-network/gsigner/staging"
	"github.com/urfave/cli/v2"
)

var (
	commentFlag = &cli.StringFlag{
		Name:     "comment",
		Usage:    "Comment stored with the history entry of the approval",
		Category: flags.SigningCategory,
	}
	dumpFlag = &cli.BoolFlag{
		Name:  "dump",
		Usage: "Dump the full decoded structures",
	}
)

var (
	parseCommand = &cli.Command{
		Action:    parsePayload,
		Name:      "parse",
		Usage:     "Decode a payload into display cards and stage its action",
		ArgsUsage: "<hex payload | ->",
		Description: `
The parse command prints the card document of a payload as JSON. When the
document carries an action, echo its payload to the approve command. With
"-" or no argument the payload is read from standard input.`,
	}
	approveCommand = &cli.Command{
		Action:    approve,
		Name:      "approve",
		Usage:     "Commit a staged action",
		ArgsUsage: "<action payload JSON>",
		Flags: []cli.Flag{
			utils.PhraseFileFlag,
			utils.PasswordFileFlag,
			commentFlag,
		},
		Description: `
The approve command commits the action staged by the last parse. Signing
actions need the recovery phrase of the author, and its derivation password
when the address has one; the signature is printed as hex.`,
	}
	stagedCommand = &cli.Command{
		Action:    listStaged,
		Name:      "staged",
		Usage:     "Show the actions waiting for approval",
		ArgsUsage: " ",
		Flags:     []cli.Flag{dumpFlag},
	}
	historyCommand = &cli.Command{
		Action:    listHistory,
		Name:      "history",
		Usage:     "Show the committed history",
		ArgsUsage: " ",
		Flags:     []cli.Flag{dumpFlag},
	}
)

func readPayload(ctx *cli.Context) (string, error) {
	if arg := ctx.Args().First(); arg != "" && arg != "-" {
		return arg, nil
	}
	reader := ctx.App.Reader
	if reader == nil {
		reader = os.Stdin
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func parsePayload(ctx *cli.Context) error {
	payload, err := readPayload(ctx)
	if err != nil {
		return err
	}
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	doc := parser.Parse(db, payload)
	fmt.Fprintln(ctx.App.Writer, doc.String())

	stderr := ctx.App.ErrWriter
	if stderr == nil {
		stderr = os.Stderr
	}
	for _, c := range doc.Warning {
		fmt.Fprintln(stderr, color.YellowString("WARNING:"), c.Payload)
	}
	for _, c := range doc.Error {
		fmt.Fprintln(stderr, color.RedString("ERROR:"), c.Payload)
	}
	if doc.Action != nil {
		fmt.Fprintln(stderr, color.GreenString("Staged %s, approve with:", doc.Action.Kind), doc.Action.Payload())
	}
	return nil
}

// secretsFor collects the recovery phrase and password a staged signing
// action needs. Other actions need neither.
func secretsFor(ctx *cli.Context, db kvdb.Reader, ref *cards.Action) (secret, password string, err error) {
	if ref.Kind != cards.SignTransaction {
		return "", "", nil
	}
	a, err := staging.Take(db, ref.Kind, ref.Checksum)
	if err != nil {
		return "", "", err
	}
	sign := a.(*staging.Sign)
	if secret, err = utils.GetRecoveryPhrase(ctx.Path(utils.PhraseFileFlag.Name)); err != nil {
		return "", "", err
	}
	if sign.HasPassword {
		if path := ctx.Path(utils.PasswordFileFlag.Name); path != "" {
			password, err = utils.ReadSecretFile(path)
		} else {
			password = utils.GetPassPhrase(fmt.Sprintf("Derivation password for %s%s", sign.SeedName, sign.Path), false)
		}
	}
	return secret, password, err
}

func approve(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("need the action payload printed by parse")
	}
	actionJSON := ctx.Args().First()
	ref, err := cards.ParseActionPayload(actionJSON)
	if err != nil {
		return err
	}
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	secret, password, err := secretsFor(ctx, db, ref)
	if err != nil {
		return err
	}
	sig, err := executor.Approve(db, keyring.New(), actionJSON, secret, password, ctx.String(commentFlag.Name))
	if err != nil {
		return err
	}
	if sig != "" {
		fmt.Fprintln(ctx.App.Writer, sig)
		return nil
	}
	fmt.Fprintf(ctx.App.Writer, "Applied %s\n", ref.Kind)
	return nil
}

func listStaged(ctx *cli.Context) error {
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	pending, err := staging.Pending(db)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(ctx.App.Writer, "Nothing staged")
		return nil
	}
	sum, err := kvdb.Checksum(db)
	if err != nil {
		return err
	}
	for _, a := range pending {
		ref := cards.Action{Kind: a.Kind(), Checksum: sum}
		fmt.Fprintln(ctx.App.Writer, a.Kind(), ref.Payload())
		if ctx.Bool(dumpFlag.Name) {
			fmt.Fprint(ctx.App.Writer, spew.Sdump(a))
		}
	}
	return nil
}

func listHistory(ctx *cli.Context) error {
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := staging.History(db)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if ctx.Bool(dumpFlag.Name) {
			fmt.Fprint(ctx.App.Writer, spew.Sdump(e))
			continue
		}
		fmt.Fprintf(ctx.App.Writer, "#%d %s\n", e.Seq, time.Unix(int64(e.Time), 0).UTC().Format(time.RFC3339))
		for _, ev := range e.Events {
			fmt.Fprintf(ctx.App.Writer, "    %s\n", ev)
		}
	}
	return nil
}
