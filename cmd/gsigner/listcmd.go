package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/tos-network/gsigner/address"
	"github.com/tos-network/gsigner/cmd/utils"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/keyring"
	"github.com/tos-network/gsigner/metadata"
	"github.com/tos-network/gsigner/network"
	"github.com/tos-network/gsigner/verifier"
	"github.com/urfave/cli/v2"
)

// defaultSS58Prefix renders addresses not tied to a known network.
const defaultSS58Prefix = 42

var (
	seedNameFlag = &cli.StringFlag{
		Name:     "seed",
		Usage:    "Name of the seed the key is derived from",
		Required: true,
	}
	pathFlag = &cli.StringFlag{
		Name:  "path",
		Usage: "Derivation path, empty or starting with '/'",
	}
	nameFlag = &cli.StringFlag{
		Name:  "name",
		Usage: "Display name of the address",
	}
	encryptionFlag = &cli.StringFlag{
		Name:  "encryption",
		Usage: "Signature scheme of the key (ed25519, sr25519 or ecdsa)",
		Value: crypto.Sr25519.String(),
	}
	networksFlag = &cli.StringFlag{
		Name:  "networks",
		Usage: "Comma separated names of the networks the address may sign for",
	}
	withPasswordFlag = &cli.BoolFlag{
		Name:  "with-password",
		Usage: "The key is derived with a password (prompted for unless --password-file is given)",
	}
)

var (
	networksCommand = &cli.Command{
		Action:    listNetworks,
		Name:      "networks",
		Usage:     "List the known networks with their schemas and verifiers",
		ArgsUsage: " ",
	}
	addressCommand = &cli.Command{
		Name:  "address",
		Usage: "Manage the address records of derived keys",
		Subcommands: []*cli.Command{
			{
				Action: addAddress,
				Name:   "add",
				Usage:  "Derive a key and record it as a signing address",
				Flags: []cli.Flag{
					seedNameFlag,
					pathFlag,
					nameFlag,
					encryptionFlag,
					networksFlag,
					withPasswordFlag,
					utils.PhraseFileFlag,
					utils.PasswordFileFlag,
				},
			},
			{
				Action: listAddresses,
				Name:   "list",
				Usage:  "List the recorded addresses",
			},
		},
	}
)

func joinVersions(versions []uint32) string {
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(out, ",")
}

func listNetworks(ctx *cli.Context) error {
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	specs, err := network.NewRegistry(db).All()
	if err != nil {
		return err
	}
	var (
		schemas = metadata.NewRegistry(db)
		ledger  = verifier.NewLedger(db)
		table   = tablewriter.NewWriter(ctx.App.Writer)
	)
	table.SetHeader([]string{"Name", "Title", "Encryption", "Genesis", "Prefix", "Unit", "Decimals", "Versions", "Verifier"})
	for _, spec := range specs {
		versions, err := schemas.Versions(spec.Name)
		if err != nil {
			return err
		}
		v, known, err := ledger.ChainIfKnown(spec.GenesisHash)
		if err != nil {
			return err
		}
		trust := v.String()
		if !known {
			trust = "missing"
		}
		table.Append([]string{
			spec.Name, spec.Title, spec.Scheme.String(), spec.GenesisHash.Hex(),
			strconv.Itoa(int(spec.Base58Prefix)), spec.Unit, strconv.Itoa(int(spec.Decimals)),
			joinVersions(versions), trust,
		})
	}
	table.Render()

	general, err := ledger.General()
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, "General verifier:", general)
	return nil
}

// resolveNetworks maps network names to the registry entries of scheme.
func resolveNetworks(specs []*network.ChainSpec, scheme crypto.Scheme, names []string) ([]*network.ChainSpec, error) {
	var out []*network.ChainSpec
	for _, name := range names {
		var found bool
		for _, spec := range specs {
			if spec.Name == name && spec.Scheme == scheme {
				out = append(out, spec)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("no %s network named %q", scheme, name)
		}
	}
	return out, nil
}

func addAddress(ctx *cli.Context) error {
	scheme, err := crypto.SchemeFromName(ctx.String(encryptionFlag.Name))
	if err != nil {
		return err
	}
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	specs, err := network.NewRegistry(db).All()
	if err != nil {
		return err
	}
	allowed, err := resolveNetworks(specs, scheme, utils.SplitAndTrim(ctx.String(networksFlag.Name)))
	if err != nil {
		return err
	}
	phrase, err := utils.GetRecoveryPhrase(ctx.Path(utils.PhraseFileFlag.Name))
	if err != nil {
		return err
	}
	var password string
	if ctx.Bool(withPasswordFlag.Name) {
		if path := ctx.Path(utils.PasswordFileFlag.Name); path != "" {
			if password, err = utils.ReadSecretFile(path); err != nil {
				return err
			}
		} else {
			password = utils.GetPassPhrase("Derivation password", true)
		}
		if password == "" {
			return errors.New("empty derivation password")
		}
	}
	path := ctx.String(pathFlag.Name)
	pub, err := keyring.New().Public(scheme, path, phrase, password)
	if err != nil {
		return err
	}

	rec, err := address.NewRegistry(db).Lookup(pub, scheme)
	if errors.Is(err, address.ErrNoAddress) {
		rec = &address.Record{SeedName: ctx.String(seedNameFlag.Name), Path: path, HasPassword: password != ""}
	} else if err != nil {
		return err
	}
	if name := ctx.String(nameFlag.Name); name != "" {
		rec.Name = name
	}
	prefix := uint16(defaultSS58Prefix)
	for i, spec := range allowed {
		rec.Allow(spec.Identity())
		if i == 0 {
			prefix = spec.Base58Prefix
		}
	}
	if err := address.Write(db, scheme, pub, rec); err != nil {
		return err
	}
	if err := db.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Recorded %s address %s (%x)\n", scheme, crypto.SS58Encode(pub, prefix), pub)
	return nil
}

func listAddresses(ctx *cli.Context) error {
	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := address.NewRegistry(db).All()
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Address", "Encryption", "Seed", "Path", "Password", "Name", "Networks"})
	for _, e := range entries {
		table.Append([]string{
			crypto.SS58Encode(e.PublicKey, defaultSS58Prefix), e.Scheme.String(), e.SeedName, e.Path,
			strconv.FormatBool(e.HasPassword), e.Name, strconv.Itoa(len(e.Networks)),
		})
	}
	table.Render()
	return nil
}
