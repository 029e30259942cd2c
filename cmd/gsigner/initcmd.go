package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tos-network/gsigner/common"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/log"
	"github.com/tos-network/gsigner/metadata"
	"github.com/tos-network/gsigner/network"
	"github.com/tos-network/gsigner/rawdb"
	"github.com/tos-network/gsigner/verifier"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var errInitialized = errors.New("store is already initialized")

var initCommand = &cli.Command{
	Action:    initStore,
	Name:      "init",
	Usage:     "Seed an empty store with networks, schemas and types",
	ArgsUsage: "<specs.yaml>",
	Description: `
The init command writes the general verifier, the chain specs listed in the
YAML seed file, their verifiers and any schema or type files it references.
Schema and type files hold hex and are resolved relative to the seed file.
A store that already has a general verifier record is left untouched.`,
}

// seedFile is the YAML layout read by init.
type seedFile struct {
	GeneralVerifier string        `yaml:"general_verifier"`
	Types           string        `yaml:"types"`
	Networks        []seedNetwork `yaml:"networks"`
}

type seedNetwork struct {
	Genesis    string            `yaml:"genesis_hash"`
	Encryption string            `yaml:"encryption"`
	Verifier   string            `yaml:"verifier"`
	Metadata   []string          `yaml:"metadata"`
	Spec       network.ChainSpec `yaml:",inline"`
}

// parseVerifier reads "none" (or empty) and "<scheme>:<hex key>".
func parseVerifier(s string) (verifier.Verifier, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return verifier.None, nil
	}
	name, key, ok := strings.Cut(s, ":")
	if !ok {
		return verifier.None, fmt.Errorf("verifier %q: want <scheme>:<hex key>", s)
	}
	scheme, err := crypto.SchemeFromName(name)
	if err != nil {
		return verifier.None, err
	}
	pub, err := common.FromHex(key)
	if err != nil {
		return verifier.None, fmt.Errorf("verifier %q: %v", s, err)
	}
	if len(pub) != scheme.PublicKeyLen() {
		return verifier.None, fmt.Errorf("verifier %q: key is %d bytes, want %d", s, len(pub), scheme.PublicKeyLen())
	}
	return verifier.Signed(scheme, pub), nil
}

func readHexFile(dir, path string) ([]byte, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	blob, err := common.FromHex(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return blob, nil
}

// seedNetworkTo writes one network, its verifier and its schemas.
func seedNetworkTo(w kvdb.KeyValueWriter, dir string, n *seedNetwork) error {
	genesis, err := common.HexToHash(n.Genesis)
	if err != nil {
		return fmt.Errorf("network %s: genesis hash: %v", n.Spec.Name, err)
	}
	scheme, err := crypto.SchemeFromName(n.Encryption)
	if err != nil {
		return fmt.Errorf("network %s: %w", n.Spec.Name, err)
	}
	spec := n.Spec
	spec.GenesisHash, spec.Scheme = genesis, scheme
	if err := network.Insert(w, &spec); err != nil {
		return err
	}
	v, err := parseVerifier(n.Verifier)
	if err != nil {
		return fmt.Errorf("network %s: %w", spec.Name, err)
	}
	if err := verifier.WriteChain(w, genesis, v); err != nil {
		return err
	}
	for _, file := range n.Metadata {
		blob, err := readHexFile(dir, file)
		if err != nil {
			return err
		}
		schema, err := metadata.ParseSchema(blob)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if schema.Name() != spec.Name {
			return fmt.Errorf("%s: schema is for %s, not %s", file, schema.Name(), spec.Name)
		}
		if err := metadata.WriteSchema(w, schema, blob); err != nil {
			return err
		}
		log.Info("Seeded schema", "name", schema.Name(), "version", schema.Version())
	}
	log.Info("Seeded network", "name", spec.Name, "encryption", scheme, "genesis", genesis)
	return nil
}

func initStore(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("need the path of a YAML seed file")
	}
	path := ctx.Args().First()
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("invalid seed file: %w", err)
	}
	general, err := parseVerifier(seed.GeneralVerifier)
	if err != nil {
		return fmt.Errorf("general verifier: %w", err)
	}

	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if existing, err := rawdb.ReadGeneralVerifier(db); err != nil {
		return err
	} else if existing != nil {
		return errInitialized
	}
	var (
		dir   = filepath.Dir(path)
		batch = db.NewBatch()
	)
	if err := verifier.WriteGeneral(batch, general); err != nil {
		return err
	}
	for i := range seed.Networks {
		if err := seedNetworkTo(batch, dir, &seed.Networks[i]); err != nil {
			return err
		}
	}
	if seed.Types != "" {
		catalog, err := readHexFile(dir, seed.Types)
		if err != nil {
			return err
		}
		if _, err := metadata.DecodeCatalog(catalog); err != nil {
			return fmt.Errorf("%s: %w", seed.Types, err)
		}
		if err := metadata.WriteTypeCatalog(batch, catalog); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	if err := db.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Initialized store with %d networks, general verifier %s\n", len(seed.Networks), general)
	return nil
}
