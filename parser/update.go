package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/tos-network/gsigner/cards"
	"github.com/tos-network/gsigner/common"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/metadata"
	"github.com/tos-network/gsigner/network"
	"github.com/tos-network/gsigner/scale"
	"github.com/tos-network/gsigner/staging"
	"github.com/tos-network/gsigner/verifier"
)

var (
	ErrBadUpdate        = errs.New(errs.BadInput, "parser: update content not decodeable")
	ErrSchemaForOther   = errs.New(errs.BadInput, "parser: received schema belongs to another network")
	ErrSchemaKnown      = errs.New(errs.BadInput, "parser: metadata already in database")
	ErrSchemaConflict   = errs.New(errs.BadInput, "parser: attempt to load different metadata for same name and version")
	ErrTypesKnown       = errs.New(errs.BadInput, "parser: types information already in database")
	ErrEmptyTypes       = errs.New(errs.BadInput, "parser: received types information is empty")
	ErrNoNetworkForMeta = errs.New(errs.NotFound, "parser: no network on record for the metadata genesis hash")
)

// upgrades records which verifier scopes an update will raise from None.
type upgrades struct {
	chain, general bool
}

func (p *parser) addNetwork(u *update) error {
	d := scale.NewDecoder(u.content)
	blob, err := d.ReadBytes()
	if err != nil {
		return fmt.Errorf("%w: schema: %v", ErrBadUpdate, err)
	}
	spec, err := network.ReadChainSpec(d)
	if err == nil {
		err = d.Finish()
	}
	if err != nil {
		return fmt.Errorf("%w: chain spec: %v", ErrBadUpdate, err)
	}
	schema, err := metadata.Parse(blob)
	if err != nil {
		return err
	}
	if schema.Name() != spec.Name {
		return fmt.Errorf("%w: schema %q, network %q", ErrSchemaForOther, schema.Name(), spec.Name)
	}

	ledger := verifier.NewLedger(p.db)
	general, err := ledger.General()
	if err != nil {
		return err
	}
	generalOutcome, err := verifier.Admit(general, u.verifier)
	if err != nil {
		return err
	}

	known, err := network.NewRegistry(p.db).Resolve(spec.GenesisHash, spec.Scheme)
	if errors.Is(err, network.ErrNoNetwork) {
		return p.newNetwork(u, spec, schema, blob, generalOutcome == verifier.Upgraded)
	}
	if err != nil {
		return err
	}
	if network.ImportantSpecsChanged(known, spec) {
		return network.ErrSpecsChanged
	}
	current, err := ledger.Chain(known.GenesisHash)
	if err != nil {
		return err
	}
	chainOutcome, err := verifier.Admit(current, u.verifier)
	if err != nil {
		return err
	}

	up := upgrades{chain: chainOutcome == verifier.Upgraded, general: generalOutcome == verifier.Upgraded}
	if u.verifier.IsNone() {
		p.warn(cards.NotVerified)
	}
	p.warn(cards.NetworkAlreadyHasEntries)
	if up.chain {
		p.warn(cards.VerifierAppeared)
	}
	if up.general {
		p.warn(cards.GeneralVerifierAppeared)
	}
	return p.offerSchema(u.verifier, known.GenesisHash, schema, blob, up)
}

func (p *parser) newNetwork(u *update, spec *network.ChainSpec, schema metadata.Schema, blob []byte, generalUp bool) error {
	// The genesis may already be on record under another scheme; its
	// verifier then guards this scheme too.
	current, known, err := verifier.NewLedger(p.db).ChainIfKnown(spec.GenesisHash)
	if err != nil {
		return err
	}
	chainUp := false
	if known {
		outcome, err := verifier.Admit(current, u.verifier)
		if err != nil {
			return err
		}
		chainUp = outcome == verifier.Upgraded
	}
	if u.verifier.IsNone() {
		p.warn(cards.AddNetworkNotVerified)
	}
	if chainUp {
		p.warn(cards.VerifierAppeared)
	}
	if generalUp {
		p.warn(cards.GeneralVerifierAppeared)
	}
	p.doc.NewNetwork = append(p.doc.NewNetwork, cards.NewNetwork(cards.NetworkPayload{
		SpecName:       schema.Name(),
		SpecVersion:    strconv.FormatUint(uint64(schema.Version()), 10),
		MetaHash:       blobHash(blob),
		Base58Prefix:   strconv.FormatUint(uint64(spec.Base58Prefix), 10),
		Color:          spec.Color,
		Decimals:       strconv.FormatUint(uint64(spec.Decimals), 10),
		Encryption:     spec.Scheme.String(),
		GenesisHash:    spec.GenesisHash.Hex(),
		Logo:           spec.Logo,
		Name:           spec.Name,
		PathID:         spec.PathID,
		SecondaryColor: spec.SecondaryColor,
		Title:          spec.Title,
		Unit:           spec.Unit,
		Verifier:       verifierPayload(u.verifier),
	}))
	return p.stage(&staging.AddChain{
		Spec:           *spec,
		Blob:           blob,
		Verifier:       u.verifier,
		GeneralUpgrade: generalUp,
		History:        p.history,
	})
}

func (p *parser) loadMetadata(u *update) error {
	d := scale.NewDecoder(u.content)
	blob, err := d.ReadBytes()
	if err != nil {
		return fmt.Errorf("%w: schema: %v", ErrBadUpdate, err)
	}
	raw, err := d.ReadFixed(common.HashLength)
	if err == nil {
		err = d.Finish()
	}
	if err != nil {
		return fmt.Errorf("%w: genesis hash: %v", ErrBadUpdate, err)
	}
	genesis := common.BytesToHash(raw)

	schema, err := metadata.Parse(blob)
	if err != nil {
		return err
	}
	specs, err := network.NewRegistry(p.db).ByGenesis(genesis)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("%w: %s", ErrNoNetworkForMeta, genesis)
	}
	named := false
	for _, spec := range specs {
		if spec.Name == schema.Name() {
			named = true
		}
	}
	if !named {
		return fmt.Errorf("%w: schema %q, network %q", ErrSchemaForOther, schema.Name(), specs[0].Name)
	}

	current, err := verifier.NewLedger(p.db).Chain(genesis)
	if err != nil {
		return err
	}
	outcome, err := verifier.Admit(current, u.verifier)
	if err != nil {
		return err
	}
	up := upgrades{chain: outcome == verifier.Upgraded}
	if u.verifier.IsNone() {
		p.warn(cards.NotVerified)
	}
	if up.chain {
		p.warn(cards.VerifierAppeared)
	}
	return p.offerSchema(u.verifier, genesis, schema, blob, up)
}

// offerSchema stages the received schema, or only the verifier upgrades
// when identical bytes are already stored.
func (p *parser) offerSchema(v verifier.Verifier, genesis common.Hash, schema metadata.Schema, blob []byte, up upgrades) error {
	stored, err := metadata.NewRegistry(p.db).SchemaBytes(schema.Name(), schema.Version())
	if err != nil {
		return err
	}
	if stored != nil {
		if !bytes.Equal(stored, blob) {
			return fmt.Errorf("%w: %s %d", ErrSchemaConflict, schema.Name(), schema.Version())
		}
		switch {
		case up.chain && up.general:
			p.warn(cards.MetaAlreadyThereBothVerifier)
		case up.chain:
			p.warn(cards.MetaAlreadyThereChainVerifier)
		case up.general:
			p.warn(cards.MetaAlreadyThereGeneralVerifier)
			return p.stage(&staging.UpdateGeneralVerifier{Verifier: v, History: p.history})
		default:
			return fmt.Errorf("%w: %s %d", ErrSchemaKnown, schema.Name(), schema.Version())
		}
		return p.stage(&staging.UpdateChainVerifier{
			Genesis:        genesis,
			Verifier:       v,
			GeneralUpgrade: up.general,
			History:        p.history,
		})
	}

	p.doc.Meta = append(p.doc.Meta, cards.Meta(cards.MetaPayload{
		SpecName:    schema.Name(),
		SpecVersion: strconv.FormatUint(uint64(schema.Version()), 10),
		MetaHash:    blobHash(blob),
	}))
	return p.stage(&staging.LoadMetadata{
		Genesis:        genesis,
		Blob:           blob,
		Verifier:       v,
		ChainUpgrade:   up.chain,
		GeneralUpgrade: up.general,
		History:        p.history,
	})
}

func (p *parser) loadTypes(u *update) error {
	d := scale.NewDecoder(u.content)
	raw, err := d.ReadBytes()
	if err == nil {
		err = d.Finish()
	}
	if err != nil {
		return fmt.Errorf("%w: types: %v", ErrBadUpdate, err)
	}
	catalog, err := metadata.DecodeCatalog(raw)
	if err != nil {
		return err
	}
	if len(catalog) == 0 {
		return ErrEmptyTypes
	}

	general, err := verifier.NewLedger(p.db).General()
	if err != nil {
		return err
	}
	outcome, err := verifier.Admit(general, u.verifier)
	if err != nil {
		return err
	}
	generalUp := outcome == verifier.Upgraded
	if u.verifier.IsNone() {
		p.warn(cards.TypesNotVerified)
	}
	if generalUp {
		p.warn(cards.GeneralVerifierAppeared)
	}

	stored, err := metadata.NewRegistry(p.db).TypeCatalogBytes()
	if err != nil && !errors.Is(err, metadata.ErrNoTypes) {
		return err
	}
	if bytes.Equal(stored, raw) {
		if !generalUp {
			return ErrTypesKnown
		}
		p.warn(cards.TypesAlreadyThere)
		return p.stage(&staging.UpdateGeneralVerifier{Verifier: u.verifier, History: p.history})
	}
	p.warn(cards.UpdatingTypes)
	p.doc.TypesInfo = append(p.doc.TypesInfo, cards.TypesHash(blobHash(raw)))
	return p.stage(&staging.LoadTypeCatalog{
		Catalog:        raw,
		Verifier:       u.verifier,
		GeneralUpgrade: generalUp,
		History:        p.history,
	})
}

func blobHash(b []byte) string {
	return common.Hash(crypto.Blake2b256(b)).Hex()
}
