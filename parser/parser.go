// Package parser turns a scanned payload into a card document and stages
// the action it asks for.
//
// Parse never fails outright: every failure becomes an error card, with
// whatever could still be rendered before it.
package parser

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tos-network/gsigner/cards"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/log"
	"github.com/tos-network/gsigner/params"
	"github.com/tos-network/gsigner/staging"
	"github.com/tos-network/gsigner/verifier"
)

var (
	ErrNotHex         = errs.New(errs.BadInput, "parser: payload is not hex")
	ErrTooShort       = errs.New(errs.BadInput, "parser: payload too short")
	ErrBadMarker      = errs.New(errs.BadInput, "parser: payload marker is not 0x53")
	ErrUnknownPayload = errs.New(errs.BadInput, "parser: unknown payload type")
	ErrBadSignature   = errs.New(errs.BadInput, "parser: update signature does not verify")
	ErrUnsignedTx     = errs.New(errs.BadInput, "parser: transactions must name their author scheme")
)

// Parse decodes payload against the store and returns the document to show
// the user. An action, when present, is already staged in db.
func Parse(db kvdb.KeyValueStore, payload string) *cards.Document {
	doc := new(cards.Document)
	p := &parser{db: db, doc: doc}
	if err := p.parse(payload); err != nil {
		log.Debug("Payload rejected", "err", err)
		doc.Error = append(doc.Error, cards.Error(err))
		doc.Action = nil
	}
	return doc
}

type parser struct {
	db  kvdb.KeyValueStore
	doc *cards.Document

	history []staging.Event
}

func (p *parser) parse(payload string) error {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(payload), "0x"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotHex, err)
	}
	if len(raw) < params.PreludeLength {
		return ErrTooShort
	}
	if raw[0] != params.PayloadMarker {
		return fmt.Errorf("%w: %#02x", ErrBadMarker, raw[0])
	}
	scheme, kind, body := raw[1], raw[2], raw[params.PreludeLength:]

	switch kind {
	case params.PayloadTransaction, params.PayloadTransactionLegacy:
		if scheme == params.UnsignedScheme {
			return ErrUnsignedTx
		}
		s, err := crypto.ParseScheme(scheme)
		if err != nil {
			return err
		}
		return p.transaction(s, body)
	case params.PayloadLoadMetadata, params.PayloadLoadTypes, params.PayloadAddNetwork:
		u, err := readUpdate(scheme, body)
		if err != nil {
			return err
		}
		if !u.verifier.IsNone() {
			p.doc.Verifier = append(p.doc.Verifier, verifierCard(u.verifier))
		}
		switch kind {
		case params.PayloadLoadMetadata:
			return p.loadMetadata(u)
		case params.PayloadLoadTypes:
			return p.loadTypes(u)
		default:
			return p.addNetwork(u)
		}
	}
	return fmt.Errorf("%w: %#02x", ErrUnknownPayload, kind)
}

// update is a verified update body.
type update struct {
	verifier verifier.Verifier
	content  []byte
}

// readUpdate splits a signed update into key, content and signature and
// checks the signature over the content.
func readUpdate(scheme byte, body []byte) (*update, error) {
	if scheme == params.UnsignedScheme {
		return &update{verifier: verifier.None, content: body}, nil
	}
	s, err := crypto.ParseScheme(scheme)
	if err != nil {
		return nil, err
	}
	keyLen, sigLen := s.PublicKeyLen(), s.SignatureLen()
	if len(body) < keyLen+sigLen {
		return nil, ErrTooShort
	}
	var (
		pub     = body[:keyLen]
		content = body[keyLen : len(body)-sigLen]
		sig     = body[len(body)-sigLen:]
	)
	if !crypto.Verify(s, pub, content, sig) {
		return nil, ErrBadSignature
	}
	return &update{verifier: verifier.Signed(s, pub), content: content}, nil
}

func (p *parser) warn(w cards.Warning) {
	p.doc.Warning = append(p.doc.Warning, cards.Warn(w))
	p.history = append(p.history, staging.NewEvent(staging.EventWarning, w.String()))
}

// stage writes a and attaches the action reference to the document.
func (p *parser) stage(a staging.Action) error {
	sum, err := staging.Stage(p.db, a)
	if err != nil {
		return err
	}
	p.doc.Action = &cards.Action{Kind: a.Kind(), Checksum: sum}
	return nil
}

func verifierPayload(v verifier.Verifier) cards.VerifierPayload {
	if v.IsNone() {
		return cards.VerifierPayload{Hex: "", Encryption: "none"}
	}
	return cards.VerifierPayload{Hex: hex.EncodeToString(v.PublicKey), Encryption: v.Scheme.String()}
}

func verifierCard(v verifier.Verifier) cards.Card {
	return cards.Verifier(verifierPayload(v))
}
