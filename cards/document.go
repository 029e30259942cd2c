package cards

import (
	"bytes"
	"encoding/json"
)

// Document is the answer to one parse call. Sections are emitted in field
// order; empty sections are omitted.
type Document struct {
	Author     []Card
	Verifier   []Card
	Warning    []Card
	TypesInfo  []Card
	Meta       []Card
	NewNetwork []Card
	Method     []Card
	Extrinsics []Card
	Error      []Card
	Action     *Action
}

// Failed reports whether the document carries an error card.
func (d *Document) Failed() bool { return len(d.Error) > 0 }

type cardJSON struct {
	Index   int         `json:"index"`
	Indent  uint32      `json:"indent"`
	Type    Kind        `json:"type"`
	Payload interface{} `json:"payload"`
}

// MarshalJSON numbers cards across the whole document in emission order.
func (d *Document) MarshalJSON() ([]byte, error) {
	sections := []struct {
		name  string
		cards []Card
	}{
		{"author", d.Author},
		{"verifier", d.Verifier},
		{"warning", d.Warning},
		{"types_info", d.TypesInfo},
		{"meta", d.Meta},
		{"new_network", d.NewNetwork},
		{"method", d.Method},
		{"extrinsics", d.Extrinsics},
		{"error", d.Error},
	}
	var (
		buf   bytes.Buffer
		index int
		first = true
	)
	buf.WriteByte('{')
	sep := func(name string) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(`"` + name + `":`)
	}
	for _, s := range sections {
		if len(s.cards) == 0 {
			continue
		}
		list := make([]cardJSON, len(s.cards))
		for i, c := range s.cards {
			list[i] = cardJSON{Index: index, Indent: c.Indent, Type: c.Kind, Payload: c.Payload}
			index++
		}
		out, err := encode(list)
		if err != nil {
			return nil, err
		}
		sep(s.name)
		buf.Write(out)
	}
	if d.Action != nil {
		out, err := encode(d.Action)
		if err != nil {
			return nil, err
		}
		sep("action")
		buf.Write(out)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the document as JSON.
func (d *Document) String() string {
	out, err := encode(d)
	if err != nil {
		// A lone string card always marshals.
		out, _ = encode(&Document{Error: []Card{Error(err)}})
	}
	return string(out)
}

// encode marshals without escaping <, > and & so docs and type names read
// as written.
func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}
