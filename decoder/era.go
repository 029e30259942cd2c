package decoder

import (
	"fmt"

	"github.com/tos-network/gsigner/scale"
)

// Era is the validity window of a transaction. Immortal transactions carry
// the genesis hash in place of a block hash.
type Era struct {
	Immortal bool
	Period   uint64
	Phase    uint64
}

// ReadEra decodes one immortal byte (0x00) or a two-byte mortal encoding.
func ReadEra(d *scale.Decoder) (Era, error) {
	first, err := d.ReadByte()
	if err != nil {
		return Era{}, err
	}
	if first == 0 {
		return Era{Immortal: true}, nil
	}
	second, err := d.ReadByte()
	if err != nil {
		return Era{}, err
	}
	enc := uint64(first) | uint64(second)<<8
	period := uint64(2) << (enc % 16)
	quantize := period >> 12
	if quantize == 0 {
		quantize = 1
	}
	phase := (enc >> 4) * quantize
	if period < 4 || phase >= period {
		return Era{}, fmt.Errorf("%w: era period %d phase %d", scale.ErrSchemaViolation, period, phase)
	}
	return Era{Period: period, Phase: phase}, nil
}

// Encode is the inverse of ReadEra.
func (e Era) Encode() []byte {
	if e.Immortal {
		return []byte{0}
	}
	quantize := e.Period >> 12
	if quantize == 0 {
		quantize = 1
	}
	low := uint64(0)
	for p := e.Period; p > 2 && low < 15; p >>= 1 {
		low++
	}
	enc := low | (e.Phase/quantize)<<4
	return []byte{byte(enc), byte(enc >> 8)}
}
