package params

// Payload prelude. Every payload the signer accepts starts with three bytes:
// the family marker, the scheme tag of its signer and the payload type.
const (
	PayloadMarker byte = 0x53

	// UnsignedScheme in the scheme position marks an update payload that
	// carries no verifier signature.
	UnsignedScheme byte = 0xff

	PayloadTransaction       byte = 0x00
	PayloadTransactionLegacy byte = 0x02
	PayloadLoadMetadata      byte = 0x80
	PayloadLoadTypes         byte = 0x81
	PayloadAddNetwork        byte = 0xc0

	PreludeLength = 3
)

const (
	// SchemaMagic opens every runtime schema blob.
	SchemaMagic = "meta"

	// MinSchemaFamily is the oldest schema layout the decoder can read.
	MinSchemaFamily byte = 12

	// MaxMessageLength is the largest message signed directly; longer
	// messages are signed over their blake2b-256 digest.
	MaxMessageLength = 256

	// MaxDecodeDepth bounds type nesting while rendering a call.
	MaxDecodeDepth = 64

	// SchemaCacheSize is the number of parsed schemas kept in memory.
	SchemaCacheSize = 16
)
