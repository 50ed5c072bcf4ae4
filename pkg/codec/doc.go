// Package codec provides metadata serialization and deserialization for
// chunkstream.
//
// The codec package implements the JSON-based metadata format carried in the
// header block of every protocol chunk. It extends the standard JSON grammar
// with literal tokens for values that IEEE-754 doubles can hold but JSON
// cannot express:
//
//	NaN        not-a-number
//	Infinity   positive infinity
//	-Infinity  negative infinity
//
// Every other value is encoded as ordinary compact JSON (no insignificant
// whitespace), so a metadata document that contains only finite numbers is
// valid JSON byte-for-byte.
//
// # Value Model
//
// Encode and Decode operate on the following Go types:
//
//   - nil
//   - bool
//   - int64 (integer literals)
//   - float64 (fractional, exponent, NaN and Infinity literals)
//   - string
//   - *Object (insertion-ordered string-keyed mapping)
//   - []any (ordered sequence)
//
// Object preserves key order on both encode and decode. This matters for the
// negotiated field-name lists embedded in chunk metadata, where order is
// first-seen order and must survive a round trip.
//
// # Round-Trip Guarantee
//
// For every value v built from the types above, Decode(Encode(v)) returns a
// value equal to v. Integer literals decode as int64; number tokens with a
// fraction or exponent decode as float64. Encode always renders a finite
// float64 with a fraction or exponent so the distinction survives the trip.
//
// # Error Handling
//
// Decode returns a *ParseError for malformed or truncated input, carrying the
// byte offset of the failure. A parse error is fatal for the chunk header
// being processed; the codec never repairs or skips bad input.
//
// # Thread Safety
//
// MetadataCodec instances are stateless and safe for concurrent use. Object
// values are not synchronized and must not be mutated concurrently.
package codec
