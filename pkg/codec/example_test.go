package codec_test

import (
	"fmt"
	"log"
	"math"

	"github.com/tushartg/chunkstream/pkg/codec"
)

// ExampleMetadataCodec demonstrates a basic encode/decode round trip.
func ExampleMetadataCodec() {
	c := codec.NewMetadataCodec()

	nested := codec.NewObject()
	nested.Set("d", int64(3))

	metadata := codec.NewObject()
	metadata.Set("a", int64(1))
	metadata.Set("b", int64(2))
	metadata.Set("c", nested)

	encoded, err := c.Encode(metadata)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(encoded))

	decoded, err := c.Decode(encoded)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(decoded.(*codec.Object).Keys())

	// Output:
	// {"a":1,"b":2,"c":{"d":3}}
	// [a b c]
}

// ExampleMetadataCodec_nonFinite demonstrates the extended number literals.
func ExampleMetadataCodec_nonFinite() {
	c := codec.NewMetadataCodec()

	encoded, err := c.Encode([]any{math.NaN(), math.Inf(1), math.Inf(-1)})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(encoded))

	// Output:
	// [NaN,Infinity,-Infinity]
}
