package codec

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestMetadataCodec_EncodeDecodeRoundTrip(t *testing.T) {
	codec := NewMetadataCodec()

	nested := NewObject()
	nested.Set("fu", 2.5)
	nested.Set("bar", -0.125)

	outer := NewObject()
	outer.Set("a", 1.5)
	outer.Set("b", "text")
	outer.Set("福 酒吧", nested)

	testCases := []struct {
		name  string
		value any
	}{
		{name: "null", value: nil},
		{name: "true", value: true},
		{name: "false", value: false},
		{name: "zero", value: int64(0)},
		{name: "negative integer", value: int64(-42)},
		{name: "large integer", value: int64(9007199254740993)},
		{name: "simple float", value: 1.5},
		{name: "negative float", value: -2.25},
		{name: "tiny float", value: 5e-324},
		{name: "huge float", value: 1.7976931348623157e+308},
		{name: "integral float", value: 3.0},
		{name: "empty string", value: ""},
		{name: "plain string", value: "hello, world"},
		{name: "unicode string", value: "héllo 世界 🎯"},
		{name: "string with escapes", value: "line1\nline2\t\"quoted\"\\"},
		{name: "string with control bytes", value: "a\x00b\x1fc"},
		{name: "empty array", value: []any{}},
		{name: "mixed array", value: []any{int64(1), "two", 3.5, nil, true}},
		{name: "nested array", value: []any{[]any{int64(1)}, []any{}}},
		{name: "empty object", value: NewObject()},
		{name: "nested object", value: outer},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := codec.Encode(tc.value)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			decoded, err := codec.Decode(encoded)
			if err != nil {
				t.Fatalf("Decode failed for %q: %v", encoded, err)
			}

			if !reflect.DeepEqual(decoded, tc.value) {
				t.Errorf("round trip mismatch: got %#v, want %#v (wire %q)", decoded, tc.value, encoded)
			}
		})
	}
}

func TestMetadataCodec_NonFiniteValues(t *testing.T) {
	codec := NewMetadataCodec()

	t.Run("NaN", func(t *testing.T) {
		encoded, err := codec.Encode(math.NaN())
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if string(encoded) != "NaN" {
			t.Fatalf("wire form mismatch: got %q, want NaN", encoded)
		}
		decoded, err := codec.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		f, ok := decoded.(float64)
		if !ok || !math.IsNaN(f) {
			t.Errorf("decoded value is not NaN: %#v", decoded)
		}
	})

	t.Run("positive infinity", func(t *testing.T) {
		encoded, err := codec.Encode(math.Inf(1))
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if string(encoded) != "Infinity" {
			t.Fatalf("wire form mismatch: got %q, want Infinity", encoded)
		}
		decoded, err := codec.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if decoded != math.Inf(1) {
			t.Errorf("decoded value is not +Inf: %#v", decoded)
		}
	})

	t.Run("negative infinity", func(t *testing.T) {
		encoded, err := codec.Encode(math.Inf(-1))
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if string(encoded) != "-Infinity" {
			t.Fatalf("wire form mismatch: got %q, want -Infinity", encoded)
		}
		decoded, err := codec.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if decoded != math.Inf(-1) {
			t.Errorf("decoded value is not -Inf: %#v", decoded)
		}
	})

	t.Run("non-finite values inside structures", func(t *testing.T) {
		obj := NewObject()
		obj.Set("values", []any{math.NaN(), math.Inf(1), math.Inf(-1), 1.5})

		encoded, err := codec.Encode(obj)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if string(encoded) != `{"values":[NaN,Infinity,-Infinity,1.5]}` {
			t.Fatalf("wire form mismatch: %q", encoded)
		}

		decoded, err := codec.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		got, _ := decoded.(*Object).Get("values")
		values := got.([]any)
		if !math.IsNaN(values[0].(float64)) {
			t.Errorf("element 0 is not NaN: %#v", values[0])
		}
		if values[1] != math.Inf(1) || values[2] != math.Inf(-1) || values[3] != 1.5 {
			t.Errorf("elements mismatch: %#v", values)
		}
	})
}

func TestMetadataCodec_CompactJSONStability(t *testing.T) {
	// A document without non-finite values must survive decode/encode as an
	// identical compact JSON string.
	input := `{"a":1,"b":2,"c":{"d":3,"e":4,"f":{"g":5,"h":6,"i":7},"j":8,"k":9},"l":10,"m":11,"n":12}`

	codec := NewMetadataCodec()
	decoded, err := codec.Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	encoded, err := codec.Encode(decoded)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if string(encoded) != input {
		t.Errorf("output is not byte-identical:\n got %s\nwant %s", encoded, input)
	}
}

func TestMetadataCodec_KeyOrderPreserved(t *testing.T) {
	obj := NewObject()
	obj.Set("zulu", int64(1))
	obj.Set("alpha", int64(2))
	obj.Set("mike", int64(3))

	codec := NewMetadataCodec()
	encoded, err := codec.Encode(obj)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(encoded) != `{"zulu":1,"alpha":2,"mike":3}` {
		t.Fatalf("encode reordered keys: %q", encoded)
	}

	decoded, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	keys := decoded.(*Object).Keys()
	want := []string{"zulu", "alpha", "mike"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("decode reordered keys: got %v, want %v", keys, want)
	}
}

func TestMetadataCodec_IntegerFloatDistinction(t *testing.T) {
	codec := NewMetadataCodec()

	encoded, err := codec.Encode(int64(3))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(encoded) != "3" {
		t.Fatalf("integer wire form mismatch: %q", encoded)
	}

	encoded, err = codec.Encode(3.0)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(encoded) != "3.0" {
		t.Fatalf("float wire form mismatch: %q", encoded)
	}

	decoded, err := codec.Decode([]byte("3.0"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if _, ok := decoded.(float64); !ok {
		t.Errorf("3.0 decoded as %T, want float64", decoded)
	}

	decoded, err = codec.Decode([]byte("3"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if _, ok := decoded.(int64); !ok {
		t.Errorf("3 decoded as %T, want int64", decoded)
	}
}

func TestMetadataCodec_DecodeErrors(t *testing.T) {
	codec := NewMetadataCodec()

	testCases := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "truncated object", input: `{"a":1`},
		{name: "truncated array", input: `[1,2`},
		{name: "unterminated string", input: `"abc`},
		{name: "bad literal", input: "tru"},
		{name: "bad non-finite literal", input: "Infinit"},
		{name: "missing colon", input: `{"a" 1}`},
		{name: "missing comma", input: `[1 2]`},
		{name: "bare key", input: `{a:1}`},
		{name: "trailing data", input: `1 2`},
		{name: "lone minus", input: "-"},
		{name: "malformed number", input: "1.2.3"},
		{name: "control byte", input: "\x01"},
		{name: "truncated unicode escape", input: `"\u12`},
		{name: "bad escape", input: `"\x"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Decode([]byte(tc.input))
			if err == nil {
				t.Fatalf("Decode accepted malformed input %q", tc.input)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("error is %T, want *ParseError", err)
			}
		})
	}
}

func TestMetadataCodec_StringEscapes(t *testing.T) {
	codec := NewMetadataCodec()

	decoded, err := codec.Decode([]byte(`"café 😀 \/ \b\f\n\r\t"`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := "café 😀 / \b\f\n\r\t"
	if decoded != want {
		t.Errorf("escape decoding mismatch: got %q, want %q", decoded, want)
	}

	// Surrogate pairs in \u escapes decode to a single rune.
	decoded, err = codec.Decode([]byte(`"\ud83d\ude00"`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded != "😀" {
		t.Errorf("surrogate pair mismatch: got %q, want 😀", decoded)
	}
}

func TestMetadataCodec_UnsupportedType(t *testing.T) {
	codec := NewMetadataCodec()

	if _, err := codec.Encode(struct{}{}); err == nil {
		t.Error("Encode accepted an unsupported type")
	}
	if _, err := codec.Encode(map[string]any{"a": 1}); err == nil {
		t.Error("Encode accepted an unordered map")
	}
}
