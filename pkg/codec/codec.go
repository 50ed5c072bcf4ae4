package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ParseError describes a decoding failure and where in the input it happened.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("codec: parse error at offset %d: %s", e.Offset, e.Message)
}

// MetadataCodec encodes and decodes chunk metadata as compact JSON extended
// with NaN, Infinity and -Infinity literals.
type MetadataCodec struct{}

// NewMetadataCodec creates a new metadata codec instance.
func NewMetadataCodec() *MetadataCodec {
	return &MetadataCodec{}
}

// Encode serializes a value into compact extended-JSON text.
func (c *MetadataCodec) Encode(v any) ([]byte, error) {
	return appendValue(nil, v)
}

// Decode deserializes extended-JSON text into a value. JSON objects decode
// as *Object, arrays as []any, integer literals as int64 and all other
// numbers, including the non-finite literals, as float64.
func (c *MetadataCodec) Decode(data []byte) (any, error) {
	d := &decoder{data: data}
	d.skipSpace()
	v, err := d.value()
	if err != nil {
		return nil, err
	}
	d.skipSpace()
	if d.pos != len(d.data) {
		return nil, d.errorf("trailing data after value")
	}
	return v, nil
}

func appendValue(buf []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return append(buf, "null"...), nil
	case bool:
		if x {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil
	case int:
		return strconv.AppendInt(buf, int64(x), 10), nil
	case int64:
		return strconv.AppendInt(buf, x, 10), nil
	case float64:
		return appendFloat(buf, x), nil
	case string:
		return appendString(buf, x), nil
	case *Object:
		var err error
		buf = append(buf, '{')
		for i, key := range x.keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendString(buf, key)
			buf = append(buf, ':')
			if buf, err = appendValue(buf, x.values[key]); err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	case []any:
		var err error
		buf = append(buf, '[')
		for i, elem := range x {
			if i > 0 {
				buf = append(buf, ',')
			}
			if buf, err = appendValue(buf, elem); err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case []string:
		buf = append(buf, '[')
		for i, elem := range x {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendString(buf, elem)
		}
		return append(buf, ']'), nil
	default:
		return nil, fmt.Errorf("codec: unsupported type %T", v)
	}
}

func appendFloat(buf []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(buf, "NaN"...)
	case math.IsInf(f, 1):
		return append(buf, "Infinity"...)
	case math.IsInf(f, -1):
		return append(buf, "-Infinity"...)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Keep integral floats distinguishable from integer literals.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return append(buf, s...)
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); i++ {
		switch b := s[i]; {
		case b == '"':
			buf = append(buf, '\\', '"')
		case b == '\\':
			buf = append(buf, '\\', '\\')
		case b >= 0x20:
			// Multi-byte UTF-8 sequences pass through unescaped.
			buf = append(buf, b)
		case b == '\n':
			buf = append(buf, '\\', 'n')
		case b == '\r':
			buf = append(buf, '\\', 'r')
		case b == '\t':
			buf = append(buf, '\\', 't')
		case b == '\b':
			buf = append(buf, '\\', 'b')
		case b == '\f':
			buf = append(buf, '\\', 'f')
		default:
			buf = append(buf, fmt.Sprintf("\\u%04x", b)...)
		}
	}
	return append(buf, '"')
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) errorf(format string, args ...any) error {
	return &ParseError{Offset: d.pos, Message: fmt.Sprintf(format, args...)}
}

func (d *decoder) skipSpace() {
	for d.pos < len(d.data) {
		switch d.data[d.pos] {
		case ' ', '\t', '\n', '\r':
			d.pos++
		default:
			return
		}
	}
}

func (d *decoder) value() (any, error) {
	if d.pos >= len(d.data) {
		return nil, d.errorf("unexpected end of input")
	}
	switch c := d.data[d.pos]; {
	case c == '{':
		obj, err := d.object()
		if err != nil {
			return nil, err
		}
		return obj, nil
	case c == '[':
		elems, err := d.array()
		if err != nil {
			return nil, err
		}
		return elems, nil
	case c == '"':
		s, err := d.string()
		if err != nil {
			return nil, err
		}
		return s, nil
	case c == 't':
		return d.literal("true", true)
	case c == 'f':
		return d.literal("false", false)
	case c == 'n':
		return d.literal("null", nil)
	case c == 'N':
		return d.literal("NaN", math.NaN())
	case c == 'I':
		return d.literal("Infinity", math.Inf(1))
	case c == '-':
		if d.pos+1 < len(d.data) && d.data[d.pos+1] == 'I' {
			return d.literal("-Infinity", math.Inf(-1))
		}
		return d.number()
	case c >= '0' && c <= '9':
		return d.number()
	default:
		return nil, d.errorf("unexpected character %q", c)
	}
}

func (d *decoder) literal(text string, v any) (any, error) {
	if len(d.data)-d.pos < len(text) || string(d.data[d.pos:d.pos+len(text)]) != text {
		return nil, d.errorf("invalid literal")
	}
	d.pos += len(text)
	return v, nil
}

func (d *decoder) number() (any, error) {
	start := d.pos
	isFloat := false
scan:
	for d.pos < len(d.data) {
		switch c := d.data[d.pos]; {
		case c >= '0' && c <= '9', c == '-', c == '+':
			d.pos++
		case c == '.', c == 'e', c == 'E':
			isFloat = true
			d.pos++
		default:
			break scan
		}
	}
	token := string(d.data[start:d.pos])
	if !isFloat {
		n, err := strconv.ParseInt(token, 10, 64)
		if err == nil {
			return n, nil
		}
		// Out-of-range integer literals degrade to float64.
		if numErr, ok := err.(*strconv.NumError); !ok || numErr.Err != strconv.ErrRange {
			return nil, d.errorf("invalid number %q", token)
		}
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil, d.errorf("invalid number %q", token)
	}
	return f, nil
}

func (d *decoder) string() (string, error) {
	d.pos++ // opening quote
	var sb strings.Builder
	for {
		if d.pos >= len(d.data) {
			return "", d.errorf("unterminated string")
		}
		switch b := d.data[d.pos]; {
		case b == '"':
			d.pos++
			return sb.String(), nil
		case b == '\\':
			if err := d.escape(&sb); err != nil {
				return "", err
			}
		case b < 0x20:
			return "", d.errorf("unescaped control character in string")
		default:
			sb.WriteByte(b)
			d.pos++
		}
	}
}

func (d *decoder) escape(sb *strings.Builder) error {
	if d.pos+1 >= len(d.data) {
		return d.errorf("unterminated escape sequence")
	}
	switch c := d.data[d.pos+1]; c {
	case '"', '\\', '/':
		sb.WriteByte(c)
		d.pos += 2
	case 'n':
		sb.WriteByte('\n')
		d.pos += 2
	case 'r':
		sb.WriteByte('\r')
		d.pos += 2
	case 't':
		sb.WriteByte('\t')
		d.pos += 2
	case 'b':
		sb.WriteByte('\b')
		d.pos += 2
	case 'f':
		sb.WriteByte('\f')
		d.pos += 2
	case 'u':
		r, err := d.unicodeEscape()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			if d.pos+1 < len(d.data) && d.data[d.pos] == '\\' && d.data[d.pos+1] == 'u' {
				r2, err := d.unicodeEscape()
				if err != nil {
					return err
				}
				r = utf16.DecodeRune(r, r2)
			} else {
				r = utf8.RuneError
			}
		}
		sb.WriteRune(r)
	default:
		return d.errorf("invalid escape character %q", c)
	}
	return nil
}

// unicodeEscape consumes a \uXXXX sequence starting at d.pos.
func (d *decoder) unicodeEscape() (rune, error) {
	if d.pos+6 > len(d.data) {
		return 0, d.errorf("truncated unicode escape")
	}
	n, err := strconv.ParseUint(string(d.data[d.pos+2:d.pos+6]), 16, 32)
	if err != nil {
		return 0, d.errorf("invalid unicode escape")
	}
	d.pos += 6
	return rune(n), nil
}

func (d *decoder) object() (*Object, error) {
	d.pos++ // opening brace
	obj := NewObject()
	d.skipSpace()
	if d.pos < len(d.data) && d.data[d.pos] == '}' {
		d.pos++
		return obj, nil
	}
	for {
		d.skipSpace()
		if d.pos >= len(d.data) || d.data[d.pos] != '"' {
			return nil, d.errorf("expected object key")
		}
		key, err := d.string()
		if err != nil {
			return nil, err
		}
		d.skipSpace()
		if d.pos >= len(d.data) || d.data[d.pos] != ':' {
			return nil, d.errorf("expected ':' after object key")
		}
		d.pos++
		d.skipSpace()
		value, err := d.value()
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
		d.skipSpace()
		if d.pos >= len(d.data) {
			return nil, d.errorf("unterminated object")
		}
		switch d.data[d.pos] {
		case ',':
			d.pos++
		case '}':
			d.pos++
			return obj, nil
		default:
			return nil, d.errorf("expected ',' or '}' in object")
		}
	}
}

func (d *decoder) array() ([]any, error) {
	d.pos++ // opening bracket
	elems := []any{}
	d.skipSpace()
	if d.pos < len(d.data) && d.data[d.pos] == ']' {
		d.pos++
		return elems, nil
	}
	for {
		d.skipSpace()
		elem, err := d.value()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		d.skipSpace()
		if d.pos >= len(d.data) {
			return nil, d.errorf("unterminated array")
		}
		switch d.data[d.pos] {
		case ',':
			d.pos++
		case ']':
			d.pos++
			return elems, nil
		default:
			return nil, d.errorf("expected ',' or ']' in array")
		}
	}
}
