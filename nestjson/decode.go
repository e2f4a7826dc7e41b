package nestjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxDecodeDepth matches the nesting limit of encoding/json.
const maxDecodeDepth = 10000

var errTooDeep = errors.New("nestjson: exceeded max nesting depth")

// TryParse decodes s as exactly one JSON document surrounded by optional
// whitespace. It reports false when s is not valid JSON; that is the normal
// outcome for plain text and is not an error.
func TryParse(s string) (Value, bool) {
	v, err := decodeSingle(strings.NewReader(s))
	if err != nil {
		return Value{}, false
	}
	return v, true
}

// Decode reads one JSON document from data, rejecting trailing content.
func Decode(data []byte) (Value, error) {
	return decodeSingle(bytes.NewReader(data))
}

// DecodeAll reads a stream of whitespace separated JSON documents, such as
// JSON Lines, until EOF.
func DecodeAll(r io.Reader) ([]Value, error) {
	dec := newDecoder(r)
	var out []Value
	for {
		v, err := decodeValue(dec, 0)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

func decodeSingle(r io.Reader) (Value, error) {
	dec := newDecoder(r)
	v, err := decodeValue(dec, 0)
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("nestjson: trailing data after JSON value")
		}
		return Value{}, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok, depth)
}

func decodeToken(dec *json.Decoder, tok json.Token, depth int) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t.String()), nil
	case string:
		return String(t), nil
	case json.Delim:
		if depth >= maxDecodeDepth {
			return Value{}, errTooDeep
		}
		switch t {
		case '[':
			return decodeArray(dec, depth+1)
		case '{':
			return decodeObject(dec, depth+1)
		}
		return Value{}, fmt.Errorf("nestjson: unexpected delimiter %q", rune(t))
	default:
		return Value{}, fmt.Errorf("nestjson: unexpected token %T", tok)
	}
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	var elems []Value
	for dec.More() {
		v, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		elems = append(elems, v)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, unexpectedEOF(err)
	}
	return Array(elems...), nil
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	var b ObjectBuilder
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("nestjson: object key is %T, not string", tok)
		}
		v, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, unexpectedEOF(err)
		}
		b.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, unexpectedEOF(err)
	}
	return b.Value(), nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
