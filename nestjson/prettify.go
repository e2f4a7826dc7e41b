package nestjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/go-logr/logr"
)

// InvalidJSON is returned by Prettify when formatting fails unexpectedly.
const InvalidJSON = "Invalid JSON"

// Options controls rendering.
type Options struct {
	// Prefix is applied to every output line. Default "".
	Prefix string
	// Indent defines the nested indentation. Default two spaces.
	Indent string
	// NoUnwrap disables decoding of JSON held inside string values. A string
	// input is still decoded once at the top level.
	NoUnwrap bool
	// Palette names the color palette used by the colored renderers. Empty
	// selects "default"; "none" disables colors.
	Palette string
}

// DefaultOptions holds the fallback configuration.
var DefaultOptions = &Options{Prefix: "", Indent: "  ", NoUnwrap: false, Palette: ""}

var diagLogger atomic.Pointer[logr.Logger]

// SetLogger installs the logger used to report unexpected formatting
// failures. The default discards everything.
func SetLogger(l logr.Logger) {
	diagLogger.Store(&l)
}

func logger() logr.Logger {
	if l := diagLogger.Load(); l != nil {
		return *l
	}
	return logr.Discard()
}

// Prettify renders v as 2-space indented JSON after decoding every layer of
// JSON held in strings. A string v that is not JSON renders as a quoted
// string. Any unexpected failure yields InvalidJSON instead of an error.
func Prettify(v any) string {
	out, err := PrettifyE(v)
	if err != nil {
		logger().V(1).Info("prettify failed", "error", err.Error(), "type", fmt.Sprintf("%T", v))
		return InvalidJSON
	}
	return out
}

// PrettifyE is Prettify with the failure reported as an error, so callers
// can tell a rendered "Invalid JSON" string from a failure.
func PrettifyE(v any) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("nestjson: panic while formatting: %v", r)
		}
	}()
	b, err := Pretty(v, DefaultOptions, NoColorPalette())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Pretty renders v with opts and the given palette. The result carries no
// trailing newline.
func Pretty(v any, opts *Options, pal ColorPalette) ([]byte, error) {
	if opts == nil {
		opts = DefaultOptions
	}
	root, err := prepare(v, opts)
	if err != nil {
		return nil, err
	}
	buf := acquireBuffer()
	defer releaseBuffer(buf)
	render(buf, root, opts, pal, false)
	return bytes.Clone(buf.Bytes()), nil
}

// PrettyTo writes the rendering of v followed by a newline.
func PrettyTo(w io.Writer, v any, opts *Options, pal ColorPalette) error {
	out, err := Pretty(v, opts, pal)
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

// PrettyStream renders every JSON document read from r, one after another.
// Input that is not a JSON stream is rendered as a single string leaf, so
// plain text passes through quoted rather than failing.
func PrettyStream(w io.Writer, r io.Reader, opts *Options, pal ColorPalette) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	docs, err := DecodeAll(bytes.NewReader(data))
	if err != nil || len(docs) == 0 {
		docs = []Value{String(string(bytes.TrimRight(data, "\r\n")))}
	}
	for _, doc := range docs {
		if err := PrettyTo(w, doc, opts, pal); err != nil {
			return err
		}
	}
	return nil
}

func prepare(v any, opts *Options) (Value, error) {
	root, err := outerDecode(v)
	if err != nil {
		return Value{}, err
	}
	if opts.NoUnwrap {
		return root, nil
	}
	return Unwrap(root), nil
}

func outerDecode(v any) (Value, error) {
	switch x := v.(type) {
	case string:
		if parsed, ok := TryParse(x); ok {
			return parsed, nil
		}
		return String(x), nil
	default:
		return FromAny(v)
	}
}

// FromAny converts a Go value to a Value. Values and json.RawMessage are
// used directly; anything else goes through encoding/json, so struct field
// order is kept and map keys come out sorted.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case *Value:
		if x == nil {
			return Null(), nil
		}
		return *x, nil
	case json.RawMessage:
		return Decode(x)
	case string:
		return String(x), nil
	case nil:
		return Null(), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("nestjson: encode %T: %w", v, err)
	}
	return Decode(b)
}

// MarshalJSON renders v without whitespace.
func (v Value) MarshalJSON() ([]byte, error) {
	buf := acquireBuffer()
	defer releaseBuffer(buf)
	render(buf, v, nil, NoColorPalette(), true)
	return bytes.Clone(buf.Bytes()), nil
}

// UnmarshalJSON decodes one JSON document into v, keeping key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func render(buf *bytes.Buffer, v Value, opts *Options, pal ColorPalette, compact bool) {
	f := acquireFormatter(buf, pal, opts, compact)
	defer releaseFormatter(f)
	if !compact && f.prefix != "" {
		buf.WriteString(f.prefix)
	}
	f.value(v, 0)
}
