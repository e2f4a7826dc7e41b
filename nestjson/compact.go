package nestjson

import (
	"bytes"
	"io"

	"pkt.systems/jpact"
)

var newlineBytes = []byte{'\n'}

// CompactTo writes v on a single line followed by a newline. Nested JSON
// strings are unwrapped first unless opts.NoUnwrap is set.
func CompactTo(w io.Writer, v any, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions
	}
	root, err := prepare(v, opts)
	if err != nil {
		return err
	}
	buf := acquireBuffer()
	defer releaseBuffer(buf)
	render(buf, root, opts, NoColorPalette(), false)
	if err := jpact.CompactWriter(w, bytes.NewReader(buf.Bytes()), 0); err != nil {
		return err
	}
	return writeNewline(w)
}

// CompactStream compacts every JSON document in r, one per line. Input
// that is not a JSON stream is emitted as a single string leaf.
func CompactStream(w io.Writer, r io.Reader, opts *Options) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	docs, err := DecodeAll(bytes.NewReader(data))
	if err != nil || len(docs) == 0 {
		docs = []Value{String(string(bytes.TrimRight(data, "\r\n")))}
	}
	for _, doc := range docs {
		if err := CompactTo(w, doc, opts); err != nil {
			return err
		}
	}
	return nil
}

// CompactToBuffer compacts v into memory, including the trailing newline.
func CompactToBuffer(v any, opts *Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := CompactTo(&buf, v, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNewline(w io.Writer) error {
	if bw, ok := w.(io.ByteWriter); ok {
		return bw.WriteByte('\n')
	}
	_, err := w.Write(newlineBytes)
	return err
}
