package rpc

import (
	"bytes"
	"path/filepath"
	"strings"
)

// BinaryType classifies a program or driver upload.
type BinaryType int

const (
	BinaryUnknown BinaryType = iota
	BinaryWASM
	BinaryWAT
)

func (t BinaryType) String() string {
	switch t {
	case BinaryWASM:
		return "wasm"
	case BinaryWAT:
		return "wat"
	default:
		return "unknown"
	}
}

var wasmMagic = []byte{0x00, 'a', 's', 'm'}

// DetectBinaryType looks at the content first and falls back to the file
// extension of name.
func DetectBinaryType(name string, data []byte) BinaryType {
	if bytes.HasPrefix(data, wasmMagic) {
		return BinaryWASM
	}
	if looksLikeWAT(data) {
		return BinaryWAT
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wasm":
		return BinaryWASM
	case ".wat":
		return BinaryWAT
	}
	return BinaryUnknown
}

func looksLikeWAT(data []byte) bool {
	rest := data
	for {
		rest = bytes.TrimLeft(rest, " \t\r\n")
		if !bytes.HasPrefix(rest, []byte(";;")) {
			break
		}
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			rest = rest[i+1:]
		} else {
			return false
		}
	}
	return bytes.HasPrefix(rest, []byte("(module")) || bytes.HasPrefix(rest, []byte("(component"))
}
