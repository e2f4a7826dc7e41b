package rpc

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is a protobuf message of the finternet schema. The wire format is
// written by hand, field by field, so no generated code is needed.
type Message interface {
	appendWire(b []byte) []byte
	consumeField(num protowire.Number, typ protowire.Type, b []byte) int
}

// Marshal encodes m in protobuf wire format.
func Marshal(m Message) []byte {
	return m.appendWire(nil)
}

// Unmarshal decodes protobuf wire data into m. Unknown fields are skipped.
func Unmarshal(b []byte, m Message) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("rpc: decode tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		n = m.consumeField(num, typ, b)
		if n < 0 {
			return fmt.Errorf("rpc: decode field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendOptionalBytes writes v whenever it is non-nil, so an explicitly
// empty payload is still present on the wire.
func appendOptionalBytes(b []byte, num protowire.Number, v []byte) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendMessage(b []byte, num protowire.Number, m Message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.appendWire(nil))
}

func consumeString(dst *string, b []byte) int {
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		*dst = v
	}
	return n
}

func consumeBytes(dst *[]byte, b []byte) int {
	v, n := protowire.ConsumeBytes(b)
	if n >= 0 {
		*dst = append([]byte{}, v...)
	}
	return n
}

func consumeMessage(m Message, b []byte) int {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	if err := Unmarshal(v, m); err != nil {
		return -1
	}
	return n
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) int {
	return protowire.ConsumeFieldValue(num, typ, b)
}
