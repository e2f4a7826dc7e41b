package rpc

import "fmt"

// Codec is the grpc encoding.Codec for Message values. It registers under
// the "proto" name so the content-subtype on the wire is the usual
// application/grpc+proto.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("rpc: cannot marshal %T", v)
	}
	return Marshal(m), nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("rpc: cannot unmarshal into %T", v)
	}
	return Unmarshal(data, m)
}

func (Codec) Name() string { return "proto" }
