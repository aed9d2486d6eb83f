// Package codec provides MindBase's canonical binary encoding: a one-byte
// schema-version header followed by a msgpack-encoded payload. msgpack
// itself carries no schema version, so the header lets a future format
// change be detected before decode is attempted.
package codec

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Version1 is the only schema version MindBase currently writes.
const Version1 byte = 1

// Encode canonically serializes v: a one-byte version header followed by
// its msgpack encoding. The same (version, payload) pair is produced for
// equal values every time, which is what lets the artifact store use the
// encoded bytes' hash as a stable identity.
func Encode(v any) ([]byte, error) {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, Version1)
	out = append(out, body...)
	return out, nil
}

// Decode parses bytes produced by Encode into v, which must be a pointer.
func Decode(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("codec: decode: empty input")
	}
	switch data[0] {
	case Version1:
		if err := msgpack.Unmarshal(data[1:], v); err != nil {
			return fmt.Errorf("codec: decode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("codec: decode: unsupported schema version %d", data[0])
	}
}
