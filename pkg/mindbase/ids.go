// Package mindbase implements the core knowledge store: content-addressed
// artifacts, signed claims, the symbol/fuzzy-set algebra over them, and the
// inverted indexes that let a ground-agent corpus be queried efficiently.
package mindbase

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// ArtifactId is the SHA-512/256 digest of an artifact's canonical encoding.
// Address and identity coincide: two agents producing the same artifact
// payload produce the same id.
type ArtifactId [32]byte

func (id ArtifactId) String() string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// Bytes returns the id's 32-byte representation.
func (id ArtifactId) Bytes() []byte { return id[:] }

// Cmp orders ArtifactIds byte-lexicographically.
func (id ArtifactId) Cmp(other ArtifactId) int {
	for i := range id {
		if id[i] != other[i] {
			if id[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// EncodeMsgpack serializes the id as a compact msgpack binary blob rather
// than a 32-element array, so it round-trips as one opaque value.
func (id ArtifactId) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeBytes(id[:])
}

// DecodeMsgpack reads back the blob written by EncodeMsgpack.
func (id *ArtifactId) DecodeMsgpack(dec *msgpack.Decoder) error {
	b, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	if len(b) != 32 {
		return fmt.Errorf("mindbase: artifact id must be 32 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return nil
}

// MarshalJSON renders the id the same way String does: a URL-safe base64
// digest, so JSON dumps (pkg/xport) stay human-scannable.
func (id ArtifactId) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON reads back the string written by MarshalJSON.
func (id *ArtifactId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("mindbase: decode artifact id: %w", err)
	}
	parsed, err := ArtifactIdFromBytes(b)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ArtifactIdFromBytes parses a 32-byte digest.
func ArtifactIdFromBytes(b []byte) (ArtifactId, error) {
	var id ArtifactId
	if len(b) != 32 {
		return id, fmt.Errorf("mindbase: artifact id must be 32 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ClaimId is a 16-byte ULID: time-ordered, monotonic within a single
// process/timestamp, and the unique identity of a Claim.
type ClaimId [16]byte

func (id ClaimId) String() string {
	var u ulid.ULID
	copy(u[:], id[:])
	return u.String()
}

// Bytes returns the id's 16-byte representation.
func (id ClaimId) Bytes() []byte { return id[:] }

// Cmp orders ClaimIds byte-lexicographically, which for ULIDs is also
// chronological.
func (id ClaimId) Cmp(other ClaimId) int {
	for i := range id {
		if id[i] != other[i] {
			if id[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// EncodeMsgpack serializes the id as a compact msgpack binary blob.
func (id ClaimId) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeBytes(id[:])
}

// DecodeMsgpack reads back the blob written by EncodeMsgpack.
func (id *ClaimId) DecodeMsgpack(dec *msgpack.Decoder) error {
	b, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	if len(b) != 16 {
		return fmt.Errorf("mindbase: claim id must be 16 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return nil
}

// MarshalJSON renders the id as its canonical ULID string.
func (id ClaimId) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON reads back the string written by MarshalJSON.
func (id *ClaimId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	u, err := ulid.Parse(s)
	if err != nil {
		return fmt.Errorf("mindbase: decode claim id: %w", err)
	}
	copy(id[:], u[:])
	return nil
}

// ClaimIdFromBytes parses a 16-byte ULID.
func ClaimIdFromBytes(b []byte) (ClaimId, error) {
	var id ClaimId
	if len(b) != 16 {
		return id, fmt.Errorf("mindbase: claim id must be 16 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}
