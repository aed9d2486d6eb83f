// Package mbcrypto implements agent identity and claim signing for
// MindBase: Ed25519 keypairs, domain-tag-prehashed signatures, and the
// custodial key-mask recovery scheme used when a passphrase-protected key is
// shared with an untrusted-but-cooperating server.
package mbcrypto

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// AgentId is an agent's Ed25519 public key.
type AgentId [32]byte

func (id AgentId) String() string {
	return fmt.Sprintf("%x", id[:])
}

// Bytes returns the id's 32-byte representation.
func (id AgentId) Bytes() []byte { return id[:] }

// Cmp orders AgentIds byte-lexicographically.
func (id AgentId) Cmp(other AgentId) int {
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
// than a 32-element array.
func (id AgentId) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeBytes(id[:])
}

// DecodeMsgpack reads back the blob written by EncodeMsgpack.
func (id *AgentId) DecodeMsgpack(dec *msgpack.Decoder) error {
	b, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	if len(b) != 32 {
		return fmt.Errorf("mbcrypto: agent id must be 32 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return nil
}

// MarshalJSON renders the id the same way String does: lowercase hex.
func (id AgentId) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON reads back the string written by MarshalJSON.
func (id *AgentId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("mbcrypto: decode agent id: %w", err)
	}
	parsed, err := AgentIdFromBytes(b)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// AgentIdFromBytes parses a 32-byte public key.
func AgentIdFromBytes(b []byte) (AgentId, error) {
	var id AgentId
	if len(b) != 32 {
		return id, fmt.Errorf("mbcrypto: agent id must be 32 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// AgentIdFromHex parses the lowercase hex form String returns.
func AgentIdFromHex(s string) (AgentId, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return AgentId{}, fmt.Errorf("mbcrypto: decode agent id: %w", err)
	}
	return AgentIdFromBytes(b)
}

// AgentKey is a private Ed25519 keypair, with an optional human-readable
// email, identifying an agent capable of signing claims.
type AgentKey struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
	Email   *string
}

// CreateAgentKey generates a fresh Ed25519 keypair.
func CreateAgentKey(email *string) (*AgentKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("mbcrypto: generate key: %w", err)
	}
	return &AgentKey{public: pub, private: priv, Email: email}, nil
}

// Id returns the agent's public identity.
func (k *AgentKey) Id() AgentId {
	var id AgentId
	copy(id[:], k.public)
	return id
}

// Pubkey returns the raw 32-byte public key.
func (k *AgentKey) Pubkey() []byte {
	cp := make([]byte, len(k.public))
	copy(cp, k.public)
	return cp
}

// hmacCheck computes HMAC-SHA512/256(key="agentkey", secret || pubkey), the
// value a CustodialAgentKey's "check" field must match after recovery.
func (k *AgentKey) hmacCheck() [32]byte {
	mac := hmac.New(sha512.New512_256, []byte("agentkey"))
	mac.Write(k.private.Seed())
	mac.Write(k.public)
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// Keymask XORs the private key's seed with a PassKey, producing a value that
// can be stored with an untrusted custodian: recovering the secret requires
// both the mask and the passphrase-derived PassKey.
func (k *AgentKey) Keymask(pk *PassKey) KeyMask {
	var mask KeyMask
	seed := k.private.Seed()
	for i := range mask {
		mask[i] = seed[i] ^ pk.c[i]
	}
	return mask
}

// CustodialKey derives the shareable CustodialAgentKey for this key, using
// pk to produce the mask. The passkey is consumed by value to discourage
// the caller from retaining it past this call.
func (k *AgentKey) CustodialKey(pk PassKey) CustodialAgentKey {
	var pub AgentId
	copy(pub[:], k.public)
	return CustodialAgentKey{
		Pubkey: pub,
		Mask:   k.Keymask(&pk),
		Check:  k.hmacCheck(),
		Email:  k.Email,
	}
}

// Sign signs body under the given domain tag, prehashing (tag ∥ body) with
// SHA-512/256 before applying Ed25519. This matches the reference
// implementation's "sign the digest, not the raw bytes" convention so that
// signatures are tag-scoped: a signature valid under tag "allegation" is
// meaningless under any other tag.
func (k *AgentKey) Sign(domainTag string, body []byte) []byte {
	digest := prehash(domainTag, body)
	return ed25519.Sign(k.private, digest[:])
}

// Verify checks a signature produced by Sign against the given public key.
func Verify(pub AgentId, domainTag string, body, signature []byte) bool {
	digest := prehash(domainTag, body)
	return ed25519.Verify(pub[:], digest[:], signature)
}

func prehash(domainTag string, body []byte) [32]byte {
	h := sha512.New512_256()
	h.Write([]byte(domainTag))
	h.Write(body)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
