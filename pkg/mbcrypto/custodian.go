package mbcrypto

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// scryptN/r/p mirror the Rust original's "recommended" scrypt parameters
// (N=2^15, r=8, p=1), which RFC 7914 §2 lists as the interactive-login
// recommendation.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// PassKey is a passphrase-derived secret used to mask and later recover an
// AgentKey's private seed. It is never serialized.
type PassKey struct {
	c [32]byte
}

// NewPassKey derives a PassKey from a passphrase via scrypt, salted with a
// fixed, purpose-specific salt (not secret: the passphrase supplies the
// entropy).
func NewPassKey(passphrase string) (*PassKey, error) {
	dk, err := scrypt.Key([]byte(passphrase), []byte("mindbase passkey"), scryptN, scryptR, scryptP, 32)
	if err != nil {
		return nil, fmt.Errorf("mbcrypto: derive passkey: %w", err)
	}
	pk := &PassKey{}
	copy(pk.c[:], dk)
	return pk, nil
}

// UserAuthKey is derived independently from a PassKey and used to
// authenticate with a custodian server, which never sees the passphrase or
// the recoverable private-key mask.
type UserAuthKey struct {
	Auth [32]byte
}

// Auth derives the server-facing authentication key from this PassKey via a
// second, independent scrypt pass.
func (pk *PassKey) Auth() (*UserAuthKey, error) {
	dk, err := scrypt.Key(pk.c[:], []byte("mindbase authkey"), scryptN, scryptR, scryptP, 32)
	if err != nil {
		return nil, fmt.Errorf("mbcrypto: derive auth key: %w", err)
	}
	var out UserAuthKey
	copy(out.Auth[:], dk)
	return &out, nil
}

// KeyMask is a private key seed XORed with a PassKey.
type KeyMask [32]byte

// CustodialAgentKey is the subset of an AgentKey safe to share with an
// untrusted-but-cooperating custodian: the custodian can store it and help
// with recovery, but cannot sign on the agent's behalf.
type CustodialAgentKey struct {
	Pubkey AgentId
	Mask   KeyMask
	Check  [32]byte
	Email  *string
}

// Recover reconstructs the AgentKey from a CustodialAgentKey and the
// passphrase-derived PassKey, verifying the HMAC check value before trusting
// the recovered secret.
func Recover(ck CustodialAgentKey, pk *PassKey) (*AgentKey, error) {
	var seed [32]byte
	for i := range seed {
		seed[i] = ck.Mask[i] ^ pk.c[i]
	}

	mac := hmac.New(sha512.New512_256, []byte("agentkey"))
	mac.Write(seed[:])
	mac.Write(ck.Pubkey[:])
	if !hmac.Equal(mac.Sum(nil), ck.Check[:]) {
		return nil, fmt.Errorf("mbcrypto: custodial key check mismatch")
	}

	priv := ed25519.NewKeyFromSeed(seed[:])
	return &AgentKey{
		public:  priv.Public().(ed25519.PublicKey),
		private: priv,
		Email:   ck.Email,
	}, nil
}
