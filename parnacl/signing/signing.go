// Package signing provides NaCl-compatible Ed25519 signatures with
// seed-deterministic keypair generation.
package signing

import (
	"crypto/ed25519"
	"errors"
)

const (
	// SeedSize is the length of a keypair seed in bytes.
	SeedSize = ed25519.SeedSize
	// PublicKeySize is the length of a public key in bytes.
	PublicKeySize = ed25519.PublicKeySize
	// SecretKeySize is the length of a secret key in bytes.
	SecretKeySize = ed25519.PrivateKeySize
	// SignatureSize is the length of a signature in bytes.
	SignatureSize = ed25519.SignatureSize

	// JWKAlgName identifies the signing algorithm in JWK metadata.
	JWKAlgName = "NaCl-sign-Ed"
)

var (
	ErrInvalidSeedLength = errors.New("signing: seed must be exactly 32 bytes")
	ErrInvalidKeyLength  = errors.New("signing: invalid key length")
)

// KeyPair holds an Ed25519 keypair.
type KeyPair struct {
	Public ed25519.PublicKey
	Secret ed25519.PrivateKey
}

// GenerateKeyPair derives a keypair deterministically from a 32-byte
// seed. The same seed always yields the same keypair.
func GenerateKeyPair(seed []byte) (KeyPair, error) {
	if len(seed) != SeedSize {
		return KeyPair{}, ErrInvalidSeedLength
	}
	secret := ed25519.NewKeyFromSeed(seed)
	return KeyPair{
		Public: secret.Public().(ed25519.PublicKey),
		Secret: secret,
	}, nil
}

// NewKeyPair wraps existing key bytes after validating their lengths.
func NewKeyPair(public, secret []byte) (KeyPair, error) {
	if len(public) != PublicKeySize || len(secret) != SecretKeySize {
		return KeyPair{}, ErrInvalidKeyLength
	}
	return KeyPair{
		Public: ed25519.PublicKey(public),
		Secret: ed25519.PrivateKey(secret),
	}, nil
}

// Sign returns the signature of message under secret.
func Sign(secret ed25519.PrivateKey, message []byte) ([]byte, error) {
	if len(secret) != SecretKeySize {
		return nil, ErrInvalidKeyLength
	}
	return ed25519.Sign(secret, message), nil
}

// Verify reports whether signature is valid for message under public.
func Verify(public ed25519.PublicKey, message, signature []byte) bool {
	if len(public) != PublicKeySize {
		return false
	}
	return ed25519.Verify(public, message, signature)
}
