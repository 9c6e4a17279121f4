package crypto

import (
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the length of a secret-box key in bytes.
	KeySize = 32
	// NonceSize is the length of a secret-box nonce in bytes.
	NonceSize = 24
	// TagSize is the length of the Poly1305 authenticator in bytes.
	TagSize = secretbox.Overhead

	// SecretBoxJWKAlgName identifies the secret-box algorithm in JWK metadata.
	SecretBoxJWKAlgName = "NaCl-sbox-XSP"
)

var (
	ErrInvalidKeyLength   = errors.New("crypto: key must be exactly 32 bytes")
	ErrInvalidNonceLength = errors.New("crypto: nonce must be exactly 24 bytes")
	ErrCipherVerification = errors.New("crypto: ciphertext failed verification")
)

// CheckKey validates a secret-box or box key length.
func CheckKey(key []byte) error {
	if len(key) != KeySize {
		return ErrInvalidKeyLength
	}
	return nil
}

// CheckNonce validates a nonce length.
func CheckNonce(nonce []byte) error {
	if len(nonce) != NonceSize {
		return ErrInvalidNonceLength
	}
	return nil
}

// Seal encrypts and authenticates plaintext with XSalsa20-Poly1305.
// Output layout: 16-byte Poly1305 tag || ciphertext. Inputs are not
// mutated; the internal key copy is wiped before returning.
func Seal(key, nonce, plaintext []byte) ([]byte, error) {
	if err := CheckKey(key); err != nil {
		return nil, err
	}
	if err := CheckNonce(nonce); err != nil {
		return nil, err
	}
	var k [KeySize]byte
	var n [NonceSize]byte
	copy(k[:], key)
	copy(n[:], nonce)
	defer WipeBytes(k[:])
	return secretbox.Seal(nil, plaintext, &n, &k), nil
}

// Open verifies and decrypts a sealed box produced by Seal. On tag
// mismatch it returns ErrCipherVerification and no plaintext bytes.
func Open(key, nonce, sealed []byte) ([]byte, error) {
	if err := CheckKey(key); err != nil {
		return nil, err
	}
	if err := CheckNonce(nonce); err != nil {
		return nil, err
	}
	if len(sealed) < TagSize {
		return nil, ErrCipherVerification
	}
	var k [KeySize]byte
	var n [NonceSize]byte
	copy(k[:], key)
	copy(n[:], nonce)
	defer WipeBytes(k[:])
	plaintext, ok := secretbox.Open(nil, sealed, &n, &k)
	if !ok {
		return nil, ErrCipherVerification
	}
	return plaintext, nil
}

// WipeBytes zeroes b in place.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
