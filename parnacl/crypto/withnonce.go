package crypto

// The "with nonce" format is a self-contained single box:
//
//	nonce (24 bytes) || tag (16 bytes) || ciphertext
//
// It exists for payloads small enough to seal in one go, where carrying
// the nonce next to the box is more convenient than tracking it apart.

// PackWithNonce seals plaintext and prepends the nonce.
func PackWithNonce(key, nonce, plaintext []byte) ([]byte, error) {
	sealed, err := Seal(key, nonce, plaintext)
	if err != nil {
		return nil, err
	}
	packed := make([]byte, NonceSize+len(sealed))
	copy(packed, nonce)
	copy(packed[NonceSize:], sealed)
	return packed, nil
}

// OpenWithNonce verifies and decrypts a packed box produced by
// PackWithNonce, reading the nonce from the packed bytes.
func OpenWithNonce(key, packed []byte) ([]byte, error) {
	if len(packed) < NonceSize+TagSize {
		return nil, ErrCipherVerification
	}
	return Open(key, packed[:NonceSize], packed[NonceSize:])
}

// NonceOfPacked returns a copy of the nonce carried by a packed box.
func NonceOfPacked(packed []byte) ([]byte, error) {
	if len(packed) < NonceSize {
		return nil, ErrInvalidNonceLength
	}
	nonce := make([]byte, NonceSize)
	copy(nonce, packed)
	return nonce, nil
}
