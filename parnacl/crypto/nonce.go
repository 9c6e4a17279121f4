package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
)

var ErrNonceExhausted = errors.New("crypto: chunk index exhausts nonce counter space")

// DeriveNonce returns the nonce for the chunk at index under base.
// The trailing 8 bytes of the 24-byte nonce are treated as a big-endian
// counter and the derived nonce is base with index added to it. The
// derivation is a pure function of (base, index), so parallel workers
// compute chunk nonces without any coordination, and it is injective
// for every index that does not overflow the counter.
func DeriveNonce(base []byte, index uint64) ([]byte, error) {
	if err := CheckNonce(base); err != nil {
		return nil, err
	}
	counter := binary.BigEndian.Uint64(base[16:])
	sum := counter + index
	if sum < counter {
		return nil, ErrNonceExhausted
	}
	nonce := make([]byte, NonceSize)
	copy(nonce, base[:16])
	binary.BigEndian.PutUint64(nonce[16:], sum)
	return nonce, nil
}

// GenerateNonce returns a fresh random 24-byte base nonce.
func GenerateNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return nonce, nil
}
