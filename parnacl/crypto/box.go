package crypto

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

// BoxJWKAlgName identifies the box algorithm in JWK metadata.
const BoxJWKAlgName = "NaCl-box-CXSP"

var ErrInvalidPublicKey = errors.New("crypto: invalid curve25519 public key")

// GenerateBoxKeyPair generates a fresh curve25519 keypair for the box
// construction.
func GenerateBoxKeyPair() (public, private []byte, err error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return pub[:], priv[:], nil
}

// GeneratePublicKey computes the curve25519 public key for a 32-byte
// private key.
func GeneratePublicKey(private []byte) ([]byte, error) {
	if len(private) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	var pub, priv [KeySize]byte
	copy(priv[:], private)
	defer WipeBytes(priv[:])
	curve25519.ScalarBaseMult(&pub, &priv)
	return pub[:], nil
}

// DeriveSharedKey computes the precomputed box key for a key pair:
// X25519 followed by HSalsa20, as in NaCl's crypto_box_beforenm. The
// result is a 32-byte secret-box key usable with Seal and Open.
func DeriveSharedKey(localPrivate, remotePublic []byte) ([]byte, error) {
	if len(localPrivate) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	if len(remotePublic) != KeySize {
		return nil, ErrInvalidPublicKey
	}
	var zero [KeySize]byte
	var pub, priv, shared [KeySize]byte
	copy(pub[:], remotePublic)
	if pub == zero {
		return nil, ErrInvalidPublicKey
	}
	copy(priv[:], localPrivate)
	defer WipeBytes(priv[:])
	box.Precompute(&shared, &pub, &priv)
	return shared[:], nil
}
