package crypto

import (
	"errors"

	"golang.org/x/crypto/scrypt"
)

var ErrScryptParams = errors.New("crypto: invalid scrypt parameters")

// DeriveKeyFromPassword runs scrypt with N = 1<<logN and returns dkLen
// bytes of key material. Typical interactive parameters are logN=17,
// r=8, p=1.
func DeriveKeyFromPassword(password, salt []byte, logN uint8, r, p, dkLen int) ([]byte, error) {
	if logN == 0 || logN >= 64 || r <= 0 || p <= 0 || dkLen <= 0 {
		return nil, ErrScryptParams
	}
	key, err := scrypt.Key(password, salt, 1<<logN, r, p, dkLen)
	if err != nil {
		return nil, ErrScryptParams
	}
	return key, nil
}
