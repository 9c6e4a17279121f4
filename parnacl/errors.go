package parnacl

import (
	"errors"

	"github.com/3nsoft/par-nacl/parnacl/crypto"
	"github.com/3nsoft/par-nacl/parnacl/stream"
)

// ErrorKind is a stable code describing why a call failed, intended for
// host runtimes that cannot inspect Go error chains across a binding
// boundary.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInvalidKeyLength
	KindInvalidNonceLength
	KindNonceExhausted
	KindMalformedStream
	KindChunkIndexInconsistent
	KindCipherVerification
	KindConfiguration
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindInvalidKeyLength:
		return "InvalidKeyLength"
	case KindInvalidNonceLength:
		return "InvalidNonceLength"
	case KindNonceExhausted:
		return "NonceExhausted"
	case KindMalformedStream:
		return "MalformedStream"
	case KindChunkIndexInconsistent:
		return "ChunkIndexInconsistent"
	case KindCipherVerification:
		return "CipherVerification"
	default:
		return "Configuration"
	}
}

// KindOf maps an error returned by this module to its stable kind.
// Unrecognized errors, including cancellation, map to KindConfiguration.
func KindOf(err error) ErrorKind {
	var de *stream.DecryptionError
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &de):
		return KindCipherVerification
	case errors.Is(err, crypto.ErrCipherVerification):
		return KindCipherVerification
	case errors.Is(err, crypto.ErrInvalidKeyLength):
		return KindInvalidKeyLength
	case errors.Is(err, crypto.ErrInvalidNonceLength):
		return KindInvalidNonceLength
	case errors.Is(err, crypto.ErrNonceExhausted):
		return KindNonceExhausted
	case errors.Is(err, stream.ErrChunkIndexInconsistent):
		return KindChunkIndexInconsistent
	case errors.Is(err, stream.ErrMalformedStream):
		return KindMalformedStream
	default:
		return KindConfiguration
	}
}
