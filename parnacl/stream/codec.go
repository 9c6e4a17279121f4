package stream

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/3nsoft/par-nacl/parnacl/crypto"
)

const (
	// StreamMagic identifies a packaged stream.
	StreamMagic = uint32(0x504E4331) // "PNC1"

	streamHeaderSize = 4 + crypto.NonceSize
	chunkHeaderSize  = 1 + 4 + 4 // flags + index + ciphertext length

	flagFinal      = 1 << 0
	flagCompressed = 1 << 1
)

var (
	ErrMalformedStream        = errors.New("stream: malformed packaged stream")
	ErrChunkIndexInconsistent = errors.New("stream: chunk index sequence has gaps or duplicates")
)

// Chunk is one sealed unit of a packaged stream. Ciphertext holds the
// encrypted payload without the tag; its length equals the payload
// length that was sealed.
type Chunk struct {
	Index      int
	Final      bool
	Compressed bool
	Tag        [crypto.TagSize]byte
	Ciphertext []byte
}

// Encode serializes a base nonce and chunk sequence into the packaged
// stream layout:
//
//	4 bytes: magic
//	24 bytes: base nonce
//	for each chunk:
//		1 byte: flags (bit 0 terminal, bit 1 compressed)
//		4 bytes: chunk index (big endian)
//		4 bytes: ciphertext length (big endian)
//		16 bytes: Poly1305 tag
//		N bytes: ciphertext
//
// Exactly one chunk carries the terminal flag and it is encoded last.
func Encode(baseNonce []byte, chunks []Chunk) ([]byte, error) {
	if err := crypto.CheckNonce(baseNonce); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks", ErrMalformedStream)
	}
	size := streamHeaderSize
	for _, c := range chunks {
		size += chunkHeaderSize + crypto.TagSize + len(c.Ciphertext)
	}
	buf := make([]byte, size)
	binary.BigEndian.PutUint32(buf, StreamMagic)
	copy(buf[4:], baseNonce)
	off := streamHeaderSize
	for _, c := range chunks {
		var flags byte
		if c.Final {
			flags |= flagFinal
		}
		if c.Compressed {
			flags |= flagCompressed
		}
		buf[off] = flags
		off++
		binary.BigEndian.PutUint32(buf[off:], uint32(c.Index))
		off += 4
		binary.BigEndian.PutUint32(buf[off:], uint32(len(c.Ciphertext)))
		off += 4
		copy(buf[off:], c.Tag[:])
		off += crypto.TagSize
		copy(buf[off:], c.Ciphertext)
		off += len(c.Ciphertext)
	}
	return buf, nil
}

// Decode parses a packaged stream into its base nonce and chunks. Only
// framing is validated here; no cryptographic work happens, so bad
// lengths, flags, or truncation are rejected before any chunk is
// opened. Chunk ciphertexts are copied out of b.
func Decode(b []byte) ([]byte, []Chunk, error) {
	if len(b) < streamHeaderSize {
		return nil, nil, fmt.Errorf("%w: truncated header", ErrMalformedStream)
	}
	if binary.BigEndian.Uint32(b) != StreamMagic {
		return nil, nil, fmt.Errorf("%w: bad magic", ErrMalformedStream)
	}
	baseNonce := make([]byte, crypto.NonceSize)
	copy(baseNonce, b[4:])

	off := streamHeaderSize
	var chunks []Chunk
	sawFinal := false
	for off < len(b) {
		if sawFinal {
			return nil, nil, fmt.Errorf("%w: data after terminal chunk", ErrMalformedStream)
		}
		if len(b)-off < chunkHeaderSize+crypto.TagSize {
			return nil, nil, fmt.Errorf("%w: truncated chunk header", ErrMalformedStream)
		}
		flags := b[off]
		off++
		if flags&^(flagFinal|flagCompressed) != 0 {
			return nil, nil, fmt.Errorf("%w: unknown chunk flags %#x", ErrMalformedStream, flags)
		}
		index := binary.BigEndian.Uint32(b[off:])
		off += 4
		ctLen := int(binary.BigEndian.Uint32(b[off:]))
		off += 4
		if ctLen > MaxChunkSize {
			return nil, nil, fmt.Errorf("%w: declared chunk length %d too large", ErrMalformedStream, ctLen)
		}
		c := Chunk{
			Index:      int(index),
			Final:      flags&flagFinal != 0,
			Compressed: flags&flagCompressed != 0,
		}
		copy(c.Tag[:], b[off:])
		off += crypto.TagSize
		if ctLen > len(b)-off {
			return nil, nil, fmt.Errorf("%w: declared chunk length exceeds remaining bytes", ErrMalformedStream)
		}
		c.Ciphertext = make([]byte, ctLen)
		copy(c.Ciphertext, b[off:])
		off += ctLen
		sawFinal = c.Final
		chunks = append(chunks, c)
	}
	if !sawFinal {
		return nil, nil, fmt.Errorf("%w: missing terminal chunk", ErrMalformedStream)
	}
	if len(chunks) > 1 {
		for _, c := range chunks {
			if len(c.Ciphertext) == 0 {
				return nil, nil, fmt.Errorf("%w: empty chunk in multi-chunk stream", ErrMalformedStream)
			}
		}
	}
	return baseNonce, chunks, nil
}

// CheckSequence verifies that chunks carry the dense index sequence
// 0..N-1 with no gaps or duplicates, and that the terminal chunk is the
// one with the highest index. It is cheap and runs before any chunk is
// opened.
func CheckSequence(chunks []Chunk) error {
	seen := make([]bool, len(chunks))
	for _, c := range chunks {
		if c.Index < 0 || c.Index >= len(chunks) || seen[c.Index] {
			return ErrChunkIndexInconsistent
		}
		seen[c.Index] = true
		if c.Final != (c.Index == len(chunks)-1) {
			return fmt.Errorf("%w: terminal marker on chunk %d of %d", ErrMalformedStream, c.Index, len(chunks))
		}
	}
	return nil
}
