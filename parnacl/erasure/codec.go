// Package erasure provides Reed-Solomon sharding of packaged streams
// for redundant ciphertext storage.
//
// Shards hold only ciphertext: decryption still authenticates every
// chunk, so reconstructing from parity cannot smuggle in forged
// plaintext. With d data shards and p parity shards, any p shards can
// be lost and the packaged stream is still fully recoverable.
package erasure

import (
	"errors"

	"github.com/klauspost/reedsolomon"
)

var (
	ErrInvalidConfig = errors.New("erasure: invalid data/parity configuration")
	ErrTooManyLost   = errors.New("erasure: too many shards lost, cannot recover")
)

// Codec shards and reconstructs packaged stream bytes.
type Codec struct {
	enc          reedsolomon.Encoder
	dataShards   int
	parityShards int
}

// NewCodec creates a codec producing dataShards data shards and
// parityShards parity shards.
func NewCodec(dataShards, parityShards int) (*Codec, error) {
	if dataShards <= 0 || parityShards <= 0 {
		return nil, ErrInvalidConfig
	}
	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, ErrInvalidConfig
	}
	return &Codec{
		enc:          enc,
		dataShards:   dataShards,
		parityShards: parityShards,
	}, nil
}

// DataShards returns the number of data shards.
func (c *Codec) DataShards() int { return c.dataShards }

// ParityShards returns the number of parity shards.
func (c *Codec) ParityShards() int { return c.parityShards }

// TotalShards returns data + parity.
func (c *Codec) TotalShards() int { return c.dataShards + c.parityShards }

// Shard splits a packaged stream into equal-size data shards (padding
// the last one) and computes parity. The returned slice holds data
// shards first, then parity.
func (c *Codec) Shard(packed []byte) ([][]byte, error) {
	shards, err := c.enc.Split(packed)
	if err != nil {
		return nil, err
	}
	if err := c.enc.Encode(shards); err != nil {
		return nil, err
	}
	return shards, nil
}

// Verify checks parity consistency across shards.
func (c *Codec) Verify(shards [][]byte) (bool, error) {
	return c.enc.Verify(shards)
}

// Reconstruct fills in missing shards, which callers mark as nil.
func (c *Codec) Reconstruct(shards [][]byte) error {
	err := c.enc.Reconstruct(shards)
	if errors.Is(err, reedsolomon.ErrTooFewShards) {
		return ErrTooManyLost
	}
	return err
}

// Join concatenates the data shards back into a packaged stream of
// packedSize bytes, dropping the padding.
func (c *Codec) Join(shards [][]byte, packedSize int) ([]byte, error) {
	out := make([]byte, 0, packedSize)
	for i := 0; i < c.dataShards && len(out) < packedSize; i++ {
		if shards[i] == nil {
			return nil, ErrTooManyLost
		}
		remaining := packedSize - len(out)
		if remaining >= len(shards[i]) {
			out = append(out, shards[i]...)
		} else {
			out = append(out, shards[i][:remaining]...)
		}
	}
	if len(out) != packedSize {
		return nil, ErrTooManyLost
	}
	return out, nil
}
