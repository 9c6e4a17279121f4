package parnacl

import (
	"context"
	"runtime"
	"sync"

	"github.com/3nsoft/par-nacl/parnacl/crypto"
	"github.com/3nsoft/par-nacl/parnacl/stream"
)

// Re-exported primitive sizes, part of the binding surface.
const (
	KeySize   = crypto.KeySize
	NonceSize = crypto.NonceSize
	TagSize   = crypto.TagSize
)

// StreamOptions configures one stream call.
type StreamOptions struct {
	// ChunkSize is the plaintext bytes sealed per chunk. Zero means
	// stream.DefaultChunkSize. Larger chunks amortize per-chunk
	// overhead; smaller chunks parallelize finer.
	ChunkSize int
	// Compress LZ4-compresses chunk payloads that shrink.
	Compress bool
	// Label attributes the call to a work queue for admission
	// accounting; see Cryptor.CanStartUnderLabel.
	Label uint32
}

// DefaultStreamOptions returns the default stream configuration.
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{ChunkSize: stream.DefaultChunkSize}
}

// Cryptor runs chunked secret-box operations with a bounded number of
// parallel workers shared by all calls made through it. It keeps no
// state between calls beyond in-flight label counts; key material never
// outlives the call it was passed to.
type Cryptor struct {
	maxWorkers int

	mu     sync.Mutex
	labels map[uint32]int
}

// NewCryptor creates a Cryptor running at most maxWorkers parallel
// chunk operations. maxWorkers <= 0 means one per available core.
func NewCryptor(maxWorkers int) *Cryptor {
	if maxWorkers <= 0 {
		maxWorkers = runtime.GOMAXPROCS(0)
	}
	return &Cryptor{
		maxWorkers: maxWorkers,
		labels:     make(map[uint32]int),
	}
}

// MaxWorkers returns the configured parallelism bound.
func (c *Cryptor) MaxWorkers() int { return c.maxWorkers }

// CanStartUnderLabel reports how many more calls the given work label
// can start right away. When there are more active labels than workers
// a label with no in-flight work is still allowed one call, so no queue
// is starved.
func (c *Cryptor) CanStartUnderLabel(label uint32) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	idle := c.maxWorkers - len(c.labels)
	if idle <= 0 {
		if _, busy := c.labels[label]; busy {
			return 0
		}
		return 1
	}
	if inFlight := c.labels[label]; inFlight < idle {
		return idle - inFlight
	}
	return 0
}

func (c *Cryptor) enterLabel(label uint32) {
	c.mu.Lock()
	c.labels[label]++
	c.mu.Unlock()
}

func (c *Cryptor) leaveLabel(label uint32) {
	c.mu.Lock()
	if n := c.labels[label]; n <= 1 {
		delete(c.labels, label)
	} else {
		c.labels[label] = n - 1
	}
	c.mu.Unlock()
}

// EncryptStream splits plaintext into chunks, seals them in parallel
// under nonces derived from baseNonce, and returns the packaged stream
// bytes. The same (key, baseNonce) pair must never be reused for a
// different plaintext.
func (c *Cryptor) EncryptStream(key, baseNonce, plaintext []byte, opts StreamOptions) ([]byte, error) {
	return c.EncryptStreamContext(context.Background(), key, baseNonce, plaintext, opts)
}

// EncryptStreamContext is EncryptStream with cancellation.
func (c *Cryptor) EncryptStreamContext(ctx context.Context, key, baseNonce, plaintext []byte, opts StreamOptions) ([]byte, error) {
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = stream.DefaultChunkSize
	}
	slices, err := stream.Split(plaintext, chunkSize)
	if err != nil {
		return nil, err
	}
	c.enterLabel(opts.Label)
	defer c.leaveLabel(opts.Label)
	chunks, err := stream.EncryptChunks(ctx, key, baseNonce, slices, stream.Options{
		Workers:  c.maxWorkers,
		Compress: opts.Compress,
	})
	if err != nil {
		return nil, err
	}
	return stream.Encode(baseNonce, chunks)
}

// DecryptStream parses a packaged stream, verifies and opens every
// chunk in parallel, and returns the reassembled plaintext. It is total
// over its input: any byte sequence yields either a fully verified
// plaintext or a typed error, never a panic and never partial output.
func (c *Cryptor) DecryptStream(key, packed []byte) ([]byte, error) {
	return c.DecryptStreamContext(context.Background(), key, packed, StreamOptions{})
}

// DecryptStreamContext is DecryptStream with cancellation and options.
func (c *Cryptor) DecryptStreamContext(ctx context.Context, key, packed []byte, opts StreamOptions) ([]byte, error) {
	baseNonce, chunks, err := stream.Decode(packed)
	if err != nil {
		return nil, err
	}
	c.enterLabel(opts.Label)
	defer c.leaveLabel(opts.Label)
	return stream.DecryptChunks(ctx, key, baseNonce, chunks, stream.Options{
		Workers: c.maxWorkers,
	})
}

var defaultCryptor = NewCryptor(0)

// EncryptStream seals plaintext with the process-wide default Cryptor.
func EncryptStream(key, baseNonce, plaintext []byte, opts StreamOptions) ([]byte, error) {
	return defaultCryptor.EncryptStream(key, baseNonce, plaintext, opts)
}

// DecryptStream opens a packaged stream with the process-wide default
// Cryptor.
func DecryptStream(key, packed []byte) ([]byte, error) {
	return defaultCryptor.DecryptStream(key, packed)
}

// DeriveSharedKey computes the precomputed box key for a local private
// and remote public curve25519 key.
func DeriveSharedKey(localPrivate, remotePublic []byte) ([]byte, error) {
	return crypto.DeriveSharedKey(localPrivate, remotePublic)
}

// GeneratePublicKey computes the curve25519 public key for a private key.
func GeneratePublicKey(private []byte) ([]byte, error) {
	return crypto.GeneratePublicKey(private)
}

// GenerateNonce returns a fresh random base nonce.
func GenerateNonce() ([]byte, error) {
	return crypto.GenerateNonce()
}

// DeriveNonce returns the per-chunk nonce for index under base.
func DeriveNonce(base []byte, index uint64) ([]byte, error) {
	return crypto.DeriveNonce(base, index)
}
