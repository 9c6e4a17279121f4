package stream

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/3nsoft/par-nacl/parnacl/crypto"
)

// Options configures the parallel chunk engine.
type Options struct {
	Workers  int  // max parallel seal/open workers; <=0 means GOMAXPROCS
	Compress bool // LZ4-compress chunk payloads that shrink
}

func (o Options) workerCount(chunks int) int {
	w := o.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if w > chunks {
		w = chunks
	}
	if w < 1 {
		w = 1
	}
	return w
}

// DecryptionError reports the first chunk that failed to open.
type DecryptionError struct {
	ChunkIndex int
	Err        error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("stream: chunk %d failed to open: %v", e.ChunkIndex, e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// The compressed and terminal flags live in unauthenticated framing,
// so each is bound into the chunk nonce via its own domain bit instead:
// flipping either flag, or truncating the stream and forging a terminal
// marker onto an interior chunk, makes that chunk fail verification.
const (
	compressedNonceDomain = 0x80
	finalNonceDomain      = 0x40
)

func chunkNonce(baseNonce []byte, index uint64, compressed, final bool) ([]byte, error) {
	nonce, err := crypto.DeriveNonce(baseNonce, index)
	if err != nil {
		return nil, err
	}
	if compressed {
		nonce[15] ^= compressedNonceDomain
	}
	if final {
		nonce[15] ^= finalNonceDomain
	}
	return nonce, nil
}

// EncryptChunks seals every slice under its derived nonce, fanning the
// work out across a bounded set of workers. Each result lands in a
// pre-sized slice at its chunk index, so the returned order never
// depends on scheduling. Cancelling ctx aborts outstanding work.
func EncryptChunks(ctx context.Context, key, baseNonce []byte, slices []Slice, opts Options) ([]Chunk, error) {
	if err := crypto.CheckKey(key); err != nil {
		return nil, err
	}
	if err := crypto.CheckNonce(baseNonce); err != nil {
		return nil, err
	}
	if len(slices) == 0 {
		return nil, fmt.Errorf("%w: no slices", ErrMalformedStream)
	}
	// Reject counter wraparound before spawning any work.
	if _, err := crypto.DeriveNonce(baseNonce, uint64(len(slices)-1)); err != nil {
		return nil, err
	}

	chunks := make([]Chunk, len(slices))
	run := func(i int) error {
		s := slices[i]
		payload := s.Data
		compressed := false
		if opts.Compress && len(payload) > 0 {
			if c, err := compress(payload); err == nil && len(c) < len(payload) {
				payload = c
				compressed = true
			}
		}
		final := s.Index == len(slices)-1
		nonce, err := chunkNonce(baseNonce, uint64(s.Index), compressed, final)
		if err != nil {
			return err
		}
		sealed, err := crypto.Seal(key, nonce, payload)
		if err != nil {
			return err
		}
		c := Chunk{
			Index:      s.Index,
			Final:      final,
			Compressed: compressed,
			Ciphertext: sealed[crypto.TagSize:],
		}
		copy(c.Tag[:], sealed[:crypto.TagSize])
		chunks[s.Index] = c
		return nil
	}
	if err := fanOut(ctx, len(slices), opts.workerCount(len(slices)), run); err != nil {
		return nil, err
	}
	return chunks, nil
}

// DecryptChunks verifies and opens every chunk in parallel and returns
// the reassembled plaintext. The index sequence is validated before any
// cryptographic work. If any chunk fails authentication the whole call
// fails with a DecryptionError naming that chunk, siblings are
// cancelled best-effort, and their partial plaintext is wiped — a
// tampered stream never yields any plaintext bytes.
func DecryptChunks(ctx context.Context, key, baseNonce []byte, chunks []Chunk, opts Options) ([]byte, error) {
	if err := crypto.CheckKey(key); err != nil {
		return nil, err
	}
	if err := crypto.CheckNonce(baseNonce); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks", ErrMalformedStream)
	}
	if err := CheckSequence(chunks); err != nil {
		return nil, err
	}
	if _, err := crypto.DeriveNonce(baseNonce, uint64(len(chunks)-1)); err != nil {
		return nil, err
	}

	plain := make([][]byte, len(chunks))
	run := func(i int) error {
		c := chunks[i]
		nonce, err := chunkNonce(baseNonce, uint64(c.Index), c.Compressed, c.Final)
		if err != nil {
			return err
		}
		sealed := make([]byte, crypto.TagSize+len(c.Ciphertext))
		copy(sealed, c.Tag[:])
		copy(sealed[crypto.TagSize:], c.Ciphertext)
		pt, err := crypto.Open(key, nonce, sealed)
		if err != nil {
			return &DecryptionError{ChunkIndex: c.Index, Err: err}
		}
		if c.Compressed {
			pt, err = decompress(pt)
			if err != nil {
				return &DecryptionError{ChunkIndex: c.Index, Err: err}
			}
		}
		plain[c.Index] = pt
		return nil
	}
	if err := fanOut(ctx, len(chunks), opts.workerCount(len(chunks)), run); err != nil {
		for _, p := range plain {
			crypto.WipeBytes(p)
		}
		return nil, err
	}

	total := 0
	for _, p := range plain {
		total += len(p)
	}
	out := make([]byte, 0, total)
	for _, p := range plain {
		out = append(out, p...)
	}
	return out, nil
}

// fanOut runs fn(i) for i in [0,n) on workers goroutines. The first
// error cancels the remaining work and is returned; completion order is
// otherwise invisible to callers because each fn writes only to its own
// index.
func fanOut(ctx context.Context, n, workers int, fn func(i int) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				if err := fn(i); err != nil {
					fail(err)
					return
				}
			}
		}()
	}

dispatch:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
