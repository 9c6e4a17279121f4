package stream

import "errors"

const (
	// DefaultChunkSize is the default plaintext bytes per chunk (64 KiB).
	DefaultChunkSize = 64 * 1024
	// MinChunkSize is the smallest accepted chunk size.
	MinChunkSize = 1
	// MaxChunkSize bounds a single chunk's plaintext (16 MiB).
	MaxChunkSize = 16 * 1024 * 1024
)

var ErrInvalidChunkSize = errors.New("stream: chunk size out of range")

// Slice is one plaintext piece of a split buffer.
type Slice struct {
	Index int
	Data  []byte
}

// CheckChunkSize validates a chunk size against the supported bounds.
func CheckChunkSize(chunkSize int) error {
	if chunkSize < MinChunkSize || chunkSize > MaxChunkSize {
		return ErrInvalidChunkSize
	}
	return nil
}

// Split slices plaintext into contiguous, non-overlapping pieces of
// chunkSize bytes. The last slice may be shorter but never empty,
// except for an empty input, which yields exactly one empty slice so
// the packaged stream still carries a terminal chunk. Slices alias the
// input buffer.
func Split(plaintext []byte, chunkSize int) ([]Slice, error) {
	if err := CheckChunkSize(chunkSize); err != nil {
		return nil, err
	}
	if len(plaintext) == 0 {
		return []Slice{{Index: 0}}, nil
	}
	slices := make([]Slice, 0, (len(plaintext)+chunkSize-1)/chunkSize)
	for off := 0; off < len(plaintext); off += chunkSize {
		end := off + chunkSize
		if end > len(plaintext) {
			end = len(plaintext)
		}
		slices = append(slices, Slice{Index: len(slices), Data: plaintext[off:end]})
	}
	return slices, nil
}
