package stream

import (
	"bytes"
	"errors"
	"testing"

	"github.com/3nsoft/par-nacl/parnacl/crypto"
)

func testBaseNonce() []byte {
	nonce := make([]byte, crypto.NonceSize)
	for i := range nonce {
		nonce[i] = byte(i)
	}
	return nonce
}

func testChunk(index int, final bool, payload []byte) Chunk {
	c := Chunk{Index: index, Final: final, Ciphertext: payload}
	for i := range c.Tag {
		c.Tag[i] = byte(index)
	}
	return c
}

func TestCodecRoundTrip(t *testing.T) {
	nonce := testBaseNonce()
	chunks := []Chunk{
		testChunk(0, false, []byte("chunk zero ct")),
		{Index: 1, Final: false, Compressed: true, Ciphertext: []byte("c1")},
		testChunk(2, true, []byte("last")),
	}
	packed, err := Encode(nonce, chunks)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	gotNonce, gotChunks, err := Decode(packed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(gotNonce, nonce) {
		t.Fatalf("decoded nonce mismatch")
	}
	if len(gotChunks) != len(chunks) {
		t.Fatalf("chunk count = %d, want %d", len(gotChunks), len(chunks))
	}
	for i := range chunks {
		want, got := chunks[i], gotChunks[i]
		if got.Index != want.Index || got.Final != want.Final || got.Compressed != want.Compressed {
			t.Fatalf("chunk %d header mismatch: %+v", i, got)
		}
		if got.Tag != want.Tag {
			t.Fatalf("chunk %d tag mismatch", i)
		}
		if !bytes.Equal(got.Ciphertext, want.Ciphertext) {
			t.Fatalf("chunk %d ciphertext mismatch", i)
		}
	}
}

func TestEncodeRejectsEmpty(t *testing.T) {
	if _, err := Encode(testBaseNonce(), nil); !errors.Is(err, ErrMalformedStream) {
		t.Fatalf("err = %v, want ErrMalformedStream", err)
	}
	if _, err := Encode(make([]byte, 8), []Chunk{testChunk(0, true, nil)}); !errors.Is(err, crypto.ErrInvalidNonceLength) {
		t.Fatalf("bad nonce: %v", err)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	packed, _ := Encode(testBaseNonce(), []Chunk{testChunk(0, true, []byte("x"))})
	packed[0] ^= 0xff
	if _, _, err := Decode(packed); !errors.Is(err, ErrMalformedStream) {
		t.Fatalf("err = %v, want ErrMalformedStream", err)
	}
}

func TestDecodeRejectsTruncation(t *testing.T) {
	packed, _ := Encode(testBaseNonce(), []Chunk{testChunk(0, true, []byte("some payload"))})
	for cut := 1; cut < len(packed); cut++ {
		if _, _, err := Decode(packed[:cut]); !errors.Is(err, ErrMalformedStream) {
			t.Fatalf("truncated to %d bytes: err = %v, want ErrMalformedStream", cut, err)
		}
	}
}

func TestDecodeRejectsOversizedLength(t *testing.T) {
	packed, _ := Encode(testBaseNonce(), []Chunk{testChunk(0, true, []byte("abcdef"))})
	// Declared ciphertext length sits after flags and index in the
	// first chunk header.
	lenOff := streamHeaderSize + 1 + 4
	packed[lenOff] = 0xff
	packed[lenOff+1] = 0xff
	_, _, err := Decode(packed)
	if !errors.Is(err, ErrMalformedStream) {
		t.Fatalf("err = %v, want ErrMalformedStream", err)
	}
}

func TestDecodeRejectsDataAfterTerminal(t *testing.T) {
	first, _ := Encode(testBaseNonce(), []Chunk{testChunk(0, true, []byte("a"))})
	second, _ := Encode(testBaseNonce(), []Chunk{testChunk(1, true, []byte("b"))})
	glued := append(append([]byte{}, first...), second[streamHeaderSize:]...)
	if _, _, err := Decode(glued); !errors.Is(err, ErrMalformedStream) {
		t.Fatalf("err = %v, want ErrMalformedStream", err)
	}
}

func TestDecodeRejectsMissingTerminal(t *testing.T) {
	packed, _ := Encode(testBaseNonce(), []Chunk{
		testChunk(0, false, []byte("a")),
		testChunk(1, true, []byte("b")),
	})
	// Clear the final flag on the last chunk.
	lastFlagOff := streamHeaderSize + chunkHeaderSize + crypto.TagSize + 1
	packed[lastFlagOff] = 0
	if _, _, err := Decode(packed); !errors.Is(err, ErrMalformedStream) {
		t.Fatalf("err = %v, want ErrMalformedStream", err)
	}
}

func TestDecodeRejectsUnknownFlags(t *testing.T) {
	packed, _ := Encode(testBaseNonce(), []Chunk{testChunk(0, true, []byte("a"))})
	packed[streamHeaderSize] |= 0x80
	if _, _, err := Decode(packed); !errors.Is(err, ErrMalformedStream) {
		t.Fatalf("err = %v, want ErrMalformedStream", err)
	}
}

func TestDecodeRejectsEmptyChunkInMultiChunkStream(t *testing.T) {
	packed, _ := Encode(testBaseNonce(), []Chunk{
		testChunk(0, false, nil),
		testChunk(1, true, []byte("b")),
	})
	if _, _, err := Decode(packed); !errors.Is(err, ErrMalformedStream) {
		t.Fatalf("err = %v, want ErrMalformedStream", err)
	}
}

func TestDecodeAcceptsSoleEmptyChunk(t *testing.T) {
	packed, _ := Encode(testBaseNonce(), []Chunk{testChunk(0, true, nil)})
	_, chunks, err := Decode(packed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(chunks) != 1 || len(chunks[0].Ciphertext) != 0 {
		t.Fatalf("sole empty terminal chunk not preserved")
	}
}

func TestCheckSequence(t *testing.T) {
	good := []Chunk{
		testChunk(0, false, []byte("a")),
		testChunk(1, false, []byte("b")),
		testChunk(2, true, []byte("c")),
	}
	if err := CheckSequence(good); err != nil {
		t.Fatalf("valid sequence rejected: %v", err)
	}

	dup := []Chunk{testChunk(0, false, nil), testChunk(0, false, nil), testChunk(2, true, nil)}
	if err := CheckSequence(dup); !errors.Is(err, ErrChunkIndexInconsistent) {
		t.Fatalf("duplicate: err = %v, want ErrChunkIndexInconsistent", err)
	}

	gap := []Chunk{testChunk(0, false, nil), testChunk(3, true, nil)}
	if err := CheckSequence(gap); !errors.Is(err, ErrChunkIndexInconsistent) {
		t.Fatalf("gap: err = %v, want ErrChunkIndexInconsistent", err)
	}

	wrongTerminal := []Chunk{testChunk(0, true, nil), testChunk(1, false, nil)}
	if err := CheckSequence(wrongTerminal); !errors.Is(err, ErrMalformedStream) {
		t.Fatalf("misplaced terminal: err = %v, want ErrMalformedStream", err)
	}
}
