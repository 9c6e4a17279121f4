// Package stream packages arbitrarily large byte buffers into sequences
// of independently sealed secret-box chunks.
//
// Key features:
//   - Fixed-size chunking with a short final chunk and an explicit
//     terminal marker, so round trips are unambiguous
//   - Per-chunk nonces derived from a base nonce and the chunk index,
//     letting workers seal and open chunks with no coordination
//   - Parallel fan-out across a bounded set of workers with
//     index-ordered fan-in, so output bytes never depend on scheduling
//   - All-or-nothing decryption: one failed tag discards every sibling
//   - Cheap framing validation before any cryptographic work
//   - Optional LZ4 compression of chunk payloads
package stream
