// Package crypto provides the NaCl primitives underneath par-nacl streams.
//
// Design goals:
//   - Byte-compatible with NaCl: XSalsa20-Poly1305 secret box, curve25519 box
//   - Constant-shape failure: verification errors carry no plaintext
//   - Deterministic per-chunk nonce derivation with no shared mutable state
//   - Key material copied per call and wiped before returning
package crypto
