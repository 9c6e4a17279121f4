// Package parnacl provides NaCl-compatible authenticated encryption of
// large byte buffers, chunked so that sealing and verification run in
// parallel across cores.
//
// A plaintext is split into fixed-size chunks, each sealed as an
// XSalsa20-Poly1305 secret box under a nonce derived from the stream's
// base nonce and the chunk index. The packaged stream carries the base
// nonce, every chunk's tag, and an explicit terminal marker, so
// decryption needs only the key and the packaged bytes. Decryption is
// all-or-nothing: a single failed tag aborts the whole stream and no
// partial plaintext is ever returned.
package parnacl
