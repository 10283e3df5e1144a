// Package hash provides the fixed-contract digest primitives the rest of
// this module treats as external collaborators: SHA-256, double SHA-256,
// and RIPEMD-160, plus the Hash160 (sha256-then-ripemd160) composition
// Bitcoin uses to turn a public key into an address payload.
package hash

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// Sha256 returns the SHA-256 digest of data.
func Sha256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// DoubleSha256 returns sha256(sha256(data)).
func DoubleSha256(data []byte) []byte {
	return Sha256(Sha256(data))
}

// DoubleSha256Range returns DoubleSha256(data[offset : offset+length]).
func DoubleSha256Range(data []byte, offset, length int) []byte {
	return DoubleSha256(data[offset : offset+length])
}

// DoubleSha256Concat returns sha256(sha256(a||b)) without requiring the
// caller to allocate the concatenation up front.
func DoubleSha256Concat(a, b []byte) []byte {
	h := sha256.New()
	h.Write(a)
	h.Write(b)
	return Sha256(h.Sum(nil))
}

// Ripemd160 returns the RIPEMD-160 digest of data.
func Ripemd160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	return h.Sum(nil)
}

// Hash160 returns ripemd160(sha256(data)), the digest Bitcoin embeds in
// addresses and in the payload of a P2PKH script.
func Hash160(data []byte) []byte {
	return Ripemd160(Sha256(data))
}
