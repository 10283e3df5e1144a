// Package base58check implements the Base58 text encoding Bitcoin uses for
// addresses and WIF keys, and the Base58Check envelope (a leading version
// byte and a trailing 4-byte double-SHA256 checksum) built on top of it.
package base58check

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsecp/secp256k1/internal/hash"
)

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// Encode converts data to its Base58 textual representation. Each leading
// 0x00 byte becomes a leading '1' character; the remaining bytes are
// interpreted as a big-endian integer and converted to base 58.
func Encode(data []byte) string {
	leadingZeros := 0
	for _, b := range data {
		if b != 0 {
			break
		}
		leadingZeros++
	}

	num := new(big.Int).SetBytes(data)
	mod := new(big.Int)
	var digits []byte
	zero := big.NewInt(0)
	fiftyEight := big.NewInt(58)
	for num.Cmp(zero) > 0 {
		num.DivMod(num, fiftyEight, mod)
		digits = append([]byte{alphabet[mod.Int64()]}, digits...)
	}

	return strings.Repeat("1", leadingZeros) + string(digits)
}

// Decode is the inverse of Encode. It rejects any character outside the
// 58-character alphabet.
func Decode(s string) ([]byte, error) {
	leadingZeros := 0
	for _, c := range s {
		if c != '1' {
			break
		}
		leadingZeros++
	}

	num := new(big.Int)
	fiftyEight := big.NewInt(58)
	for _, c := range s {
		idx := strings.IndexByte(alphabet, byte(c))
		if idx < 0 {
			return nil, fmt.Errorf("base58check: invalid character %q", c)
		}
		num.Mul(num, fiftyEight)
		num.Add(num, big.NewInt(int64(idx)))
	}

	decoded := num.Bytes()
	result := make([]byte, leadingZeros+len(decoded))
	copy(result[leadingZeros:], decoded)
	return result, nil
}

// EncodeCheck wraps payload with a version byte and a 4-byte double-SHA256
// checksum, then Base58-encodes the result.
func EncodeCheck(version byte, payload []byte) string {
	body := append([]byte{version}, payload...)
	checksum := hash.DoubleSha256(body)[:4]
	return Encode(append(body, checksum...))
}

// DecodeCheck reverses EncodeCheck: it Base58-decodes s, verifies its
// checksum, and splits the result into a version byte and a payload. It
// rejects invalid Base58, inputs shorter than 5 bytes (version + checksum),
// and checksum mismatches.
func DecodeCheck(s string) (version byte, payload []byte, err error) {
	raw, err := Decode(s)
	if err != nil {
		return 0, nil, err
	}
	if len(raw) < 5 {
		return 0, nil, fmt.Errorf("base58check: decoded length %d is too short", len(raw))
	}

	body, checksum := raw[:len(raw)-4], raw[len(raw)-4:]
	want := hash.DoubleSha256(body)[:4]
	if !bytes.Equal(checksum, want) {
		return 0, nil, fmt.Errorf("base58check: bad checksum")
	}

	return body[0], body[1:], nil
}
