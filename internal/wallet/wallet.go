// Package wallet implements the value types built on top of secp256k1's
// curve arithmetic: key pairs, Bitcoin addresses, and WIF-encoded private
// keys, all carried over Base58Check.
package wallet

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsecp/secp256k1/internal/base58check"
	"github.com/btcsecp/secp256k1/internal/hash"
	"github.com/btcsecp/secp256k1/internal/secp256k1"
)

// Network selects which version bytes an Address or WIF is encoded with.
type Network int

const (
	Mainnet Network = iota
	Testnet
)

const (
	addressVersionMainnet = 0x00
	addressVersionTestnet = 0x6f
	wifVersionMainnet     = 0x80
	wifVersionTestnet     = 0xef
)

func addressVersion(net Network) byte {
	if net == Testnet {
		return addressVersionTestnet
	}
	return addressVersionMainnet
}

func wifVersion(net Network) byte {
	if net == Testnet {
		return wifVersionTestnet
	}
	return wifVersionMainnet
}

var (
	// ErrNoPrivateKey flags an operation that needs a private scalar on a
	// public-only Key.
	ErrNoPrivateKey = errors.New("wallet: key has no private scalar")
	// ErrInvalidAddress flags a malformed or wrong-length address payload.
	ErrInvalidAddress = errors.New("wallet: invalid address")
	// ErrOutOfRange flags a private scalar outside [1, n-1].
	ErrOutOfRange = errors.New("wallet: scalar out of range")
	// ErrIdentityPublicKey flags a public point equal to the identity element.
	ErrIdentityPublicKey = errors.New("wallet: public point must not be the identity")
)

// Key is a secp256k1 key pair. The private scalar is optional: a Key
// built from a public point alone (NewKeyFromPublicPoint) can verify but
// not sign. Two keys compare equal by their public point alone, so a
// public-only Key and its corresponding private Key are equal.
type Key struct {
	Scalar *big.Int
	Point  *secp256k1.Point
}

// NewRandomKey generates a new private/public key pair using a
// cryptographically strong nonce source.
func NewRandomKey() (*Key, error) {
	scalar, err := secp256k1.RandomScalar()
	if err != nil {
		return nil, err
	}
	return NewKeyFromScalar(scalar)
}

// NewKeyFromScalar builds a Key from an existing private scalar. It returns
// ErrOutOfRange unless 1 <= k < n, since the derived public point must
// never be the identity element.
func NewKeyFromScalar(k *big.Int) (*Key, error) {
	if k.Sign() <= 0 || k.Cmp(secp256k1.N) >= 0 {
		return nil, ErrOutOfRange
	}
	point, err := secp256k1.G.ScalarMultiplication(k)
	if err != nil {
		return nil, fmt.Errorf("wallet: deriving public point: %w", err)
	}
	return &Key{Scalar: new(big.Int).Set(k), Point: point}, nil
}

// NewKeyFromPublicPoint builds a public-only Key, for verifying signatures
// against a key nobody here holds the private half of. It returns
// ErrIdentityPublicKey if q is the identity element.
func NewKeyFromPublicPoint(q *secp256k1.Point) (*Key, error) {
	if q == nil {
		return nil, errors.New("wallet: nil public point")
	}
	if q.IsIdentityElement() {
		return nil, ErrIdentityPublicKey
	}
	return &Key{Point: q}, nil
}

// CanSign reports whether k holds a private scalar.
func (k *Key) CanSign() bool {
	return k.Scalar != nil
}

// Equal compares two keys by their public point, so a public-only Key
// built from the same point as a private Key is considered equal to it.
func (k *Key) Equal(other *Key) bool {
	if other == nil {
		return false
	}
	return k.Point.Equal(&other.Point.Point)
}

// EncodedPublicKey renders k's public point in SEC1 format.
func (k *Key) EncodedPublicKey(compressed bool) ([]byte, error) {
	return k.Point.Encode(compressed)
}

// Sign signs digest with k's private scalar. It returns ErrNoPrivateKey
// for a public-only Key.
func (k *Key) Sign(digest []byte) (*secp256k1.Signature, error) {
	if !k.CanSign() {
		return nil, ErrNoPrivateKey
	}
	return secp256k1.Sign(digest, k.Scalar)
}

// Address is a Bitcoin P2PKH address: a version byte and the Hash160 of a
// public key, carried over Base58Check.
//
// Address equality ignores the version byte and compares only the
// underlying hash: two addresses that encode the same hash under
// different networks still compare equal. This is surprising but
// deliberate.
type Address struct {
	Version byte
	Hash    []byte
}

// NewAddress derives the address of key's public point under net.
func NewAddress(net Network, key *Key, compressed bool) (*Address, error) {
	pub, err := key.EncodedPublicKey(compressed)
	if err != nil {
		return nil, err
	}
	return NewAddressFromHash160(net, hash.Hash160(pub)), nil
}

// NewAddressFromHash160 builds an address directly from a precomputed
// Hash160 payload.
func NewAddressFromHash160(net Network, hash160 []byte) *Address {
	h := make([]byte, len(hash160))
	copy(h, hash160)
	return &Address{Version: addressVersion(net), Hash: h}
}

// ParseAddress decodes a Base58Check-encoded address string.
func ParseAddress(s string) (*Address, error) {
	version, payload, err := base58check.DecodeCheck(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(payload) != 20 {
		return nil, fmt.Errorf("%w: hash160 payload is %d bytes, want 20", ErrInvalidAddress, len(payload))
	}
	return &Address{Version: version, Hash: payload}, nil
}

// String renders the address in Base58Check form.
func (a *Address) String() string {
	return base58check.EncodeCheck(a.Version, a.Hash)
}

// IsValid reports whether a carries a recognised P2PKH version byte and a
// 20-byte Hash160 payload.
func (a *Address) IsValid() bool {
	if len(a.Hash) != 20 {
		return false
	}
	return a.Version == addressVersionMainnet || a.Version == addressVersionTestnet
}

// Equal compares two addresses by hash only; see the Address doc comment.
func (a *Address) Equal(other *Address) bool {
	if other == nil || len(a.Hash) != len(other.Hash) {
		return false
	}
	for i := range a.Hash {
		if a.Hash[i] != other.Hash[i] {
			return false
		}
	}
	return true
}

// WIF ("Wallet Import Format") is a Base58Check-encoded private key, with
// a version byte selecting the network and a trailing 0x01 suffix marking
// whether the derived public key should be used compressed.
type WIF struct {
	Version    byte
	Scalar     *big.Int
	Compressed bool
}

const wifCompressedSuffix = 0x01

// NewWIF encodes key's private scalar for net. It returns ErrNoPrivateKey
// for a public-only Key.
func NewWIF(net Network, key *Key, compressed bool) (*WIF, error) {
	if !key.CanSign() {
		return nil, ErrNoPrivateKey
	}
	return &WIF{Version: wifVersion(net), Scalar: new(big.Int).Set(key.Scalar), Compressed: compressed}, nil
}

// String renders w in Base58Check form.
func (w *WIF) String() string {
	payload, err := secp256k1Scalar32Bytes(w.Scalar)
	if err != nil {
		// Scalars are always < N < 2^256 by construction; this would only
		// trip on a WIF built by hand with an out-of-range scalar.
		return ""
	}
	if w.Compressed {
		payload = append(payload, wifCompressedSuffix)
	}
	return base58check.EncodeCheck(w.Version, payload)
}

// ParseWIF decodes a Base58Check-encoded WIF string, requiring its version
// byte to match expected.
func ParseWIF(expected Network, s string) (*WIF, error) {
	version, payload, err := base58check.DecodeCheck(s)
	if err != nil {
		return nil, fmt.Errorf("wallet: invalid WIF: %w", err)
	}
	if version != wifVersion(expected) {
		return nil, fmt.Errorf("wallet: WIF version %#x does not match expected network", version)
	}

	compressed := false
	switch len(payload) {
	case 33:
		if payload[32] != wifCompressedSuffix {
			return nil, fmt.Errorf("wallet: invalid WIF compression suffix")
		}
		compressed = true
		payload = payload[:32]
	case 32:
	default:
		return nil, fmt.Errorf("wallet: invalid WIF payload length %d", len(payload))
	}

	scalar := new(big.Int).SetBytes(payload)
	return &WIF{Version: version, Scalar: scalar, Compressed: compressed}, nil
}

// Key reconstructs the Key that w encodes.
func (w *WIF) Key() (*Key, error) {
	return NewKeyFromScalar(w.Scalar)
}

func secp256k1Scalar32Bytes(v *big.Int) ([]byte, error) {
	if v.Sign() < 0 || v.BitLen() > 256 {
		return nil, fmt.Errorf("wallet: scalar does not fit in 32 bytes")
	}
	return v.FillBytes(make([]byte, 32)), nil
}

// RecoverFromSignatureByAddress recovers the public key that produced sig
// over digest and whose corresponding address matches addr, trying both
// compressed and uncompressed encodings across all four recovery indices.
// It lives here rather than in package secp256k1 because it needs Address,
// and secp256k1 cannot import wallet without creating an import cycle
// (wallet already imports secp256k1 for Key and Signature).
//
// It returns (nil, nil) -- not an error -- if no candidate matches addr.
func RecoverFromSignatureByAddress(digest []byte, sig *secp256k1.Signature, addr *Address) (*secp256k1.Point, error) {
	for recoveryID := 0; recoveryID < 4; recoveryID++ {
		candidate, err := secp256k1.RecoverFromSignature(digest, sig, recoveryID)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			continue
		}
		for _, compressed := range []bool{true, false} {
			encoded, err := candidate.Encode(compressed)
			if err != nil {
				continue
			}
			candidateAddr := &Address{Version: addr.Version, Hash: hash.Hash160(encoded)}
			if candidateAddr.Equal(addr) {
				return candidate, nil
			}
		}
	}
	return nil, nil
}
