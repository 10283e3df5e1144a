package wallet

import (
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/btcsecp/secp256k1/internal/secp256k1"
)

func hash256ToBigInt(data string) *big.Int {
	first := sha256.Sum256([]byte(data))
	second := sha256.Sum256(first[:])
	return new(big.Int).SetBytes(second[:])
}

func TestParseAddressMainnet(t *testing.T) {
	addr, err := ParseAddress("17kzeh4N8g49GFvdDzSf8PjaPfyoD1MndL")
	if err != nil {
		t.Fatalf("ParseAddress returned an error: %v", err)
	}
	if addr.Version != addressVersionMainnet {
		t.Errorf("version = %#x, want %#x", addr.Version, addressVersionMainnet)
	}
	if len(addr.Hash) != 20 {
		t.Errorf("hash length = %d, want 20", len(addr.Hash))
	}
	if !addr.IsValid() {
		t.Error("address should be valid")
	}
}

func TestParseAddressTestnet(t *testing.T) {
	addr, err := ParseAddress("n4eA2nbYqErp7H6jebchxAN59DmNpksexv")
	if err != nil {
		t.Fatalf("ParseAddress returned an error: %v", err)
	}
	if addr.Version != addressVersionTestnet {
		t.Errorf("version = %#x, want %#x", addr.Version, addressVersionTestnet)
	}
}

func TestWIFCompressedKnownVector(t *testing.T) {
	wif, err := ParseWIF(Mainnet, "KwgV68eZay1uAfuuhz56Z5qkHnut75d9SfPRoqCDQ6SNUdQPHBQd")
	if err != nil {
		t.Fatalf("ParseWIF returned an error: %v", err)
	}
	if !wif.Compressed {
		t.Error("expected a compressed WIF")
	}
	key, err := wif.Key()
	if err != nil {
		t.Fatalf("Key returned an error: %v", err)
	}
	addr, err := NewAddress(Mainnet, key, true)
	if err != nil {
		t.Fatalf("NewAddress returned an error: %v", err)
	}
	if addr.String() != "1L7S4no7372gqFp9YLRXcjYazvxNB7gD3j" {
		t.Errorf("address = %s, want 1L7S4no7372gqFp9YLRXcjYazvxNB7gD3j", addr.String())
	}

	reencoded, err := NewWIF(Mainnet, key, true)
	if err != nil {
		t.Fatalf("NewWIF returned an error: %v", err)
	}
	if reencoded.String() != "KwgV68eZay1uAfuuhz56Z5qkHnut75d9SfPRoqCDQ6SNUdQPHBQd" {
		t.Errorf("re-encoded WIF = %s, want the original string", reencoded.String())
	}
}

func TestWIFUncompressedKnownVector(t *testing.T) {
	wif, err := ParseWIF(Mainnet, "5HvMQpVuF3GcP8TVFivwjAFforNVoEjdMKDLDRWjEPXfrQRqW82")
	if err != nil {
		t.Fatalf("ParseWIF returned an error: %v", err)
	}
	if wif.Compressed {
		t.Error("expected an uncompressed WIF")
	}
	key, err := wif.Key()
	if err != nil {
		t.Fatalf("Key returned an error: %v", err)
	}
	addr, err := NewAddress(Mainnet, key, false)
	if err != nil {
		t.Fatalf("NewAddress returned an error: %v", err)
	}
	if addr.String() != "1GgNTrgohvfnrhCbpbqK1JzuiD75v4ujXy" {
		t.Errorf("address = %s, want 1GgNTrgohvfnrhCbpbqK1JzuiD75v4ujXy", addr.String())
	}
}

func TestNewAddressKnownVectors(t *testing.T) {
	testCases := []struct {
		name       string
		secret     *big.Int
		compressed bool
		net        Network
		expected   string
	}{
		{"uncompressed testnet", big.NewInt(5002), false, Testnet, "mmTPbXQFxboEtNRkwfh6K51jvdtHLxGeMA"},
		{"compressed testnet", new(big.Int).Exp(big.NewInt(2020), big.NewInt(5), nil), true, Testnet, "mopVkxp8UhXqRYbCYJsbeE1h1fiF64jcoH"},
		{"compressed mainnet", mustHex("12345deadbeef"), true, Mainnet, "1F1Pn2y6pDb68E5nYJJeba4TLg2U7B6KF1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := NewKeyFromScalar(tc.secret)
			if err != nil {
				t.Fatalf("NewKeyFromScalar returned an error: %v", err)
			}
			addr, err := NewAddress(tc.net, key, tc.compressed)
			if err != nil {
				t.Fatalf("NewAddress returned an error: %v", err)
			}
			if addr.String() != tc.expected {
				t.Errorf("Address = %s, want %s", addr.String(), tc.expected)
			}
		})
	}
}

func TestWIFKnownVectors(t *testing.T) {
	testCases := []struct {
		name       string
		secret     *big.Int
		compressed bool
		net        Network
		expected   string
	}{
		{"compressed testnet", big.NewInt(5003), true, Testnet, "cMahea7zqjxrtgAbB7LSGbcQUr1uX1ojuat9jZodMN8rFTv2sfUK"},
		{"uncompressed testnet", new(big.Int).Exp(big.NewInt(2021), big.NewInt(5), nil), false, Testnet, "91avARGdfge8E4tZfYLoxeJ5sGBdNJQH4kvjpWAxgzczjbCwxic"},
		{"compressed mainnet", mustHex("54321deadbeef"), true, Mainnet, "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgiuQJv1h8Ytr2S53a"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := NewKeyFromScalar(tc.secret)
			if err != nil {
				t.Fatalf("NewKeyFromScalar returned an error: %v", err)
			}
			wif, err := NewWIF(tc.net, key, tc.compressed)
			if err != nil {
				t.Fatalf("NewWIF returned an error: %v", err)
			}
			if wif.String() != tc.expected {
				t.Errorf("WIF = %s, want %s", wif.String(), tc.expected)
			}
		})
	}
}

func TestParseWIFRoundTrip(t *testing.T) {
	key, err := NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey returned an error: %v", err)
	}

	for _, compressed := range []bool{true, false} {
		wif, err := NewWIF(Mainnet, key, compressed)
		if err != nil {
			t.Fatalf("NewWIF returned an error: %v", err)
		}
		parsed, err := ParseWIF(Mainnet, wif.String())
		if err != nil {
			t.Fatalf("ParseWIF returned an error: %v", err)
		}
		if parsed.Scalar.Cmp(key.Scalar) != 0 {
			t.Errorf("parsed scalar = %s, want %s", parsed.Scalar, key.Scalar)
		}
		if parsed.Compressed != compressed {
			t.Errorf("parsed compressed = %v, want %v", parsed.Compressed, compressed)
		}

		recovered, err := parsed.Key()
		if err != nil {
			t.Fatalf("Key returned an error: %v", err)
		}
		if !recovered.Equal(key) {
			t.Error("WIF round trip did not reproduce the original key")
		}
	}
}

func TestParseWIFRejectsWrongNetwork(t *testing.T) {
	key, err := NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey returned an error: %v", err)
	}
	wif, err := NewWIF(Mainnet, key, true)
	if err != nil {
		t.Fatalf("NewWIF returned an error: %v", err)
	}
	if _, err := ParseWIF(Testnet, wif.String()); err == nil {
		t.Error("ParseWIF accepted a mainnet WIF under the testnet network")
	}
}

func TestParseAddressRoundTrip(t *testing.T) {
	key, err := NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey returned an error: %v", err)
	}
	addr, err := NewAddress(Mainnet, key, true)
	if err != nil {
		t.Fatalf("NewAddress returned an error: %v", err)
	}

	parsed, err := ParseAddress(addr.String())
	if err != nil {
		t.Fatalf("ParseAddress returned an error: %v", err)
	}
	if !parsed.Equal(addr) {
		t.Error("ParseAddress round trip did not reproduce the original address")
	}
	if !parsed.IsValid() {
		t.Error("parsed address should be valid")
	}
}

func TestAddressEqualityIgnoresVersion(t *testing.T) {
	a := NewAddressFromHash160(Mainnet, make([]byte, 20))
	b := NewAddressFromHash160(Testnet, make([]byte, 20))
	if !a.Equal(b) {
		t.Error("addresses with the same hash but different networks should compare equal")
	}
}

func TestNewKeyFromScalarRejectsOutOfRange(t *testing.T) {
	for _, k := range []*big.Int{big.NewInt(0), big.NewInt(-1), secp256k1.N} {
		if _, err := NewKeyFromScalar(k); err == nil {
			t.Errorf("NewKeyFromScalar(%s) should have been rejected", k)
		}
	}
}

func TestNewKeyFromPublicPointRejectsIdentity(t *testing.T) {
	if _, err := NewKeyFromPublicPoint(secp256k1.Infinity()); err == nil {
		t.Error("NewKeyFromPublicPoint should reject the identity element")
	}
}

func TestKeyCanSign(t *testing.T) {
	key, err := NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey returned an error: %v", err)
	}
	if !key.CanSign() {
		t.Error("a key built from a random scalar should be able to sign")
	}

	publicOnly, err := NewKeyFromPublicPoint(key.Point)
	if err != nil {
		t.Fatalf("NewKeyFromPublicPoint returned an error: %v", err)
	}
	if publicOnly.CanSign() {
		t.Error("a public-only key should not be able to sign")
	}
	if !publicOnly.Equal(key) {
		t.Error("a public-only key built from the same point should equal the original key")
	}
	if _, err := publicOnly.Sign([]byte("digest")); err == nil {
		t.Error("Sign should fail on a public-only key")
	}
}

func TestRecoverFromSignatureByAddress(t *testing.T) {
	key, err := NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey returned an error: %v", err)
	}
	addr, err := NewAddress(Mainnet, key, true)
	if err != nil {
		t.Fatalf("NewAddress returned an error: %v", err)
	}

	digest := hash256ToBigInt("recoverable via address").Bytes()
	sig, err := key.Sign(digest)
	if err != nil {
		t.Fatalf("Sign returned an error: %v", err)
	}

	recovered, err := RecoverFromSignatureByAddress(digest, sig, addr)
	if err != nil {
		t.Fatalf("RecoverFromSignatureByAddress returned an error: %v", err)
	}
	if recovered == nil {
		t.Fatal("RecoverFromSignatureByAddress did not find a matching candidate")
	}
	if !recovered.Equal(&key.Point.Point) {
		t.Error("recovered point does not match the signer's public key")
	}
}

func TestRecoverFromSignatureByAddressInheritsNetwork(t *testing.T) {
	key, err := NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey returned an error: %v", err)
	}
	addr, err := NewAddress(Testnet, key, true)
	if err != nil {
		t.Fatalf("NewAddress returned an error: %v", err)
	}

	digest := hash256ToBigInt("recoverable on testnet").Bytes()
	sig, err := key.Sign(digest)
	if err != nil {
		t.Fatalf("Sign returned an error: %v", err)
	}

	recovered, err := RecoverFromSignatureByAddress(digest, sig, addr)
	if err != nil {
		t.Fatalf("RecoverFromSignatureByAddress returned an error: %v", err)
	}
	if recovered == nil {
		t.Fatal("RecoverFromSignatureByAddress did not find a matching candidate for a testnet address")
	}
	if !recovered.Equal(&key.Point.Point) {
		t.Error("recovered point does not match the signer's public key")
	}
}

func TestRecoverFromSignatureByAddressNoMatch(t *testing.T) {
	key, err := NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey returned an error: %v", err)
	}
	unrelated, err := NewRandomKey()
	if err != nil {
		t.Fatalf("NewRandomKey returned an error: %v", err)
	}
	unrelatedAddr, err := NewAddress(Mainnet, unrelated, true)
	if err != nil {
		t.Fatalf("NewAddress returned an error: %v", err)
	}

	digest := hash256ToBigInt("no match expected").Bytes()
	sig, err := key.Sign(digest)
	if err != nil {
		t.Fatalf("Sign returned an error: %v", err)
	}

	recovered, err := RecoverFromSignatureByAddress(digest, sig, unrelatedAddr)
	if err != nil {
		t.Fatalf("RecoverFromSignatureByAddress returned an error: %v", err)
	}
	if recovered != nil {
		t.Error("RecoverFromSignatureByAddress should not match an unrelated address")
	}
}

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("bad hex literal in test: " + s)
	}
	return v
}
