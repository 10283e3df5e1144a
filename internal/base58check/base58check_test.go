package base58check

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"Hello World", []byte("Hello World"), "JxF12TrwUP45BMd"},
		{"one leading zero", []byte{0x00}, "1"},
		{"seven leading zeros", make([]byte, 7), "1111111"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Encode(tc.input)
			if got != tc.expected {
				t.Errorf("Encode(%x) = %s, want %s", tc.input, got, tc.expected)
			}
		})
	}
}

func TestEncodeTwosComplementValue(t *testing.T) {
	// BigInteger value 3471844090, two's-complement bytes 0x00CEF022FA:
	// the leading sign byte becomes the leading '1'.
	input, _ := hex.DecodeString("00CEF022FA")
	want := "16Ho7Hs"
	if got := Encode(input); got != want {
		t.Errorf("Encode(%x) = %s, want %s", input, got, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	inputs := [][]byte{
		[]byte("Hello World"),
		{0x00, 0x00, 0x01, 0x02, 0x03},
		{},
		bytes.Repeat([]byte{0xff}, 32),
	}

	for _, in := range inputs {
		encoded := Encode(in)
		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%q) returned an error: %v", encoded, err)
		}
		if !bytes.Equal(decoded, in) {
			t.Errorf("round trip of %x: got %x", in, decoded)
		}
	}
}

func TestDecodeRejectsInvalidCharacter(t *testing.T) {
	if _, err := Decode("invalid0OIl"); err == nil {
		t.Error("Decode did not reject characters outside the Base58 alphabet")
	}
}

func TestEncodeCheckDecodeCheckRoundTrip(t *testing.T) {
	version := byte(0x00)
	payload := bytes.Repeat([]byte{0xab}, 20)

	encoded := EncodeCheck(version, payload)
	gotVersion, gotPayload, err := DecodeCheck(encoded)
	if err != nil {
		t.Fatalf("DecodeCheck returned an error: %v", err)
	}
	if gotVersion != version {
		t.Errorf("version = %x, want %x", gotVersion, version)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Errorf("payload = %x, want %x", gotPayload, payload)
	}
}

func TestDecodeCheckRejectsBadChecksum(t *testing.T) {
	encoded := EncodeCheck(0x00, bytes.Repeat([]byte{0xab}, 20))
	// Flip the last character, which lives in the checksum, to corrupt it.
	corrupted := encoded[:len(encoded)-1] + flipChar(encoded[len(encoded)-1])

	if _, _, err := DecodeCheck(corrupted); err == nil {
		t.Error("DecodeCheck did not reject a corrupted checksum")
	}
}

func flipChar(c byte) string {
	if c == '1' {
		return "2"
	}
	return "1"
}

func TestDecodeCheckRejectsShortInput(t *testing.T) {
	if _, _, err := DecodeCheck(Encode([]byte{0x01, 0x02})); err == nil {
		t.Error("DecodeCheck did not reject a too-short payload")
	}
}
