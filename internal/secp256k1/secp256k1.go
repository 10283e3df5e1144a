// There are many cryptographic curves and they have different security/convenience trade-offs.
// The one that Bitcoin uses is secp256k1. It is a relatively simple curve and p is very close to 2^256.
// So most numbers under 2^256 are in the prime field.
// Any point on the curve has x and y coordinates that are expressible in 256 bits each.
// n is also very close to 2^256, so any scalar multiple can also be expressed in 256 bits.
// 2^256 is a huge number, but can still be stored in 32 bytes, so the private key can be stored easily.

// Package secp256k1 implements the field and curve arithmetic specific to
// Bitcoin's secp256k1 curve, plus ECDSA signing, verification and public
// key recovery on top of it. All arithmetic runs through math/big and is
// therefore variable-time; see internal/finitefield's package comment.
package secp256k1

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/btcsecp/secp256k1/internal/ellipticcurve"
	"github.com/btcsecp/secp256k1/internal/finitefield"
)

// Sentinel errors. API-misuse conditions and malformed-input conditions
// are both surfaced as plain errors rather than panics.
var (
	// ErrOutOfRange flags a value outside its required domain: a
	// FieldElement built from something negative or >= P, or an integer
	// that does not fit in 32 bytes.
	ErrOutOfRange = errors.New("secp256k1: value out of range")
	// ErrNotOnCurve flags an x-coordinate with no corresponding y on the
	// curve.
	ErrNotOnCurve = errors.New("secp256k1: x has no corresponding point on the curve")
	// ErrInvalidEncoding flags malformed SEC1 or DER bytes.
	ErrInvalidEncoding = errors.New("secp256k1: invalid encoding")
	// ErrNoPrivateKey flags a missing private scalar. Sign takes the
	// scalar directly and does not return it; wallet.Key.Sign reports a
	// public-only key with wallet.ErrNoPrivateKey.
	ErrNoPrivateKey = errors.New("secp256k1: key has no private scalar")
	// ErrInvalidRecoveryID flags a recovery index outside {0,1,2,3}.
	ErrInvalidRecoveryID = errors.New("secp256k1: recovery id must be in {0,1,2,3}")
)

// Curve parameters, fixed for the lifetime of the process.
var (
	// P is the characteristic of the field the curve is defined over:
	// 2^256 - 2^32 - 977.
	P, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFC2F", 16)
	// N is the order of the base point G.
	N, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	// H is the cofactor of the curve; 1 for secp256k1.
	H = big.NewInt(1)

	gx, _ = new(big.Int).SetString("79BE667EF9DCBBAC55A06295CE870B07029BFCDB2DCE28D959F2815B16F81798", 16)
	gy, _ = new(big.Int).SetString("483ADA7726A3C4655DA4FBFC0E1108A8FD17B448A68554199C47D08FFB10D4B8", 16)

	// a, b are the curve coefficients of y^2 = x^3 + a*x + b. secp256k1
	// fixes a = 0, b = 7.
	a = big.NewInt(0)
	b = big.NewInt(7)

	// sqrBase is (P+1)/4, used by Sqrt because P = 3 (mod 4).
	sqrBase = new(big.Int).Add(new(big.Int).Rsh(P, 2), big.NewInt(1))
	// cubeBase is (P+2)/9, used by CubeRoot because P = 7 (mod 9).
	cubeBase = new(big.Int).Add(new(big.Int).Div(P, big.NewInt(9)), big.NewInt(1))

	// unityCubeRoot1, unityCubeRoot2 are the two nontrivial cube roots of
	// 1 in Fp: each cubed is 1, and their product is 1.
	unityCubeRoot1, _ = new(big.Int).SetString("851695d49a83f8ef919bb86153cbcb16630fb68aed0a766a3ec693d68e6afa40", 16)
	unityCubeRoot2, _ = new(big.Int).SetString("7ae96a2b657c07106e64479eac3434e99cf0497512f58995c1396c28719501ee", 16)

	// G is the base point of the curve.
	G *Point
	// A, B are G's curve coefficients as field elements, exposed for
	// constructing other points on the same curve.
	A, B *FieldElement
)

func init() {
	var err error
	A, err = NewFieldElement(a)
	if err != nil {
		panic(err)
	}
	B, err = NewFieldElement(b)
	if err != nil {
		panic(err)
	}
	gxF, err := NewFieldElement(gx)
	if err != nil {
		panic(err)
	}
	gyF, err := NewFieldElement(gy)
	if err != nil {
		panic(err)
	}
	G, err = NewPoint(gxF, gyF)
	if err != nil {
		panic(err)
	}
}

// FieldElement is a finitefield.FieldElement constrained to the secp256k1
// prime P, with the two square/cube root shortcuts that only hold for a
// prime of this particular shape.
type FieldElement struct {
	finitefield.FieldElement
}

// NewFieldElement builds a FieldElement in Fp. It returns ErrOutOfRange if
// value is negative or >= P.
func NewFieldElement(value *big.Int) (*FieldElement, error) {
	fe, err := finitefield.NewFieldElement(value, P)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	return &FieldElement{*fe}, nil
}

// Sqrt returns a square root of a, if one exists. Because P = 3 (mod 4),
// the only candidate is z = a^((P+1)/4) mod P; it is a square root iff
// z^2 == a, which this rejects otherwise rather than assuming it.
func (a *FieldElement) Sqrt() (*FieldElement, error) {
	candidate, err := a.Exponentiate(sqrBase)
	if err != nil {
		return nil, err
	}
	square, err := candidate.Squared()
	if err != nil {
		return nil, err
	}
	if !square.Equal(&a.FieldElement) {
		return nil, fmt.Errorf("%w: %s has no square root", ErrNotOnCurve, a.Value.String())
	}
	return &FieldElement{*candidate}, nil
}

// evenOddRoots returns (evenY, oddY) given one square root of a.
func (a *FieldElement) evenOddRoots() (even, odd *big.Int, err error) {
	root, err := a.Sqrt()
	if err != nil {
		return nil, nil, err
	}
	complement := new(big.Int).Sub(P, root.Value)
	if root.Value.Bit(0) == 0 {
		return new(big.Int).Set(root.Value), complement, nil
	}
	return complement, new(big.Int).Set(root.Value), nil
}

// CubeRoot returns the (zero or three) cube roots of a in Fp.
//
// CubeRoot is incubating: it exists because the curve-arithmetic tests
// exercise it and because its derivation is instructive, not because any
// operation in this package depends on it. Treat it as experimental.
//
// Because P = 7 (mod 9), write c = a^((P+2)/9). Then c^3 == a iff a is a
// cubic residue, in which case the three cube roots are
// {c, c*unityCubeRoot1, c*unityCubeRoot2}. When a is not a residue, there
// are no cube roots.
func (a *FieldElement) CubeRoot() ([]*big.Int, error) {
	c, err := a.Exponentiate(cubeBase)
	if err != nil {
		return nil, err
	}
	cCubed, err := c.Cubed()
	if err != nil {
		return nil, err
	}
	if !cCubed.Equal(&a.FieldElement) {
		return nil, nil
	}

	u1, err := NewFieldElement(unityCubeRoot1)
	if err != nil {
		return nil, err
	}
	u2, err := NewFieldElement(unityCubeRoot2)
	if err != nil {
		return nil, err
	}
	cu1, err := c.Multiply(&u1.FieldElement)
	if err != nil {
		return nil, err
	}
	cu2, err := c.Multiply(&u2.FieldElement)
	if err != nil {
		return nil, err
	}
	return []*big.Int{c.Value, cu1.Value, cu2.Value}, nil
}

// Point is a point on secp256k1 (y^2 = x^3 + 7), built on top of the
// generic ellipticcurve.Point.
type Point struct {
	ellipticcurve.Point
}

// NewPoint constructs a Point from field elements, verifying that it lies
// on the curve.
func NewPoint(x, y *FieldElement) (*Point, error) {
	var xfe, yfe *finitefield.FieldElement
	if x != nil {
		xfe = &x.FieldElement
	}
	if y != nil {
		yfe = &y.FieldElement
	}
	p, err := ellipticcurve.NewPoint(xfe, yfe, &A.FieldElement, &B.FieldElement)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotOnCurve, err)
	}
	return &Point{*p}, nil
}

// newPointUnsafe builds a Point from field elements without checking that
// it lies on the curve. It backs Infinity, NewPointFromX (whose y is
// derived from the curve equation) and the uncompressed SEC1 decoding fast
// path; NewPoint does not use it. Callers must only use it
// on values already known to satisfy the curve equation, or accept that
// garbage in produces a garbage point.
func newPointUnsafe(x, y *FieldElement) *Point {
	var xfe, yfe finitefield.FieldElement
	if x != nil {
		xfe = x.FieldElement
	}
	if y != nil {
		yfe = y.FieldElement
	}
	if x == nil && y == nil {
		return &Point{ellipticcurve.Point{A: &A.FieldElement, B: &B.FieldElement}}
	}
	return &Point{ellipticcurve.Point{X: &xfe, Y: &yfe, A: &A.FieldElement, B: &B.FieldElement}}
}

// Infinity returns the point at infinity (the curve's identity element).
func Infinity() *Point {
	return newPointUnsafe(nil, nil)
}

// NewPointFromX reconstructs a point from its x-coordinate and the parity
// of y, computing y^2 = x^3 + 7 and taking its square root. wantEvenY=true
// picks the root with an even low bit; Encode below uses the matching
// convention (0x02 for even y, 0x03 for odd y) so SEC1 round trips hold.
func NewPointFromX(x *big.Int, wantEvenY bool) (*Point, error) {
	xfe, err := NewFieldElement(x)
	if err != nil {
		return nil, err
	}
	xCubed, err := xfe.Cubed()
	if err != nil {
		return nil, err
	}
	ySquared, err := xCubed.Add(&B.FieldElement)
	if err != nil {
		return nil, err
	}
	even, odd, err := (&FieldElement{*ySquared}).evenOddRoots()
	if err != nil {
		return nil, err
	}

	yVal := odd
	if wantEvenY {
		yVal = even
	}
	yfe, err := NewFieldElement(yVal)
	if err != nil {
		return nil, err
	}
	return newPointUnsafe(xfe, yfe), nil
}

// ScalarMultiplication multiplies p by coefficient, returning a *Point so
// callers can chain Point-specific methods (Encode, Add, Negate, ...)
// the way they chain off G or a public key directly.
func (p *Point) ScalarMultiplication(coefficient *big.Int) (*Point, error) {
	result, err := p.Point.ScalarMultiplication(coefficient)
	if err != nil {
		return nil, err
	}
	return &Point{*result}, nil
}

// Add adds two secp256k1 points, again returning a *Point.
func (p *Point) Add(q *Point) (*Point, error) {
	result, err := p.Point.Add(&q.Point)
	if err != nil {
		return nil, err
	}
	return &Point{*result}, nil
}

// Negate returns -p.
func (p *Point) Negate() (*Point, error) {
	result, err := p.Point.Negate()
	if err != nil {
		return nil, err
	}
	return &Point{*result}, nil
}

// combine computes u1*p + u2*q via Shamir's trick, wrapping the result back
// into a *Point.
func combine(p *Point, u1 *big.Int, q *Point, u2 *big.Int) (*Point, error) {
	result, err := ellipticcurve.ShamirCombine(&p.Point, u1, &q.Point, u2)
	if err != nil {
		return nil, err
	}
	return &Point{*result}, nil
}

// intTo32Bytes renders v as exactly 32 big-endian bytes, left-padded with
// zeros. It rejects values that need more than 32 bytes. Unlike Java's
// BigInteger.toByteArray, math/big never emits a leading two's-complement
// sign byte, so there is nothing to strip here.
func intTo32Bytes(v *big.Int) ([]byte, error) {
	if v.Sign() < 0 || v.BitLen() > 256 {
		return nil, fmt.Errorf("%w: value does not fit in 32 bytes", ErrOutOfRange)
	}
	return v.FillBytes(make([]byte, 32)), nil
}

// Encode renders p in SEC1 format: 1 byte for the point at infinity, 33
// bytes (compressed) or 65 bytes (uncompressed) otherwise.
func (p *Point) Encode(compressed bool) ([]byte, error) {
	if p.IsIdentityElement() {
		return []byte{0x00}, nil
	}
	xBytes, err := intTo32Bytes(p.X.Value)
	if err != nil {
		return nil, err
	}
	if compressed {
		prefix := byte(0x02)
		if p.Y.Value.Bit(0) == 1 {
			prefix = 0x03
		}
		return append([]byte{prefix}, xBytes...), nil
	}
	yBytes, err := intTo32Bytes(p.Y.Value)
	if err != nil {
		return nil, err
	}
	out := append([]byte{0x04}, xBytes...)
	return append(out, yBytes...), nil
}

// DecodePoint parses a SEC1-encoded point: 1 byte [0x00] for infinity, 33
// bytes [0x02|0x03, x] for compressed, or 65 bytes [0x04, x, y] for
// uncompressed. The uncompressed path trusts y at face value rather than
// re-deriving and checking it, an intentional fast path.
func DecodePoint(data []byte) (*Point, error) {
	switch {
	case len(data) == 1 && data[0] == 0x00:
		return Infinity(), nil
	case len(data) == 33 && (data[0] == 0x02 || data[0] == 0x03):
		x := new(big.Int).SetBytes(data[1:33])
		p, err := NewPointFromX(x, data[0] == 0x02)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		return p, nil
	case len(data) == 65 && data[0] == 0x04:
		x, err := NewFieldElement(new(big.Int).SetBytes(data[1:33]))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		y, err := NewFieldElement(new(big.Int).SetBytes(data[33:65]))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
		}
		return newPointUnsafe(x, y), nil
	default:
		return nil, fmt.Errorf("%w: bad SEC1 length/prefix", ErrInvalidEncoding)
	}
}

// RandomScalar draws a value uniformly from [1, N-1] using a
// cryptographically strong source.
func RandomScalar() (*big.Int, error) {
	nMinusOne := new(big.Int).Sub(N, big.NewInt(1))
	for {
		k, err := rand.Int(rand.Reader, nMinusOne)
		if err != nil {
			return nil, err
		}
		k.Add(k, big.NewInt(1))
		return k, nil
	}
}

// Signature is an ECDSA signature (r, s).
type Signature struct {
	R *big.Int
	S *big.Int
}

// NewSignature builds a Signature, copying r and s.
func NewSignature(r, s *big.Int) *Signature {
	return &Signature{R: new(big.Int).Set(r), S: new(big.Int).Set(s)}
}

func (sig *Signature) String() string {
	return fmt.Sprintf("Signature(%x,%x)", sig.R, sig.S)
}

// isValidRange reports whether r and s both lie in [1, N-1].
func (sig *Signature) isValidRange() bool {
	one := big.NewInt(1)
	inRange := func(v *big.Int) bool {
		return v.Cmp(one) >= 0 && v.Cmp(N) < 0
	}
	return inRange(sig.R) && inRange(sig.S)
}

// NormalizeS returns a copy of sig with s replaced by N-s whenever s is in
// the upper half of the order, per BIP 146's low-s rule. Sign itself does
// not canonicalise its output; callers that want canonical signatures call
// this explicitly.
func (sig *Signature) NormalizeS() *Signature {
	halfN := new(big.Int).Rsh(N, 1)
	if sig.S.Cmp(halfN) <= 0 {
		return NewSignature(sig.R, sig.S)
	}
	return NewSignature(sig.R, new(big.Int).Sub(N, sig.S))
}

// serializeDERInt renders v as a minimal-length, sign-safe big-endian
// integer for DER encoding: no leading zero bytes, except a single
// 0x00 prepended when the high bit would otherwise flip the sign.
func serializeDERInt(v *big.Int) []byte {
	raw := v.Bytes()
	for len(raw) > 1 && raw[0] == 0x00 {
		raw = raw[1:]
	}
	if len(raw) == 0 {
		return []byte{0x00}
	}
	if raw[0]&0x80 != 0 {
		raw = append([]byte{0x00}, raw...)
	}
	return raw
}

// Serialize renders sig in DER format: 0x30 len 0x02 rlen r 0x02 slen s.
func (sig *Signature) Serialize() []byte {
	rBytes := serializeDERInt(sig.R)
	sBytes := serializeDERInt(sig.S)

	body := append([]byte{0x02, byte(len(rBytes))}, rBytes...)
	body = append(body, byte(0x02), byte(len(sBytes)))
	body = append(body, sBytes...)

	return append([]byte{0x30, byte(len(body))}, body...)
}

// ParseDER parses a DER-encoded signature.
func ParseDER(data []byte) (*Signature, error) {
	reader := bytes.NewReader(data)

	compound, err := reader.ReadByte()
	if err != nil || compound != 0x30 {
		return nil, fmt.Errorf("%w: bad DER signature", ErrInvalidEncoding)
	}

	length, err := reader.ReadByte()
	if err != nil || int(length)+2 != len(data) {
		return nil, fmt.Errorf("%w: incorrect signature length", ErrInvalidEncoding)
	}

	r, err := parseDERInt(reader)
	if err != nil {
		return nil, err
	}
	s, err := parseDERInt(reader)
	if err != nil {
		return nil, err
	}

	return NewSignature(r, s), nil
}

func parseDERInt(reader *bytes.Reader) (*big.Int, error) {
	marker, err := reader.ReadByte()
	if err != nil || marker != 0x02 {
		return nil, fmt.Errorf("%w: bad DER integer marker", ErrInvalidEncoding)
	}
	length, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: bad DER integer length", ErrInvalidEncoding)
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return nil, fmt.Errorf("%w: truncated DER integer", ErrInvalidEncoding)
	}
	return new(big.Int).SetBytes(raw), nil
}

// fit interprets digest as a big-endian nonnegative integer and, if it is
// wider than 256 bits, keeps only the leftmost 256 bits.
func fit(digest []byte) *big.Int {
	z := new(big.Int).SetBytes(digest)
	if excess := z.BitLen() - 256; excess > 0 {
		z.Rsh(z, uint(excess))
	}
	return z
}

// Sign produces an ECDSA signature over digest using the private scalar d.
// It draws its nonce k from a cryptographically strong source on every
// attempt -- not a deterministic RFC 6979 derivation -- and is not
// canonicalised to low-s; call Signature.NormalizeS if that is required.
func Sign(digest []byte, d *big.Int) (*Signature, error) {
	z := fit(digest)

	for {
		k, err := RandomScalar()
		if err != nil {
			return nil, err
		}
		R, err := G.ScalarMultiplication(k)
		if err != nil {
			return nil, err
		}
		r := new(big.Int).Mod(R.X.Value, N)
		if r.Sign() == 0 {
			continue
		}

		kInv := new(big.Int).ModInverse(k, N)
		s := new(big.Int).Mul(r, d)
		s.Add(s, z)
		s.Mul(s, kInv)
		s.Mod(s, N)
		if s.Sign() == 0 {
			continue
		}

		return NewSignature(r, s), nil
	}
}

// Verify reports whether sig is a valid ECDSA signature over digest for
// public key q.
func Verify(digest []byte, sig *Signature, q *Point) bool {
	if q.IsIdentityElement() {
		return false
	}
	if nq, err := q.ScalarMultiplication(N); err != nil || !nq.IsIdentityElement() {
		return false
	}
	if !sig.isValidRange() {
		return false
	}

	z := fit(digest)
	sInv := new(big.Int).ModInverse(sig.S, N)
	if sInv == nil {
		return false
	}
	u1 := new(big.Int).Mod(new(big.Int).Mul(z, sInv), N)
	u2 := new(big.Int).Mod(new(big.Int).Mul(sig.R, sInv), N)

	v, err := combine(G, u1, q, u2)
	if err != nil || v.IsIdentityElement() {
		return false
	}

	return new(big.Int).Mod(v.X.Value, N).Cmp(sig.R) == 0
}

// RecoverFromSignature reconstructs the public key candidate identified by
// recoveryID (0-3) from digest and sig. It returns (nil, nil) -- not an
// error -- when the index is mathematically well-formed but yields no
// valid candidate; it returns an error only for a structurally invalid
// recoveryID.
func RecoverFromSignature(digest []byte, sig *Signature, recoveryID int) (*Point, error) {
	if recoveryID < 0 || recoveryID > 3 {
		return nil, ErrInvalidRecoveryID
	}
	if !sig.isValidRange() {
		return nil, nil
	}

	j := big.NewInt(int64(recoveryID / 2))
	x := new(big.Int).Mul(j, N)
	x.Add(x, sig.R)
	if x.Cmp(P) >= 0 {
		return nil, nil
	}

	wantEvenY := recoveryID&1 == 0
	R, err := NewPointFromX(x, wantEvenY)
	if err != nil {
		return nil, nil
	}
	if nr, err := R.ScalarMultiplication(N); err != nil || !nr.IsIdentityElement() {
		return nil, nil
	}

	z := fit(digest)
	eInv := new(big.Int).Mod(new(big.Int).Neg(z), N)
	rInv := new(big.Int).ModInverse(sig.R, N)
	if rInv == nil {
		return nil, nil
	}
	srInv := new(big.Int).Mod(new(big.Int).Mul(rInv, sig.S), N)
	erInv := new(big.Int).Mod(new(big.Int).Mul(rInv, eInv), N)

	return combine(R, srInv, G, erInv)
}
