package ellipticcurve

import (
	"fmt"
	"math/big"

	"github.com/btcsecp/secp256k1/internal/finitefield"
)

// Point represents a point on the Elliptic Curve y^2 = x^3 + ax + b
type Point struct {
	X *finitefield.FieldElement
	Y *finitefield.FieldElement
	A *finitefield.FieldElement
	B *finitefield.FieldElement
}

func NewPoint(x, y, a, b *finitefield.FieldElement) (*Point, error) {
	// Check if a and b are well defined
	if a == nil || b == nil {
		return nil, fmt.Errorf("elliptic curve parameters are not well-defined")
	}

	// Check if this is the point at infinity
	if x == nil && y == nil {
		return &Point{nil, nil, a, b}, nil
	}

	// Check if the point (x, y) is on the elliptic curve y^2 = x^3 + ax + b
	xCubed, err := x.Cubed()
	if err != nil {
		return nil, err
	}

	ax, err := a.Multiply(x)
	if err != nil {
		return nil, err
	}

	rightHandSide, err := xCubed.Add(ax)
	if err != nil {
		return nil, err
	}

	rightHandSide, err = rightHandSide.Add(b)
	if err != nil {
		return nil, err
	}

	ySquared, err := y.Squared()
	if err != nil {
		return nil, err
	}

	if !ySquared.Equal(rightHandSide) {
		return nil, fmt.Errorf("Point (%s, %s) does not exist on elliptic curve y^2 = x^3 + %s x + %s", x.String(), y.String(), a.String(), b.String()) //
	}

	return &Point{x, y, a, b}, nil
}

func (p *Point) IsIdentityElement() bool {
	return p.X == nil && p.Y == nil
}

func (p *Point) Equal(q *Point) bool {
	// Check that the points are on the same line
	if !p.A.Equal(q.A) || !p.B.Equal(q.B) {
		return false
	}

	// Check if they're both identity elements
	if p.IsIdentityElement() && q.IsIdentityElement() {
		return true
	}

	// Check if they're both identity elements
	if p.IsIdentityElement() || q.IsIdentityElement() {
		return false
	}

	return p.X.Equal(q.X) && p.Y.Equal(q.Y)
}

func (p *Point) EqualEllipticCurve(q *Point) bool {
	return p.A.Equal(q.A) && p.B.Equal(q.B)
}

// String returns the string representation of a point.
func (p *Point) String() string {
	var aVal, bVal, xVal, yVal, xPrime string

	if p == nil {
		return "Point(nil)"
	}

	if p.A != nil && p.A.Value != nil {
		aVal = p.A.Value.String()
	} else {
		aVal = "<nil>"
	}

	if p.B != nil && p.B.Value != nil {
		bVal = p.B.Value.String()
	} else {
		bVal = "<nil>"
	}

	if p.A.Prime != nil {
		xPrime = p.A.Prime.String()
	} else {
		xPrime = "<nil>"
	}

	if p.X != nil && p.X.Value != nil {
		xVal = p.X.Value.String()
	} else {
		xVal = "inf"
	}

	if p.Y != nil && p.Y.Value != nil {
		yVal = p.Y.Value.String()
	} else {
		yVal = "inf"
	}

	return fmt.Sprintf("Point_%s_%s(%s,%s) Field_%s", aVal, bVal, xVal, yVal, xPrime)
}

// Copy returns a new Point with the same values as the current Point.
func (p *Point) Copy() (*Point, error) {
	// TODO add unittest
	return NewPoint(p.X, p.Y, p.A, p.B)
}

// Add performs the addition of two elliptic curve points (p and q).
// It returns the resulting point and an error if the operation is not valid.
func (p *Point) Add(q *Point) (*Point, error) {
	// Check if the points are on the same curve
	if !p.EqualEllipticCurve(q) {
		return nil, fmt.Errorf("points are on different curves")
	}

	// Check if either of the points is the identity point
	if p.IsIdentityElement() {
		return q.Copy()
	}

	if q.IsIdentityElement() {
		return p.Copy()
	}

	// Handle special cases
	// Exception when the tangent line is vertical, then return the identity point
	if p.Equal(q) && p.isVerticalTangent(q) {
		return NewPoint(nil, nil, p.A, p.B)
	}
	// Check if the points are additive inverses of each other, then return point at infinity (identity)
	y2_neg, err := q.Y.Negate()
	if err != nil {
		return nil, err
	}
	if p.Equal(&Point{q.X, y2_neg, p.A, p.B}) {
		return NewPoint(nil, nil, p.A, p.B)
	}

	// Calculate the sum of the points using the elliptic curve addition rules
	slope, err := p.calculateSlope(q)
	if err != nil {
		return nil, err
	}

	x3, err := p.calculateX3(q, slope)
	if err != nil {
		return nil, err
	}

	y3, err := p.calculateY3(q, x3, slope)
	if err != nil {
		return nil, err
	}

	return NewPoint(x3, y3, p.A, p.B)
}

func (p *Point) calculateSlope(q *Point) (*finitefield.FieldElement, error) {
	dx, dy, err := p.calculatedxdy(q)
	if err != nil {
		return nil, err
	}
	slope, err := dy.Divide(dx)
	if err != nil {
		return nil, err
	}
	return slope, nil
}

func (p *Point) isVerticalTangent(q *Point) bool {
	return p.Equal(q) && p.Y.Value.Cmp(big.NewInt(0)) == 0
}

func (p *Point) calculateX3(q *Point, slope *finitefield.FieldElement) (*finitefield.FieldElement, error) {
	slopeSquared, err := slope.Squared()
	if err != nil {
		return nil, err
	}

	xTotal, err := p.X.Add(q.X)
	if err != nil {
		return nil, err
	}

	x3, err := slopeSquared.Subtract(xTotal)
	if err != nil {
		return nil, err
	}

	return x3, nil
}

func (p *Point) calculateY3(q *Point, x3 *finitefield.FieldElement, slope *finitefield.FieldElement) (*finitefield.FieldElement, error) {
	dx13, err := p.X.Subtract(x3)
	if err != nil {
		return nil, err
	}

	slopedx13, err := slope.Multiply(dx13)
	if err != nil {
		return nil, err
	}

	y3, err := slopedx13.Subtract(p.Y)
	if err != nil {
		return nil, err
	}

	return y3, nil
}

// Calculates dx and dy needed to compute the slope.
func (p *Point) calculatedxdy(q *Point) (*finitefield.FieldElement, *finitefield.FieldElement, error) {
	if p.Equal(q) {
		// In this case we need to compute the differential
		three, err := finitefield.NewFieldElement(big.NewInt(3), p.X.Prime)
		if err != nil {
			return nil, nil, err
		}
		dy, err := p.X.Squared()
		if err != nil {
			return nil, nil, err
		}
		dy, err = dy.Multiply(three)
		if err != nil {
			return nil, nil, err
		}
		dy, err = dy.Add(p.A)
		if err != nil {
			return nil, nil, err
		}
		dx, err := p.Y.Add(p.Y)
		if err != nil {
			return nil, nil, err
		}
		return dx, dy, nil
	}
	dy, err := q.Y.Subtract(p.Y)
	if err != nil {
		return nil, nil, err
	}

	dx, err := q.X.Subtract(p.X)
	if err != nil {
		return nil, nil, err
	}
	return dx, dy, nil
}

// Negate returns the additive inverse of p: the identity stays the identity,
// and (x, y) maps to (x, -y).
func (p *Point) Negate() (*Point, error) {
	if p.IsIdentityElement() {
		return p.Copy()
	}
	yNeg, err := p.Y.Negate()
	if err != nil {
		return nil, err
	}
	return NewPoint(p.X, yNeg, p.A, p.B)
}

// Twice doubles p. It is a thin wrapper over Add(p, p); Add already takes
// the tangent-line branch when the two operands are equal.
func (p *Point) Twice() (*Point, error) {
	return p.Add(p)
}

// ScalarMultiplication computes coefficient*p using the "3k vs k" scan
// described in SEC1 appendix D.3.2: writing h = 3*coefficient, the loop
// walks the bits of h and coefficient together from the second-highest bit
// of h down to bit 1, doubling every round and correcting with +-p whenever
// the two bit streams disagree. It is equivalent to, but roughly a third
// faster than, plain double-and-add because most rounds need no addition.
func (p *Point) ScalarMultiplication(coefficient *big.Int) (*Point, error) {
	if coefficient.Sign() < 0 {
		return nil, fmt.Errorf("coefficient must be non-negative")
	}
	if coefficient.Sign() == 0 || p.IsIdentityElement() {
		return NewPoint(nil, nil, p.A, p.B)
	}

	h := new(big.Int).Mul(big.NewInt(3), coefficient)
	negP, err := p.Negate()
	if err != nil {
		return nil, err
	}

	result, err := p.Copy()
	if err != nil {
		return nil, err
	}

	for i := h.BitLen() - 2; i >= 1; i-- {
		result, err = result.Twice()
		if err != nil {
			return nil, err
		}
		hBit := h.Bit(i)
		kBit := coefficient.Bit(i)
		switch {
		case hBit == 1 && kBit == 0:
			result, err = result.Add(p)
		case hBit == 0 && kBit == 1:
			result, err = result.Add(negP)
		}
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ShamirCombine computes u1*p + u2*q in a single combined double-and-add
// pass (Shamir's trick), using one precomputed point p+q instead of
// multiplying p and q separately and adding the results.
func ShamirCombine(p *Point, u1 *big.Int, q *Point, u2 *big.Int) (*Point, error) {
	if u1.Sign() < 0 || u2.Sign() < 0 {
		return nil, fmt.Errorf("scalars must be non-negative")
	}
	z, err := p.Add(q)
	if err != nil {
		return nil, err
	}

	result, err := NewPoint(nil, nil, p.A, p.B)
	if err != nil {
		return nil, err
	}

	bits := u1.BitLen()
	if u2.BitLen() > bits {
		bits = u2.BitLen()
	}

	for i := bits - 1; i >= 0; i-- {
		result, err = result.Twice()
		if err != nil {
			return nil, err
		}
		b1, b2 := u1.Bit(i), u2.Bit(i)
		switch {
		case b1 == 1 && b2 == 1:
			result, err = result.Add(z)
		case b1 == 1:
			result, err = result.Add(p)
		case b2 == 1:
			result, err = result.Add(q)
		}
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
