// Package finitefield implements arithmetic in a prime field Fp using
// math/big. All operations are variable-time: big.Int does not offer
// constant-time primitives, so a port of this package to a production
// signer needs its own constant-time field implementation.
package finitefield

import (
	"fmt"
	"math/big"
)

// FieldElement represents an element in a finite field.
type FieldElement struct {
	Value *big.Int
	Prime *big.Int
}

// NewFieldElement creates a new FieldElement with the given value and prime.
func NewFieldElement(value, prime *big.Int) (*FieldElement, error) {
	if value == nil {
		return nil, nil
	}
	if value.Sign() < 0 || value.Cmp(prime) >= 0 {
		return nil, fmt.Errorf("value not in the range [0, prime-1]")
	}
	return &FieldElement{Value: new(big.Int).Set(value), Prime: new(big.Int).Set(prime)}, nil
}

// Add adds two field elements and returns a new field element.
func (a *FieldElement) Add(b *FieldElement) (*FieldElement, error) {
	if a.Prime.Cmp(b.Prime) != 0 {
		return nil, fmt.Errorf("field elements are from different fields")
	}
	result := new(big.Int).Mod(new(big.Int).Add(a.Value, b.Value), a.Prime)
	return NewFieldElement(result, a.Prime)
}

// Subtract subtracts two field elements and returns a new field element.
func (a *FieldElement) Subtract(b *FieldElement) (*FieldElement, error) {
	if a.Prime.Cmp(b.Prime) != 0 {
		return nil, fmt.Errorf("field elements are from different fields")
	}
	result := new(big.Int).Sub(a.Value, b.Value)
	if result.Sign() < 0 {
		result.Add(result, a.Prime)
	}
	return NewFieldElement(result, a.Prime)
}

// Multiply multiplies two field elements and returns a new field element.
func (a *FieldElement) Multiply(b *FieldElement) (*FieldElement, error) {
	if a.Prime.Cmp(b.Prime) != 0 {
		return nil, fmt.Errorf("field elements are from different fields")
	}
	result := new(big.Int).Mul(a.Value, b.Value)
	result.Mod(result, a.Prime)
	return NewFieldElement(result.Mod(result, a.Prime), a.Prime)
}

// Exponentiate computes the exponentiation of a field element to a given power.
func (a *FieldElement) Exponentiate(power *big.Int) (*FieldElement, error) {
	result := new(big.Int).Exp(a.Value, power, a.Prime)
	return NewFieldElement(result.Mod(result, a.Prime), a.Prime)
}

// Squared computes the square of a field element.
func (a *FieldElement) Squared() (*FieldElement, error) {
	return a.Exponentiate(big.NewInt(2))
}

func (a *FieldElement) Cubed() (*FieldElement, error) {
	return a.Exponentiate(big.NewInt(3))
}

// Equal checks if two field elements are equal.
func (a *FieldElement) Equal(b *FieldElement) bool {
	return a.Value.Cmp(b.Value) == 0 && a.Prime.Cmp(b.Prime) == 0
}

// Negate returns a new FieldElement with the negated value of the current FieldElement.
func (a *FieldElement) Negate() (*FieldElement, error) {
	// Calculate the negated value as (prime - value) % prime
	negatedValue := new(big.Int).Sub(a.Prime, a.Value)
	return NewFieldElement(negatedValue.Mod(negatedValue, a.Prime), a.Prime)
}

// String returns the string representation of a field element.
func (a *FieldElement) String() string {
	return fmt.Sprintf("FieldElement_%s(%s)", a.Prime.String(), a.Value.String())
}

// Divide computes the division of two field elements (a / b).
func (a *FieldElement) Divide(b *FieldElement) (*FieldElement, error) {
	if a.Prime.Cmp(b.Prime) != 0 {
		return nil, fmt.Errorf("field elements are from different fields")
	}
	if b.Value.Sign() == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	// Compute the modular multiplicative inverse of b
	inverse := new(big.Int).ModInverse(b.Value, a.Prime)
	if inverse == nil {
		return nil, fmt.Errorf("division by non-invertible element")
	}
	result := new(big.Int).Mul(a.Value, inverse)
	return NewFieldElement(result.Mod(result, a.Prime), a.Prime)
}

// Invert returns the modular multiplicative inverse of a. Undefined for zero.
func (a *FieldElement) Invert() (*FieldElement, error) {
	if a.Value.Sign() == 0 {
		return nil, fmt.Errorf("zero has no multiplicative inverse")
	}
	inverse := new(big.Int).ModInverse(a.Value, a.Prime)
	if inverse == nil {
		return nil, fmt.Errorf("value is not invertible in this field")
	}
	return NewFieldElement(inverse, a.Prime)
}

// Sqrt returns a square root of a, if one exists. It uses the general
// Tonelli-Shanks algorithm (via big.Int.ModSqrt) so it works for any prime,
// not just primes of a particular residue class mod 4.
func (a *FieldElement) Sqrt() (*FieldElement, error) {
	root := new(big.Int).ModSqrt(a.Value, a.Prime)
	if root == nil {
		return nil, fmt.Errorf("%s has no square root in this field", a.Value.String())
	}
	return NewFieldElement(root, a.Prime)
}

// GetEvenOddSquareRoots returns the two square roots of a (y and prime-y),
// labelled by parity. It returns an error if a has no square root.
func (a *FieldElement) GetEvenOddSquareRoots() (even, odd *big.Int, err error) {
	root, err := a.Sqrt()
	if err != nil {
		return nil, nil, err
	}
	complement := new(big.Int).Sub(a.Prime, root.Value)
	if root.Value.Bit(0) == 0 {
		return new(big.Int).Set(root.Value), complement, nil
	}
	return complement, new(big.Int).Set(root.Value), nil
}
