package curve

import (
	"math/big"

	"github.com/pkg/errors"
)

var (
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// IsOnCurve reports whether pt satisfies the curve equation. The identity
// is always on the curve; affine coordinates must lie in [0, p).
func (c *Curve) IsOnCurve(pt Point) bool {
	if pt.IsIdentity() {
		return true
	}
	if pt.x.Sign() < 0 || pt.x.Cmp(c.p) >= 0 || pt.y.Sign() < 0 || pt.y.Cmp(c.p) >= 0 {
		return false
	}
	return c.fp.Mul(pt.y, pt.y).Cmp(c.rhs(pt.x)) == 0
}

// rhs returns x^3 + ax + b mod p.
func (c *Curve) rhs(x *big.Int) *big.Int {
	f := c.fp
	x3 := f.Mul(f.Mul(x, x), x)
	return f.Add(f.Add(x3, f.Mul(c.a, x)), c.b)
}

func (c *Curve) mustBeOnCurve(pt Point) {
	if !c.IsOnCurve(pt) {
		panic(errors.Wrapf(ErrPointNotOnCurve, "%s on %s", pt, c))
	}
}

func (c *Curve) mustInverse(v *big.Int) *big.Int {
	inv, err := c.fp.Inverse(v)
	if err != nil {
		panic(errors.Wrap(err, "group law"))
	}
	return inv
}

// Add returns p1 + p2 under the chord-and-tangent law. Both operands must be
// on the curve.
func (c *Curve) Add(p1, p2 Point) Point {
	c.mustBeOnCurve(p1)
	c.mustBeOnCurve(p2)
	if p1.IsIdentity() {
		return p2
	}
	if p2.IsIdentity() {
		return p1
	}

	f := c.fp
	var m *big.Int
	if p1.x.Cmp(p2.x) == 0 {
		// p1 = -p2, or a vertical tangent at a point of order two
		if p1.y.Cmp(p2.y) != 0 || p1.y.Sign() == 0 {
			return Identity()
		}
		num := f.Add(f.Mul(three, f.Mul(p1.x, p1.x)), c.a)
		m = f.Mul(num, c.mustInverse(f.Mul(two, p1.y)))
	} else {
		m = f.Mul(f.Sub(p1.y, p2.y), c.mustInverse(f.Sub(p1.x, p2.x)))
	}

	x3 := f.Sub(f.Sub(f.Mul(m, m), p1.x), p2.x)
	y3 := f.Add(p1.y, f.Mul(m, f.Sub(x3, p1.x)))
	r := Point{affine: true, x: x3, y: f.Neg(y3)}
	c.mustBeOnCurve(r)
	return r
}

func (c *Curve) Double(pt Point) Point { return c.Add(pt, pt) }

// Neg returns -pt.
func (c *Curve) Neg(pt Point) Point {
	c.mustBeOnCurve(pt)
	if pt.IsIdentity() {
		return pt
	}
	return Point{affine: true, x: new(big.Int).Set(pt.x), y: c.fp.Neg(pt.y)}
}

// Mult returns k*pt. Negative k yields -(|k|*pt); otherwise k is reduced
// modulo the subgroup order first.
func (c *Curve) Mult(k *big.Int, pt Point) Point {
	if k.Sign() < 0 {
		return c.Neg(c.Mult(new(big.Int).Neg(k), pt))
	}
	c.mustBeOnCurve(pt)
	r := new(big.Int).Mod(k, c.n)
	if r.Sign() == 0 || pt.IsIdentity() {
		return Identity()
	}
	return c.scalarMult(r, pt)
}

// scalarMult is double-and-add over the bits of k >= 0, least significant
// first, with no reduction of k.
func (c *Curve) scalarMult(k *big.Int, pt Point) Point {
	result := Identity()
	addend := pt
	bits := k.BitLen()
	for i := 0; i < bits; i++ {
		if k.Bit(i) == 1 {
			result = c.Add(result, addend)
		}
		if i+1 < bits {
			addend = c.Double(addend)
		}
	}
	return result
}

// InSubgroup reports whether pt is on the curve and n*pt is the identity.
// For a cyclic curve group this is membership in the subgroup generated by g.
func (c *Curve) InSubgroup(pt Point) bool {
	return c.IsOnCurve(pt) && c.scalarMult(c.n, pt).IsIdentity()
}
