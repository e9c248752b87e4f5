// Package modular implements the integer arithmetic the curve and the
// discrete-log solvers are built on: the extended Euclidean algorithm, the
// modular inverse, and a small Modulus type for reductions, Legendre symbols
// and square roots modulo a prime.
package modular

import (
	"math/big"

	"github.com/pkg/errors"
)

var (
	// ErrZeroInverse is returned when the inverse of a value congruent to
	// zero is requested.
	ErrZeroInverse = errors.New("inverse of zero")

	// ErrNotInvertible is returned when the value shares a factor with a
	// composite modulus.
	ErrNotInvertible = errors.New("value is not invertible")

	// ErrInverseCheck is returned when a computed inverse does not satisfy
	// n*x = 1. It signals a bug, never bad input.
	ErrInverseCheck = errors.New("inverse failed verification")

	// ErrNonResidue is returned by Sqrt for quadratic non-residues.
	ErrNonResidue = errors.New("non-residue")

	// ErrBadModulus is returned for moduli smaller than 2.
	ErrBadModulus = errors.New("modulus must be greater than 1")
)

var (
	zero  = big.NewInt(0)
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// ExtendedGCD returns g = gcd(a, b) >= 0 together with Bézout coefficients
// x, y such that a*x + b*y = g.
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	oldR, r := new(big.Int).Abs(a), new(big.Int).Abs(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR, r = r, new(big.Int).Sub(oldR, tmp)

		tmp.Mul(q, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)

		tmp.Mul(q, t)
		oldT, t = t, new(big.Int).Sub(oldT, tmp)
	}
	if a.Sign() < 0 {
		oldS.Neg(oldS)
	}
	if b.Sign() < 0 {
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT
}

// Inverse returns the unique x in [0, p) with (n*x) mod p = 1.
//
// Negative n is handled as p - Inverse(-n, p). The result is verified before
// it is returned.
func Inverse(n, p *big.Int) (*big.Int, error) {
	if p.Cmp(one) <= 0 {
		return nil, errors.Wrapf(ErrBadModulus, "got %s", p)
	}
	if new(big.Int).Mod(n, p).Sign() == 0 {
		return nil, errors.Wrapf(ErrZeroInverse, "%s mod %s", n, p)
	}

	var x *big.Int
	if n.Sign() < 0 {
		inv, err := Inverse(new(big.Int).Neg(n), p)
		if err != nil {
			return nil, err
		}
		x = new(big.Int).Sub(p, inv)
	} else {
		g, s, _ := ExtendedGCD(n, p)
		if g.Cmp(one) != 0 {
			return nil, errors.Wrapf(ErrNotInvertible, "gcd(%s, %s) = %s", n, p, g)
		}
		x = s.Mod(s, p)
	}

	check := new(big.Int).Mul(n, x)
	if check.Mod(check, p).Cmp(one) != 0 {
		return nil, errors.Wrapf(ErrInverseCheck, "%s * %s mod %s", n, x, p)
	}
	return x, nil
}

// Modulus performs arithmetic modulo m. All results are reduced into [0, m)
// and freshly allocated; arguments are never modified.
type Modulus struct {
	m *big.Int
}

// New returns a Modulus for m. The value is copied.
func New(m *big.Int) (Modulus, error) {
	if m.Cmp(one) <= 0 {
		return Modulus{}, errors.Wrapf(ErrBadModulus, "got %s", m)
	}
	return Modulus{m: new(big.Int).Set(m)}, nil
}

// Int returns a copy of the modulus.
func (md Modulus) Int() *big.Int { return new(big.Int).Set(md.m) }

func (md Modulus) Reduce(a *big.Int) *big.Int { return new(big.Int).Mod(a, md.m) }

func (md Modulus) Add(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, md.m)
}

func (md Modulus) Sub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, md.m)
}

func (md Modulus) Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, md.m)
}

func (md Modulus) Neg(a *big.Int) *big.Int {
	r := new(big.Int).Neg(a)
	return r.Mod(r, md.m)
}

func (md Modulus) Exp(a, e *big.Int) *big.Int {
	return new(big.Int).Exp(md.Reduce(a), e, md.m)
}

// Inverse is Inverse(a, m).
func (md Modulus) Inverse(a *big.Int) (*big.Int, error) { return Inverse(a, md.m) }

// Legendre returns the Legendre symbol (a|m) for an odd prime m: -1, 0 or +1.
func (md Modulus) Legendre(a *big.Int) int {
	A := md.Reduce(a)
	if A.Sign() == 0 {
		return 0
	}
	e := new(big.Int).Sub(md.m, one)
	e.Rsh(e, 1)
	if md.Exp(A, e).Cmp(one) == 0 {
		return 1
	}
	return -1
}

// Sqrt returns a square root of a modulo an odd prime m (Tonelli-Shanks).
// The other root is m - Sqrt(a).
func (md Modulus) Sqrt(a *big.Int) (*big.Int, error) {
	p := md.m
	A := md.Reduce(a)
	if A.Sign() == 0 {
		return new(big.Int), nil
	}
	if md.Legendre(A) != 1 {
		return nil, errors.Wrapf(ErrNonResidue, "%s mod %s", a, p)
	}

	// p = 3 mod 4
	if new(big.Int).And(p, three).Cmp(three) == 0 {
		e := new(big.Int).Add(p, one)
		e.Rsh(e, 2)
		return md.Exp(A, e), nil
	}

	// p-1 = q * 2^s with q odd
	q := new(big.Int).Sub(p, one)
	s := 0
	for q.Bit(0) == 0 {
		q.Rsh(q, 1)
		s++
	}
	z := new(big.Int).Set(two)
	for md.Legendre(z) != -1 {
		z.Add(z, one)
	}

	c := md.Exp(z, q)
	e := new(big.Int).Add(q, one)
	x := md.Exp(A, e.Rsh(e, 1))
	t := md.Exp(A, q)
	m := s
	for t.Cmp(one) != 0 {
		// least i with t^(2^i) = 1
		i := 1
		t2i := md.Mul(t, t)
		for t2i.Cmp(one) != 0 {
			t2i = md.Mul(t2i, t2i)
			i++
			if i == m {
				return nil, errors.Wrapf(ErrNonResidue, "%s mod %s", a, p)
			}
		}
		b := new(big.Int).Set(c)
		for j := 0; j < m-i-1; j++ {
			b = md.Mul(b, b)
		}
		x = md.Mul(x, b)
		c = md.Mul(b, b)
		t = md.Mul(t, c)
		m = i
	}
	return x, nil
}

// IsZero reports whether a = 0 mod m.
func (md Modulus) IsZero(a *big.Int) bool { return md.Reduce(a).Cmp(zero) == 0 }
