// Package curve implements the group of points of a short Weierstrass
// elliptic curve y^2 = x^3 + ax + b over a prime field F_p, in affine
// coordinates with arbitrary-precision integers.
//
// A Curve is immutable once built by New and is safe for concurrent use.
// The group law panics when handed a point that is not on the curve: that is
// a programming error on the caller's side, not a recoverable condition.
//
// New verifies n*g = O without reducing n first. The commonly quoted 53-bit
// demonstration parameters with n = 11037913511 fail that check; use
// Reference for the same curve with a generator of genuine prime order.
package curve

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"ecdlog/internal/modular"
)

var (
	ErrModulusNotPrime     = errors.New("field modulus is not a prime greater than 3")
	ErrInvalidOrder        = errors.New("subgroup order must be at least 2")
	ErrSingularCurve       = errors.New("singular curve: 4a^3 + 27b^2 = 0 mod p")
	ErrGeneratorNotOnCurve = errors.New("generator is not on the curve")
	ErrGeneratorOrder      = errors.New("generator is not annihilated by the subgroup order")

	// ErrPointNotOnCurve is the panic value of the group law for invalid
	// operands. Solvers return it (wrapped) instead of panicking.
	ErrPointNotOnCurve = errors.New("point is not on the curve")

	// ErrPointNotInSubgroup is returned by solvers for a base point that is
	// on the curve but not annihilated by n.
	ErrPointNotInSubgroup = errors.New("point is not in the order-n subgroup")
)

// primality rounds for the modulus sanity check
const millerRabinRounds = 32

// Curve is y^2 = x^3 + ax + b over F_p together with a generator g of a
// subgroup of order n.
type Curve struct {
	p, a, b *big.Int
	g       Point
	n       *big.Int

	fp modular.Modulus
}

// New validates the parameters and returns the curve. Coefficients are
// reduced modulo p. It fails when p is not prime, the curve is singular,
// g is not an affine point on the curve, or n*g is not the identity.
func New(p, a, b *big.Int, g Point, n *big.Int) (*Curve, error) {
	if p.Cmp(big.NewInt(3)) <= 0 || !p.ProbablyPrime(millerRabinRounds) {
		return nil, errors.Wrapf(ErrModulusNotPrime, "p=%s", p)
	}
	if n.Cmp(big.NewInt(2)) < 0 {
		return nil, errors.Wrapf(ErrInvalidOrder, "n=%s", n)
	}
	fp, err := modular.New(p)
	if err != nil {
		return nil, err
	}

	c := &Curve{
		p:  fp.Int(),
		a:  fp.Reduce(a),
		b:  fp.Reduce(b),
		n:  new(big.Int).Set(n),
		fp: fp,
	}
	if c.isSingular() {
		return nil, errors.Wrapf(ErrSingularCurve, "a=%s b=%s p=%s", c.a, c.b, c.p)
	}
	if g.IsIdentity() || !c.IsOnCurve(g) {
		return nil, errors.Wrapf(ErrGeneratorNotOnCurve, "g=%s", g)
	}
	c.g = Affine(g.x, g.y)
	if r := c.scalarMult(c.n, c.g); !r.IsIdentity() {
		return nil, errors.Wrapf(ErrGeneratorOrder, "n=%s, n*g=%s", c.n, r)
	}
	return c, nil
}

// isSingular tests 4a^3 + 27b^2 = 0 mod p.
func (c *Curve) isSingular() bool {
	f := c.fp
	a3 := f.Mul(f.Mul(c.a, c.a), c.a)
	b2 := f.Mul(c.b, c.b)
	return f.IsZero(f.Add(f.Mul(big.NewInt(4), a3), f.Mul(big.NewInt(27), b2)))
}

func (c *Curve) P() *big.Int { return new(big.Int).Set(c.p) }
func (c *Curve) A() *big.Int { return new(big.Int).Set(c.a) }
func (c *Curve) B() *big.Int { return new(big.Int).Set(c.b) }
func (c *Curve) N() *big.Int { return new(big.Int).Set(c.n) }

// G returns the generator.
func (c *Curve) G() Point { return c.g }

func (c *Curve) String() string {
	return fmt.Sprintf("y^2 = (x^3 + %sx + %s) mod %s", c.a, c.b, c.p)
}
