package curve

import (
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- helpers ----------

func bi(v int64) *big.Int { return big.NewInt(v) }

func pt(x, y int64) Point { return Affine(bi(x), bi(y)) }

// y^2 = x^3 + 1 over F_11: cyclic of order 12, (2,3) has order 6.
func smallCurve(t *testing.T) *Curve {
	t.Helper()
	c, err := New(bi(11), bi(0), bi(1), pt(2, 3), bi(6))
	require.NoError(t, err)
	return c
}

// y^2 = x^3 + 1001x + 75 over F_7919, generator of order 7889 = 7^3 * 23.
func mediumCurve(t *testing.T) *Curve {
	t.Helper()
	c, err := New(bi(7919), bi(1001), bi(75), pt(4023, 6036), bi(7889))
	require.NoError(t, err)
	return c
}

// The reference curve with its full cyclic group.
func fullReferenceCurve(t *testing.T) *Curve {
	t.Helper()
	c, err := New(
		fromDecimal("7387789250824511"),
		fromDecimal("6238554010247637"),
		fromDecimal("5070534591820985"),
		Affine(fromDecimal("4392514062910494"), fromDecimal("2959958970177251")),
		fromDecimal("7387789286915454"),
	)
	require.NoError(t, err)
	return c
}

func assertPoints(t *testing.T, want, got []Point) {
	t.Helper()
	require.Len(t, got, len(want), "got %v", got)
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "#%d: got %s want %s", i, got[i], want[i])
	}
}

func requirePanicsWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, errors.Is(err, target), "got %v", err)
	}()
	fn()
}

// ---------- construction ----------

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		p, a, b int64
		g       Point
		n       int64
		want    error
	}{
		{"composite modulus", 15, 0, 1, pt(0, 1), 6, ErrModulusNotPrime},
		{"modulus too small", 3, 0, 1, pt(0, 1), 3, ErrModulusNotPrime},
		{"order too small", 11, 0, 1, pt(2, 3), 1, ErrInvalidOrder},
		{"singular", 11, 0, 0, pt(0, 0), 6, ErrSingularCurve},
		{"generator off curve", 11, 0, 1, pt(1, 1), 6, ErrGeneratorNotOnCurve},
		{"generator out of range", 11, 0, 1, pt(2, 14), 6, ErrGeneratorNotOnCurve},
		{"generator is identity", 11, 0, 1, Identity(), 6, ErrGeneratorNotOnCurve},
		{"wrong order", 11, 0, 1, pt(2, 3), 4, ErrGeneratorOrder},
		{"order multiple of a divisor", 11, 0, 1, pt(2, 3), 9, ErrGeneratorOrder},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, err := New(bi(test.p), bi(test.a), bi(test.b), test.g, bi(test.n))
			assert.Nil(t, c)
			assert.True(t, errors.Is(err, test.want), "got %v", err)
		})
	}
}

// The published order 11037913511 does not annihilate the published
// generator, whose true order is the full group order.
func TestNewRejectsPublishedReferenceOrder(t *testing.T) {
	_, err := New(
		fromDecimal("7387789250824511"),
		fromDecimal("6238554010247637"),
		fromDecimal("5070534591820985"),
		Affine(fromDecimal("4392514062910494"), fromDecimal("2959958970177251")),
		fromDecimal("11037913511"),
	)
	assert.True(t, errors.Is(err, ErrGeneratorOrder), "got %v", err)

	full := fullReferenceCurve(t)
	assert.True(t, full.Mult(bi(13155342), full.G()).Equal(Reference().G()))
}

func TestNewReducesCoefficients(t *testing.T) {
	c, err := New(bi(11), bi(-11), bi(12), pt(2, 3), bi(6))
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.A().Int64())
	assert.Equal(t, int64(1), c.B().Int64())
	assert.Equal(t, "y^2 = (x^3 + 0x + 1) mod 11", c.String())
}

func TestAccessorsCopy(t *testing.T) {
	c := smallCurve(t)
	c.P().SetInt64(99)
	c.N().SetInt64(99)
	x := c.G().X()
	x.SetInt64(99)
	assert.Equal(t, int64(11), c.P().Int64())
	assert.Equal(t, int64(6), c.N().Int64())
	assert.True(t, c.G().Equal(pt(2, 3)))
}

// ---------- group law ----------

func TestIsOnCurve(t *testing.T) {
	c := smallCurve(t)
	assert.True(t, c.IsOnCurve(Identity()))
	assert.True(t, c.IsOnCurve(pt(0, 1)))
	assert.True(t, c.IsOnCurve(pt(10, 0)))
	assert.False(t, c.IsOnCurve(pt(1, 1)))
	assert.False(t, c.IsOnCurve(pt(0, 12)), "y must be reduced")
	assert.False(t, c.IsOnCurve(pt(-11, 1)), "x must be reduced")
}

func TestNegAndAddBasics(t *testing.T) {
	c := smallCurve(t)
	P := pt(0, 1)
	mP := c.Neg(P)
	assert.True(t, mP.Equal(pt(0, 10)))
	assert.True(t, c.Neg(Identity()).IsIdentity())

	assert.True(t, c.Add(P, Identity()).Equal(P))
	assert.True(t, c.Add(Identity(), P).Equal(P))
	assert.True(t, c.Add(P, mP).IsIdentity())
	assert.True(t, c.Add(Identity(), Identity()).IsIdentity())
}

func TestDoubleAtOrderTwoPoint(t *testing.T) {
	c := smallCurve(t)
	// x^3 + 1 = 0 mod 11 at x = 10
	P := pt(10, 0)
	assert.True(t, c.Double(P).IsIdentity())
}

func TestKnownSmallMultiples(t *testing.T) {
	c := smallCurve(t)
	g := c.G()
	want := []Point{Identity(), pt(2, 3), pt(0, 1), pt(10, 0), pt(0, 10), pt(2, 8)}
	acc := Identity()
	for k, w := range want {
		assert.True(t, acc.Equal(w), "%d*g: got %s want %s", k, acc, w)
		assert.True(t, c.Mult(bi(int64(k)), g).Equal(w), "Mult(%d)", k)
		acc = c.Add(acc, g)
	}
	assert.True(t, acc.IsIdentity())
}

func TestGroupLawsExhaustive(t *testing.T) {
	c := smallCurve(t)
	pts, err := c.Points(2)
	require.NoError(t, err)
	require.Len(t, pts, 11)
	all := append([]Point{Identity()}, pts...)

	for _, p1 := range all {
		assert.True(t, c.Add(p1, Identity()).Equal(p1))
		assert.True(t, c.Add(Identity(), p1).Equal(p1))
		assert.True(t, c.Add(p1, c.Neg(p1)).IsIdentity(), "p + -p for %s", p1)
		assert.True(t, c.Double(p1).Equal(c.Add(p1, p1)))
		for _, p2 := range all {
			s := c.Add(p1, p2)
			require.True(t, c.IsOnCurve(s), "closure %s + %s", p1, p2)
			assert.True(t, s.Equal(c.Add(p2, p1)), "commutativity %s + %s", p1, p2)
			for _, p3 := range all {
				l := c.Add(c.Add(p1, p2), p3)
				r := c.Add(p1, c.Add(p2, p3))
				require.True(t, l.Equal(r), "associativity %s %s %s", p1, p2, p3)
			}
		}
	}
}

func TestGroupLawsSampled(t *testing.T) {
	c := mediumCurve(t)
	pts, err := c.Points(0)
	require.NoError(t, err)

	rng := mrand.New(mrand.NewSource(7))
	for i := 0; i < 200; i++ {
		p1 := pts[rng.Intn(len(pts))]
		p2 := pts[rng.Intn(len(pts))]
		p3 := pts[rng.Intn(len(pts))]
		s := c.Add(p1, p2)
		require.True(t, c.IsOnCurve(s), "closure %s", spew.Sdump(p1, p2))
		require.True(t, c.Add(s, p3).Equal(c.Add(p1, c.Add(p2, p3))))
		require.True(t, c.Add(p1, c.Neg(p1)).IsIdentity())
	}
}

func TestAddPanicsOffCurve(t *testing.T) {
	c := smallCurve(t)
	requirePanicsWith(t, ErrPointNotOnCurve, func() { c.Add(pt(1, 1), c.G()) })
	requirePanicsWith(t, ErrPointNotOnCurve, func() { c.Add(c.G(), pt(1, 1)) })
	requirePanicsWith(t, ErrPointNotOnCurve, func() { c.Neg(pt(1, 1)) })
	requirePanicsWith(t, ErrPointNotOnCurve, func() { c.Mult(bi(3), pt(1, 1)) })
}

// ---------- scalar multiplication ----------

func TestMultOrder(t *testing.T) {
	for _, c := range []*Curve{smallCurve(t), mediumCurve(t), Reference(), Secp256k1()} {
		assert.True(t, c.Mult(c.N(), c.G()).IsIdentity(), "n*g on %s", c)
		assert.True(t, c.scalarMult(c.N(), c.G()).IsIdentity(), "unreduced n*g on %s", c)
		assert.True(t, c.Mult(bi(0), c.G()).IsIdentity())
		assert.True(t, c.Mult(bi(1), c.G()).Equal(c.G()))
		assert.True(t, c.Mult(bi(5), Identity()).IsIdentity())
	}
}

func TestMultReferenceVector(t *testing.T) {
	c := Reference()
	q := c.Mult(bi(12345), c.G())
	assert.True(t, q.Equal(Affine(fromDecimal("6593277121220124"), fromDecimal("5020833807285661"))), "got %s", q)

	// (n-1)*g = -g
	nm1 := new(big.Int).Sub(c.N(), bi(1))
	assert.True(t, c.Mult(nm1, c.G()).Equal(c.Neg(c.G())))
}

func TestMultNegativeAndReduced(t *testing.T) {
	c := Reference()
	g := c.G()
	k := bi(987654)
	assert.True(t, c.Mult(new(big.Int).Neg(k), g).Equal(c.Neg(c.Mult(k, g))))
	kn := new(big.Int).Add(k, c.N())
	assert.True(t, c.Mult(kn, g).Equal(c.Mult(k, g)))
}

func TestMultLinearity(t *testing.T) {
	rng := mrand.New(mrand.NewSource(42))
	for _, c := range []*Curve{mediumCurve(t), Reference(), Secp256k1()} {
		g := c.G()
		for i := 0; i < 10; i++ {
			k1 := new(big.Int).Rand(rng, c.N())
			k2 := new(big.Int).Rand(rng, c.N())
			sum := new(big.Int).Add(k1, k2)
			assert.True(t, c.Mult(sum, g).Equal(c.Add(c.Mult(k1, g), c.Mult(k2, g))),
				"k1=%s k2=%s on %s", k1, k2, c)
		}
	}
}

func TestSecp256k1MatchesReferenceImplementations(t *testing.T) {
	c := Secp256k1()
	assert.Equal(t, int64(7), c.B().Int64())
	assert.Equal(t, int64(0), c.A().Int64())

	rng := mrand.New(mrand.NewSource(3))
	for i := 0; i < 5; i++ {
		k := new(big.Int).Rand(rng, c.N())
		got := c.Mult(k, c.G())

		wx, wy := secp256k1.S256().ScalarBaseMult(k.Bytes())
		assert.True(t, got.Equal(Affine(wx, wy)), "k=%s", k)

		// g + k*g
		gx, gy := c.G().X(), c.G().Y()
		x, y, _ := got.Coords()
		sx, sy := btcec.S256().Add(gx, gy, x, y)
		assert.True(t, c.Add(c.G(), got).Equal(Affine(sx, sy)), "k=%s", k)
	}
}

// ---------- discovery ----------

func TestLiftX(t *testing.T) {
	c := smallCurve(t)
	assertPoints(t, []Point{pt(0, 1), pt(0, 10)}, c.LiftX(bi(0)))
	assertPoints(t, []Point{pt(10, 0)}, c.LiftX(bi(10)))
	assert.Empty(t, c.LiftX(bi(1)))
	assert.Empty(t, c.LiftX(bi(11)))

	r := Reference()
	for _, p := range r.LiftX(r.G().X()) {
		assert.True(t, r.IsOnCurve(p))
	}
}

func TestPointsAndCardinality(t *testing.T) {
	for _, test := range []struct {
		c    *Curve
		want int64
	}{{smallCurve(t), 12}, {mediumCurve(t), 7889}} {
		n, err := test.c.Cardinality()
		require.NoError(t, err)
		assert.Equal(t, test.want, n.Int64())

		pts, err := test.c.Points(3)
		require.NoError(t, err)
		assert.Len(t, pts, int(test.want-1))
		seen := map[string]bool{}
		for _, p := range pts {
			require.True(t, test.c.IsOnCurve(p))
			seen[p.Key()] = true
		}
		assert.Len(t, seen, len(pts))
	}

	_, err := Reference().Points(1)
	assert.True(t, errors.Is(err, ErrFieldTooLarge))
	_, err = Reference().Cardinality()
	assert.True(t, errors.Is(err, ErrFieldTooLarge))
}

func TestRandomPoint(t *testing.T) {
	r := mrand.New(mrand.NewSource(11))
	for _, c := range []*Curve{smallCurve(t), Reference(), Secp256k1()} {
		for i := 0; i < 5; i++ {
			p, err := c.RandomPoint(r)
			require.NoError(t, err)
			assert.False(t, p.IsIdentity())
			assert.True(t, c.IsOnCurve(p))
		}
	}

	p, err := Reference().RandomPoint(nil)
	require.NoError(t, err)
	assert.True(t, Reference().IsOnCurve(p))
}

func TestInSubgroup(t *testing.T) {
	c := smallCurve(t)
	assert.True(t, c.InSubgroup(c.G()))
	assert.True(t, c.InSubgroup(Identity()))
	assert.True(t, c.InSubgroup(pt(10, 0)))  // order 2 divides 6
	assert.False(t, c.InSubgroup(pt(5, 4)))  // order 4
	assert.False(t, c.InSubgroup(pt(7, 5)))  // order 12
	assert.False(t, c.InSubgroup(pt(1, 1)))  // off curve

	r := Reference()
	assert.True(t, r.InSubgroup(r.Mult(bi(777), r.G())))
	assert.False(t, r.InSubgroup(fullReferenceCurve(t).G()))
}
