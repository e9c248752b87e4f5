package curve

import (
	"math/big"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func fromDecimal(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("curve: bad decimal constant " + s)
	}
	return v
}

func mustNew(p, a, b *big.Int, g Point, n *big.Int) *Curve {
	c, err := New(p, a, b, g, n)
	if err != nil {
		panic(err)
	}
	return c
}

var secp256k1Curve = sync.OnceValue(func() *Curve {
	params := secp256k1.S256().Params()
	return mustNew(params.P, big.NewInt(0), params.B, Affine(params.Gx, params.Gy), params.N)
})

// Secp256k1 returns the secp256k1 curve (a = 0, b = 7) with its standard
// generator and prime group order.
func Secp256k1() *Curve { return secp256k1Curve() }

var referenceCurve = sync.OnceValue(func() *Curve {
	return mustNew(
		fromDecimal("7387789250824511"),
		fromDecimal("6238554010247637"),
		fromDecimal("5070534591820985"),
		Affine(fromDecimal("5475308210839722"), fromDecimal("3905776725204358")),
		fromDecimal("561580937"),
	)
})

// Reference returns the 53-bit demonstration curve
//
//	y^2 = x^3 + 6238554010247637x + 5070534591820985 mod 7387789250824511
//
// restricted to its subgroup of prime order 561580937. The curve group is
// cyclic of order 7387789286915454 = 2*3*41*53*1009*561580937 and is
// generated by (4392514062910494, 2959958970177251); the generator used
// here is 13155342 times that point.
func Reference() *Curve { return referenceCurve() }
