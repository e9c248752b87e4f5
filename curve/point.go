package curve

import (
	"fmt"
	"math/big"
)

// Point is an element of the curve group: either the identity (the point at
// infinity) or an affine pair (x, y). The zero value is the identity.
//
// Points are values. Coordinates are copied on the way in and on the way
// out, so a Point never shares an integer with its caller.
type Point struct {
	affine bool
	x, y   *big.Int
}

// Identity returns the point at infinity.
func Identity() Point { return Point{} }

// Affine returns the affine point (x, y). It does not check that the point
// lies on any curve; use Curve.IsOnCurve for that.
func Affine(x, y *big.Int) Point {
	return Point{affine: true, x: new(big.Int).Set(x), y: new(big.Int).Set(y)}
}

func (pt Point) IsIdentity() bool { return !pt.affine }

// X returns a copy of the x coordinate, or nil for the identity.
func (pt Point) X() *big.Int {
	if !pt.affine {
		return nil
	}
	return new(big.Int).Set(pt.x)
}

// Y returns a copy of the y coordinate, or nil for the identity.
func (pt Point) Y() *big.Int {
	if !pt.affine {
		return nil
	}
	return new(big.Int).Set(pt.y)
}

// Coords returns copies of both coordinates; ok is false for the identity.
func (pt Point) Coords() (x, y *big.Int, ok bool) {
	if !pt.affine {
		return nil, nil, false
	}
	return pt.X(), pt.Y(), true
}

// Equal reports whether both points are the identity or share coordinates.
func (pt Point) Equal(other Point) bool {
	if pt.affine != other.affine {
		return false
	}
	if !pt.affine {
		return true
	}
	return pt.x.Cmp(other.x) == 0 && pt.y.Cmp(other.y) == 0
}

func (pt Point) String() string {
	if !pt.affine {
		return "O"
	}
	return fmt.Sprintf("(%s, %s)", pt.x, pt.y)
}

// Key returns a string usable as a map key. Equal points have equal keys.
func (pt Point) Key() string {
	if !pt.affine {
		return "inf"
	}
	return pt.x.String() + "|" + pt.y.String()
}
