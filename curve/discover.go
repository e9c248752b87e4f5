package curve

import (
	"crypto/rand"
	"io"
	"math/big"
	"runtime"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrFieldTooLarge = errors.New("field too large to enumerate")
	ErrNoPointFound  = errors.New("no point found")
)

// Points and Cardinality are O(p); refuse anything larger than this.
var maxEnumerable = big.NewInt(1 << 24)

// tries for RandomPoint; about half of all x values lift to a point
const maxSeedTries = 10000

// LiftX returns the affine points with x coordinate x, ordered by y. There
// are zero, one (y = 0) or two of them. x outside [0, p) has none.
func (c *Curve) LiftX(x *big.Int) []Point {
	if x.Sign() < 0 || x.Cmp(c.p) >= 0 {
		return nil
	}
	t := c.rhs(x)
	switch c.fp.Legendre(t) {
	case 0:
		return []Point{Affine(x, new(big.Int))}
	case 1:
		y, err := c.fp.Sqrt(t)
		if err != nil {
			return nil
		}
		ny := c.fp.Neg(y)
		if ny.Cmp(y) < 0 {
			y, ny = ny, y
		}
		return []Point{Affine(x, y), Affine(x, ny)}
	}
	return nil
}

// RandomPoint samples a uniformly random x from r until it lifts to a point
// and returns one of the (up to two) points above it. r defaults to
// crypto/rand.Reader when nil.
func (c *Curve) RandomPoint(r io.Reader) (Point, error) {
	if r == nil {
		r = rand.Reader
	}
	for tries := 0; tries < maxSeedTries; tries++ {
		x, err := rand.Int(r, c.p)
		if err != nil {
			return Point{}, errors.Wrap(err, "sampling x")
		}
		pts := c.LiftX(x)
		if len(pts) == 0 {
			continue
		}
		if len(pts) == 1 {
			return pts[0], nil
		}
		bit, err := rand.Int(r, two)
		if err != nil {
			return Point{}, errors.Wrap(err, "sampling y")
		}
		return pts[bit.Int64()], nil
	}
	return Point{}, errors.Wrapf(ErrNoPointFound, "after %d tries", maxSeedTries)
}

// Points returns every affine point of the curve sorted by (x, y), using up
// to workers goroutines (GOMAXPROCS when workers <= 0). The identity is not
// included.
func (c *Curve) Points(workers int) ([]Point, error) {
	if c.p.Cmp(maxEnumerable) > 0 {
		return nil, errors.Wrapf(ErrFieldTooLarge, "p=%s", c.p)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := c.p.Int64()

	type job struct{ x0, x1 int64 } // half-open
	jobs := make(chan job, workers*2)
	found := make(chan []Point, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for jb := range jobs {
				var pts []Point
				for x := jb.x0; x < jb.x1; x++ {
					pts = append(pts, c.LiftX(big.NewInt(x))...)
				}
				found <- pts
			}
		}()
	}

	go func() {
		const chunks = 64
		chunk := p/chunks + 1
		for s := int64(0); s < p; s += chunk {
			e := s + chunk
			if e > p {
				e = p
			}
			jobs <- job{x0: s, x1: e}
		}
		close(jobs)
		wg.Wait()
		close(found)
	}()

	var all []Point
	for pts := range found {
		all = append(all, pts...)
	}
	sort.Slice(all, func(i, j int) bool {
		if cx := all[i].x.Cmp(all[j].x); cx != 0 {
			return cx < 0
		}
		return all[i].y.Cmp(all[j].y) < 0
	})
	return all, nil
}

// Cardinality returns #E(F_p), identity included, by a Legendre scan over
// every x.
func (c *Curve) Cardinality() (*big.Int, error) {
	if c.p.Cmp(maxEnumerable) > 0 {
		return nil, errors.Wrapf(ErrFieldTooLarge, "p=%s", c.p)
	}
	cnt := int64(1)
	for x := new(big.Int); x.Cmp(c.p) < 0; x.Add(x, big.NewInt(1)) {
		switch c.fp.Legendre(c.rhs(x)) {
		case 0:
			cnt++
		case 1:
			cnt += 2
		}
	}
	return big.NewInt(cnt), nil
}
