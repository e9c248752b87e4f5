package dlog

import (
	"crypto/rand"
	"io"
	"math"
	"math/big"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"ecdlog/curve"
	"ecdlog/internal/modular"
)

var (
	// a walk whose collision says nothing about the logarithm
	errDegenerateWalk = errors.New("degenerate walk")
	// a walk that ran n rounds without the tortoise meeting the hare
	errWalkExhausted = errors.New("walk exhausted")
)

// Rho is the Pollard rho solver.
type Rho struct {
	attempts      int
	maxCandidates int64
	rand          io.Reader
	logger        *zap.Logger
}

func NewRho(cfg Config) (*Rho, error) {
	cfg, _, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	return &Rho{
		attempts:      cfg.Attempts,
		maxCandidates: cfg.MaxCandidates,
		rand:          cfg.Rand,
		logger:        cfg.Logger.Named("dlog").Named("rho"),
	}, nil
}

// cursor is a walk position x = a*p + b*q.
type cursor struct {
	x    curve.Point
	a, b *big.Int
}

// walk is the pseudo-random map of one rho attempt. Points are split into
// three bands by x coordinate; band 0 adds seed1, band 1 doubles, band 2 adds
// seed2. The identity falls in band 0.
type walk struct {
	c            *curve.Curve
	zn           modular.Modulus
	width        *big.Int
	a1, b1       *big.Int
	a2, b2       *big.Int
	seed1, seed2 curve.Point
}

func newWalk(c *curve.Curve, p, q curve.Point, r io.Reader) (*walk, error) {
	n := c.N()
	zn, err := modular.New(n)
	if err != nil {
		return nil, err
	}
	w := &walk{
		c:     c,
		zn:    zn,
		width: new(big.Int).Add(new(big.Int).Quo(c.P(), big.NewInt(3)), big.NewInt(1)),
	}
	coeffs := make([]*big.Int, 4)
	for i := range coeffs {
		if coeffs[i], err = randNonZero(r, n); err != nil {
			return nil, errors.Wrap(err, "sampling walk coefficients")
		}
	}
	w.a1, w.b1, w.a2, w.b2 = coeffs[0], coeffs[1], coeffs[2], coeffs[3]
	w.seed1 = c.Add(c.Mult(w.a1, p), c.Mult(w.b1, q))
	w.seed2 = c.Add(c.Mult(w.a2, p), c.Mult(w.b2, q))
	return w, nil
}

// randNonZero returns a uniform value in [1, n).
func randNonZero(r io.Reader, n *big.Int) (*big.Int, error) {
	v, err := rand.Int(r, new(big.Int).Sub(n, big.NewInt(1)))
	if err != nil {
		return nil, err
	}
	return v.Add(v, big.NewInt(1)), nil
}

func (w *walk) band(pt curve.Point) int64 {
	if pt.IsIdentity() {
		return 0
	}
	return new(big.Int).Quo(pt.X(), w.width).Int64()
}

func (w *walk) step(cur cursor) cursor {
	switch w.band(cur.x) {
	case 0:
		return cursor{
			x: w.c.Add(cur.x, w.seed1),
			a: w.zn.Add(cur.a, w.a1),
			b: w.zn.Add(cur.b, w.b1),
		}
	case 1:
		return cursor{
			x: w.c.Double(cur.x),
			a: w.zn.Add(cur.a, cur.a),
			b: w.zn.Add(cur.b, cur.b),
		}
	default:
		return cursor{
			x: w.c.Add(cur.x, w.seed2),
			a: w.zn.Add(cur.a, w.a2),
			b: w.zn.Add(cur.b, w.b2),
		}
	}
}

// run advances tortoise and hare until they meet, for at most n rounds. The
// number of rounds taken is returned alongside the result.
func (w *walk) run(p, q curve.Point, maxCandidates int64) (*big.Int, uint64, error) {
	limit := uint64(math.MaxUint64)
	if n := w.zn.Int(); n.IsUint64() {
		limit = n.Uint64()
	}
	start := cursor{x: curve.Identity(), a: new(big.Int), b: new(big.Int)}
	tortoise, hare := start, start
	for rounds := uint64(1); rounds <= limit; rounds++ {
		tortoise = w.step(tortoise)
		hare = w.step(w.step(hare))
		if !tortoise.x.Equal(hare.x) {
			continue
		}
		if tortoise.b.Cmp(hare.b) == 0 {
			return nil, rounds, errors.Wrap(errDegenerateWalk, "collision with equal b coefficients")
		}
		x, err := w.solve(tortoise, hare, p, q, maxCandidates)
		return x, rounds, err
	}
	return nil, limit, errWalkExhausted
}

// solve turns a collision a_t*p + b_t*q = a_h*p + b_h*q into the logarithm of
// q. With d = gcd(b_h - b_t, n) the congruence has d solutions mod n; each is
// checked against q.
func (w *walk) solve(t, h cursor, p, q curve.Point, maxCandidates int64) (*big.Int, error) {
	n := w.zn.Int()
	da := w.zn.Sub(t.a, h.a)
	db := w.zn.Sub(h.b, t.b)

	d, _, _ := modular.ExtendedGCD(db, n)
	if new(big.Int).Mod(da, d).Sign() != 0 {
		return nil, errors.Wrapf(errDegenerateWalk, "gcd %s does not divide %s", d, da)
	}
	if !d.IsInt64() || d.Int64() > maxCandidates {
		return nil, errors.Wrapf(errDegenerateWalk, "%s candidates exceed cap %d", d, maxCandidates)
	}

	step := new(big.Int).Quo(n, d)
	x0 := new(big.Int)
	if step.Cmp(big.NewInt(1)) > 0 {
		inv, err := modular.Inverse(new(big.Int).Quo(db, d), step)
		if err != nil {
			return nil, errors.Wrapf(errDegenerateWalk, "reduced congruence: %v", err)
		}
		x0.Mul(new(big.Int).Quo(da, d), inv)
		x0.Mod(x0, step)
	}

	for k := int64(0); k < d.Int64(); k++ {
		x := new(big.Int).Mul(step, big.NewInt(k))
		x.Add(x, x0)
		if w.c.Mult(x, p).Equal(q) {
			return x, nil
		}
	}
	return nil, errors.Wrapf(errDegenerateWalk, "none of %s candidates verifies", d)
}

// retryWalks calls fn for up to attempts fresh walks. Degenerate and exhausted
// walks are retried; any other error is returned as is. When every attempt
// fails the result is ErrLogNotFound.
func retryWalks(attempts int, fn func(attempt int) error) error {
	var last error
	for i := 0; i < attempts; i++ {
		err := fn(i)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errDegenerateWalk) && !errors.Is(err, errWalkExhausted) {
			return err
		}
		last = err
	}
	return errors.Wrapf(ErrLogNotFound, "%d walks failed, last: %v", attempts, last)
}

// Log finds x in [0, n) with x*p = q. A target outside the order-n subgroup
// is rejected with ErrLogNotFound without walking.
func (s *Rho) Log(c *curve.Curve, p, q curve.Point) (Result, error) {
	if err := checkInputs(c, p, q); err != nil {
		return Result{}, err
	}
	if !c.InSubgroup(q) {
		return Result{}, errors.Wrapf(ErrLogNotFound, "%s is outside the subgroup of order %s", q, c.N())
	}

	var (
		found *big.Int
		total uint64
	)
	err := retryWalks(s.attempts, func(attempt int) error {
		w, err := newWalk(c, p, q, s.rand)
		if err != nil {
			return err
		}
		s.logger.Debug("walk started", zap.Int("attempt", attempt), zap.Stringer("seed1", w.seed1), zap.Stringer("seed2", w.seed2))
		x, rounds, err := w.run(p, q, s.maxCandidates)
		total += rounds
		if err != nil {
			s.logger.Debug("walk failed", zap.Int("attempt", attempt), zap.Uint64("rounds", rounds), zap.Error(err))
			return err
		}
		found = x
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.logger.Debug("logarithm found", zap.Stringer("log", found), zap.Uint64("steps", total))
	return Result{Log: found, Steps: total}, nil
}
