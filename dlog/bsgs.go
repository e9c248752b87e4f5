package dlog

import (
	"math/big"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"ecdlog/curve"
)

// use at most 80% of the configured cap for the table
const safety80 = 8.0 / 10.0

// approximate per-entry overhead of the baby-step map besides the key bytes
const tableEntryOverhead = 72

// BSGS is the baby-step giant-step solver.
type BSGS struct {
	maxTable uint64
	logger   *zap.Logger
}

func NewBSGS(cfg Config) (*BSGS, error) {
	cfg, maxTable, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	return &BSGS{maxTable: maxTable, logger: cfg.Logger.Named("dlog").Named("bsgs")}, nil
}

// ceilSqrt returns ceil(sqrt(n)) for n >= 0.
func ceilSqrt(n *big.Int) *big.Int {
	m := new(big.Int).Sqrt(n)
	if new(big.Int).Mul(m, m).Cmp(n) < 0 {
		m.Add(m, big.NewInt(1))
	}
	return m
}

func (s *BSGS) checkTable(c *curve.Curve, m *big.Int) error {
	if !m.IsInt64() {
		return errors.Wrapf(ErrTableTooLarge, "%s entries", m)
	}
	if s.maxTable == 0 {
		return nil
	}
	// two coordinates below p in decimal plus a separator
	entry := uint64(2*len(c.P().String())+1) + tableEntryOverhead
	need := float64(entry) * float64(m.Int64())
	if need > float64(s.maxTable)*safety80 {
		return errors.Wrapf(ErrTableTooLarge, "%s entries need ~%.0f bytes, cap %d", m, need, s.maxTable)
	}
	return nil
}

// Log finds y in [0, n) with y*p = q.
//
// With m = ceil(sqrt(n)) it stores the baby steps a*p for a in [0, m) and
// walks the giant steps q - b*m*p for b in [0, m) until one of them is in the
// table; the answer is then a + m*b and Steps is m + b. Failing that, q is
// not a multiple of p and ErrLogNotFound is returned.
func (s *BSGS) Log(c *curve.Curve, p, q curve.Point) (Result, error) {
	if err := checkInputs(c, p, q); err != nil {
		return Result{}, err
	}
	m := ceilSqrt(c.N())
	if err := s.checkTable(c, m); err != nil {
		return Result{}, err
	}
	mm := m.Int64()
	s.logger.Debug("building baby-step table", zap.Int64("entries", mm), zap.Stringer("n", c.N()))

	table := make(map[string]int64, mm)
	r := curve.Identity()
	for a := int64(0); a < mm; a++ {
		// keep the smallest a when p has order below m
		if _, ok := table[r.Key()]; !ok {
			table[r.Key()] = a
		}
		r = c.Add(r, p)
	}

	stride := c.Mult(m, c.Neg(p))
	r = q
	for b := int64(0); b < mm; b++ {
		if a, ok := table[r.Key()]; ok {
			y := new(big.Int).Mul(m, big.NewInt(b))
			y.Add(y, big.NewInt(a))
			steps := uint64(mm) + uint64(b)
			s.logger.Debug("logarithm found", zap.Stringer("log", y), zap.Uint64("steps", steps))
			return Result{Log: y, Steps: steps}, nil
		}
		r = c.Add(r, stride)
	}
	s.logger.Debug("giant steps exhausted", zap.Int64("m", mm))
	return Result{}, errors.Wrapf(ErrLogNotFound, "%s is not a multiple of %s", q, p)
}
