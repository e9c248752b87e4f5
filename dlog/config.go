package dlog

import (
	"crypto/rand"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Config carries the tunables shared by the solvers.
type Config struct {
	// Attempts is the number of independent random walks Rho tries.
	Attempts int

	// MaxCandidates bounds the candidate logarithms Rho verifies at a
	// collision when gcd(b2-b1, n) > 1.
	MaxCandidates int64

	// MaxTableMemory caps the BSGS baby-step table, e.g. "512MB" or
	// "2GiB". Empty means no cap.
	MaxTableMemory string

	// Rand is the randomness for Rho's walks. It must be safe for
	// concurrent use when the solver is shared by LogAll.
	Rand io.Reader

	Logger *zap.Logger
}

func DefaultConfig() Config {
	return Config{
		Attempts:       3,
		MaxCandidates:  1 << 16,
		MaxTableMemory: "1GB",
		Rand:           rand.Reader,
		Logger:         zap.NewNop(),
	}
}

// Validate fills unset optional fields with defaults and rejects values that
// cannot work. It returns the normalised config and the table cap in bytes
// (0 when uncapped).
func (cfg Config) Validate() (Config, uint64, error) {
	if cfg.Attempts <= 0 {
		return Config{}, 0, errors.Wrapf(ErrBadConfig, "attempts must be positive, got %d", cfg.Attempts)
	}
	if cfg.MaxCandidates <= 0 {
		return Config{}, 0, errors.Wrapf(ErrBadConfig, "max candidates must be positive, got %d", cfg.MaxCandidates)
	}
	var maxTable uint64
	if s := strings.TrimSpace(cfg.MaxTableMemory); s != "" {
		b, err := humanize.ParseBytes(s)
		if err != nil {
			return Config{}, 0, errors.Wrapf(ErrBadConfig, "max table memory %q: %v", cfg.MaxTableMemory, err)
		}
		maxTable = b
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg, maxTable, nil
}
