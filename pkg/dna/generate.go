package dna

import (
	"context"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/observability"
)

const (
	// minAttempts is the floor of the derived attempt ceiling.
	minAttempts = 1000

	// attemptsPerVector scales the derived attempt ceiling with the set size.
	attemptsPerVector = 100

	// cancelCheckEvery is how many draws happen between context checks.
	cancelCheckEvery = 1024
)

// Options configures a [Generator].
type Options struct {
	// Seed makes generation reproducible. Zero seeds from the clock.
	Seed uint64

	// MaxAttempts bounds the number of draws [Generator.Set] may make.
	// Zero derives a ceiling of max(1000, 100*n).
	MaxAttempts int

	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger
}

// Generator draws random DNA vectors from a [Bank].
// A Generator is not safe for concurrent use.
type Generator struct {
	bank        Bank
	rng         *rand.Rand
	maxAttempts int
	logger      *log.Logger
}

// NewGenerator returns a generator for bank. It fails if the bank cannot
// produce valid DNA (see [Bank.Check]).
func NewGenerator(bank Bank, opts Options) (*Generator, error) {
	if err := bank.Check(); err != nil {
		return nil, err
	}
	if opts.MaxAttempts < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "max_attempts must not be negative (got %d)", opts.MaxAttempts)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Generator{
		bank:        bank,
		rng:         rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
		maxAttempts: opts.MaxAttempts,
		logger:      logger,
	}, nil
}

// Bank returns the slot sizes g draws from.
func (g *Generator) Bank() Bank { return g.bank }

// One draws a single vector: an independent uniform value per slot, then
// the EyeLid value copied onto Eye.
func (g *Generator) One() DNA {
	var d DNA
	for _, s := range Slots() {
		d[s] = g.rng.IntN(g.bank[s])
	}
	d[Eye] = d[EyeLid]
	return d
}

// Set draws vectors until it has n distinct ones and returns them in the
// order they were first drawn.
//
// Set fails with an EXHAUSTED error without drawing anything when n exceeds
// [Bank.Capacity], and after the attempt ceiling when the space is merely
// crowded. It also stops when ctx is cancelled.
func (g *Generator) Set(ctx context.Context, n int) (Set, error) {
	start := time.Now()
	observability.Generation().OnGenerateStart(ctx, n)

	set, attempts, err := g.fill(ctx, n)
	observability.Generation().OnGenerateComplete(ctx, n, attempts, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("generated dna set", "size", n, "attempts", attempts, "capacity", g.bank.Capacity())
	return set, nil
}

func (g *Generator) fill(ctx context.Context, n int) (Set, int, error) {
	if n < 0 {
		return nil, 0, errors.New(errors.ErrCodeInvalidInput, "set size must not be negative (got %d)", n)
	}
	if capacity := g.bank.Capacity(); uint64(n) > capacity {
		return nil, 0, errors.New(errors.ErrCodeExhausted,
			"requested %d unique vectors but the slot sizes only allow %d", n, capacity)
	}

	limit := g.maxAttempts
	if limit == 0 {
		limit = max(minAttempts, attemptsPerVector*n)
	}

	seen := make(map[DNA]struct{}, n)
	set := make(Set, 0, n)
	attempts := 0
	for len(set) < n {
		if attempts >= limit {
			return nil, attempts, errors.New(errors.ErrCodeExhausted,
				"found %d of %d unique vectors after %d attempts", len(set), n, attempts)
		}
		if attempts%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, attempts, err
			}
		}
		attempts++

		d := g.One()
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		set = append(set, d)
	}
	return set, attempts, nil
}
