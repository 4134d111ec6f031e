package sky

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"
)

var (
	// ErrNoCatalogues means the scheduler was given an empty catalogue set.
	ErrNoCatalogues = errors.New("no catalogues to align")
	// ErrSeparationLimit means the configured match radius is not positive.
	ErrSeparationLimit = errors.New("separation limit must be positive")
	// ErrFixedState means the fixed/floating bookkeeping was corrupted.
	ErrFixedState = errors.New("fixed-state invariant violated")
)

// Scheduler drives the greedy incremental alignment. Starting from a seed
// catalogue it repeatedly picks the (fixed, floating) pair with the most
// cross-matches, shifts the floating catalogue by the pair's mean offset
// and fixes it, growing the shared reference frame one beam per step.
//
// When every catalogue is fixed before the step budget runs out, the
// frontier is exhausted: all catalogues are released and a fresh seed is
// drawn at random, so later passes re-align each beam against the
// already-corrected ensemble.
type Scheduler struct {
	cats  []*Catalogue
	cfg   AlignConfig
	stats []StepStatistics
}

// NewScheduler validates the configuration and prepares a run.
// Passes below one are treated as a single pass.
func NewScheduler(cats []*Catalogue, cfg AlignConfig) (*Scheduler, error) {
	if len(cats) == 0 {
		return nil, ErrNoCatalogues
	}
	if cfg.SeparationLimit <= 0 {
		return nil, fmt.Errorf("%w: got %.3f arcsec", ErrSeparationLimit, cfg.SeparationLimit)
	}
	if cfg.Passes < 1 {
		cfg.Passes = 1
	}
	if cfg.RNG == nil {
		cfg.RNG = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scheduler{cats: cats, cfg: cfg}, nil
}

// Catalogues returns the catalogue set being aligned. The scheduler
// mutates these in place during Run.
func (s *Scheduler) Catalogues() []*Catalogue {
	return s.cats
}

// Statistics returns the convergence samples gathered so far.
func (s *Scheduler) Statistics() []StepStatistics {
	return s.stats
}

// Run executes exactly len(catalogues) * passes steps and returns the
// convergence series (empty when statistics gathering is disabled).
// Steps spent reseeding count against the budget like any other.
func (s *Scheduler) Run() ([]StepStatistics, error) {
	m := BuildMatchMatrix(s.cats, s.cfg.SeparationLimit)
	seed, err := SelectSeed(s.cats, m)
	if err != nil {
		return nil, err
	}
	log.Printf("[ALIGN] seeded on beam %02d (%d catalogues, limit %.1f\")",
		s.cats[seed].Beam, len(s.cats), s.cfg.SeparationLimit)

	steps := len(s.cats) * s.cfg.Passes
	for step := 0; step < steps; step++ {
		fi, ci, res, ok := s.bestPair()
		if !ok {
			idx := s.reseed()
			log.Printf("[ALIGN] step %d/%d: frontier exhausted, reseeded on beam %02d",
				step+1, steps, s.cats[idx].Beam)
		} else {
			// A pair with zero matches still consumes the step: the
			// catalogue is fixed unshifted rather than poisoned with NaN.
			var off Offset
			if res.Usable() {
				off = res.MeanOffset()
			}
			c := s.cats[ci]
			c.Points = c.Points.Shift(off)
			c.Offset = c.Offset.Add(off)
			c.Fixed = true
			log.Printf("[ALIGN] step %d/%d: beam %02d -> beam %02d (%d matches, offset %+.2f\",%+.2f\")",
				step+1, steps, s.cats[ci].Beam, s.cats[fi].Beam, res.Count, off.RA, off.Dec)
		}

		if s.cfg.GatherStatistics {
			snap := Snapshot(s.cats, s.cfg.SeparationLimit)
			snap.Step = step
			s.stats = append(s.stats, snap)
		}
	}

	return s.stats, nil
}

// bestPair scans every fixed x floating combination in slice order and
// returns the pair with the highest match count; earlier pairs win ties.
// ok is false only when no floating catalogue remains.
func (s *Scheduler) bestPair() (fixedIdx, floatIdx int, best MatchResult, ok bool) {
	bestCount := -1
	for fi, f := range s.cats {
		if !f.Fixed {
			continue
		}
		for ci, c := range s.cats {
			if c.Fixed {
				continue
			}
			res := CrossMatch(f.Points, c.Points, s.cfg.SeparationLimit)
			if res.Count > bestCount {
				bestCount = res.Count
				fixedIdx = fi
				floatIdx = ci
				best = res
				ok = true
			}
		}
	}
	return
}

// reseed releases every catalogue and fixes one chosen uniformly at
// random, returning its index. Accumulated offsets are kept; only the
// fixed flags reset.
func (s *Scheduler) reseed() int {
	for _, c := range s.cats {
		c.Fixed = false
	}
	idx := s.cfg.RNG.Intn(len(s.cats))
	s.cats[idx].Fixed = true
	return idx
}
