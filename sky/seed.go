package sky

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SelectSeed picks the catalogue that anchors the shared reference frame:
// the one with the largest combined row and column sum in the match
// matrix, i.e. the beam with the most matches against everyone else.
// Ties go to the lowest index so the choice is deterministic.
//
// All catalogues must be floating on entry; the chosen one is marked
// fixed before returning.
func SelectSeed(cats []*Catalogue, m *mat.SymDense) (int, error) {
	if len(cats) == 0 {
		return -1, ErrNoCatalogues
	}
	if m.SymmetricDim() != len(cats) {
		return -1, fmt.Errorf("match matrix is %dx%d for %d catalogues",
			m.SymmetricDim(), m.SymmetricDim(), len(cats))
	}
	for i, c := range cats {
		if c.Fixed {
			return -1, fmt.Errorf("%w: catalogue %d already fixed before seeding", ErrFixedState, i)
		}
	}

	best := 0
	bestSum := -1.0
	row := make([]float64, len(cats))
	for i := range cats {
		mat.Row(row, i, m)
		// Row and column sums are equal for a symmetric matrix, so the
		// combined connectivity is just twice the row sum.
		sum := 2 * floats.Sum(row)
		if sum > bestSum {
			bestSum = sum
			best = i
		}
	}

	cats[best].Fixed = true
	return best, nil
}
