package sky

import (
	"errors"
	"testing"
)

func mkCatalogue(beam int, points []SkyPoint) *Catalogue {
	return &Catalogue{
		Beam:   beam,
		Points: NewPointSet(points),
		Centre: EstimateCentre(points),
	}
}

// threeBeamField builds a small footprint with known overlap structure:
// beams 0 and 1 share ten sources, beams 0 and 2 share two, beams 1 and
// 2 share nothing.
func threeBeamField() []*Catalogue {
	shared01 := grid(10, -30)
	shared02 := grid(2, -50)
	unique2 := grid(3, -70)

	cat0 := mkCatalogue(0, append(append([]SkyPoint{}, shared01...), shared02...))
	cat1 := mkCatalogue(1, shared01)
	cat2 := mkCatalogue(2, append(append([]SkyPoint{}, shared02...), unique2...))
	return []*Catalogue{cat0, cat1, cat2}
}

func TestBuildMatchMatrix(t *testing.T) {
	cats := threeBeamField()
	m := BuildMatchMatrix(cats, 9)

	want := [3][3]float64{
		{0, 10, 2},
		{10, 0, 0},
		{2, 0, 0},
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if got := m.At(i, j); got != want[i][j] {
				t.Errorf("m(%d,%d) = %.0f, want %.0f", i, j, got, want[i][j])
			}
		}
	}
}

func TestSelectSeedPicksBestConnected(t *testing.T) {
	cats := threeBeamField()
	m := BuildMatchMatrix(cats, 9)

	seed, err := SelectSeed(cats, m)
	if err != nil {
		t.Fatalf("SelectSeed: %v", err)
	}
	if seed != 0 {
		t.Errorf("seed = %d, want 0 (12 total matches vs 10 and 2)", seed)
	}

	fixed := 0
	for _, c := range cats {
		if c.Fixed {
			fixed++
		}
	}
	if fixed != 1 || !cats[0].Fixed {
		t.Errorf("expected exactly catalogue 0 fixed, got %d fixed", fixed)
	}
}

func TestSelectSeedTieBreaksToFirst(t *testing.T) {
	points := grid(5, -20)
	cats := []*Catalogue{
		mkCatalogue(0, points),
		mkCatalogue(1, points),
	}
	m := BuildMatchMatrix(cats, 9)

	seed, err := SelectSeed(cats, m)
	if err != nil {
		t.Fatalf("SelectSeed: %v", err)
	}
	if seed != 0 {
		t.Errorf("tied seed = %d, want 0", seed)
	}
}

func TestSelectSeedRejectsPreFixed(t *testing.T) {
	cats := threeBeamField()
	cats[1].Fixed = true
	m := BuildMatchMatrix(cats, 9)

	if _, err := SelectSeed(cats, m); !errors.Is(err, ErrFixedState) {
		t.Errorf("err = %v, want ErrFixedState", err)
	}
}

func TestSelectSeedRejectsEmpty(t *testing.T) {
	if _, err := SelectSeed(nil, nil); !errors.Is(err, ErrNoCatalogues) {
		t.Errorf("err = %v, want ErrNoCatalogues", err)
	}
}

func TestSelectSeedRejectsDimensionMismatch(t *testing.T) {
	cats := threeBeamField()
	m := BuildMatchMatrix(cats[:2], 9)
	if _, err := SelectSeed(cats, m); err == nil {
		t.Error("expected error for 2x2 matrix over 3 catalogues")
	}
}
