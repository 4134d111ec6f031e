package sky

import (
	"math"
	"testing"
)

// grid returns n points spaced a degree apart in RA, far beyond any
// sensible match radius, so matches only occur where tests place them.
func grid(n int, dec float64) []SkyPoint {
	points := make([]SkyPoint, n)
	for i := range points {
		points[i] = SkyPoint{RA: 10 + float64(i), Dec: dec}
	}
	return points
}

func TestCrossMatchIdenticalSets(t *testing.T) {
	points := grid(8, -35)
	a := NewPointSet(points)
	b := NewPointSet(points)

	res := CrossMatch(a, b, 9)
	if res.Count != 8 {
		t.Fatalf("Count = %d, want 8", res.Count)
	}
	if !res.Usable() {
		t.Fatal("identical sets should be usable")
	}
	if !almostEqual(res.MeanRA, 0, epsilon) || !almostEqual(res.MeanDec, 0, epsilon) {
		t.Errorf("mean offset = (%.6f, %.6f), want (0, 0)", res.MeanRA, res.MeanDec)
	}
	if !almostEqual(res.StdRA, 0, epsilon) || !almostEqual(res.StdDec, 0, epsilon) {
		t.Errorf("std = (%.6f, %.6f), want (0, 0)", res.StdRA, res.StdDec)
	}
	if !almostEqual(res.SeparationSum, 0, 1e-6) {
		t.Errorf("SeparationSum = %.6f, want 0", res.SeparationSum)
	}
}

func TestCrossMatchNoMatches(t *testing.T) {
	a := NewPointSet([]SkyPoint{{RA: 10, Dec: 10}})
	b := NewPointSet([]SkyPoint{{RA: 190, Dec: -10}})

	res := CrossMatch(a, b, 9)
	if res.Count != 0 {
		t.Fatalf("Count = %d, want 0", res.Count)
	}
	if res.Usable() {
		t.Error("empty result should not be usable")
	}
	for name, v := range map[string]float64{
		"MeanRA": res.MeanRA, "MeanDec": res.MeanDec,
		"StdRA": res.StdRA, "StdDec": res.StdDec,
	} {
		if !math.IsNaN(v) {
			t.Errorf("%s = %.6f, want NaN", name, v)
		}
	}
}

func TestCrossMatchMeasuresOffset(t *testing.T) {
	points := grid(6, -40)
	a := NewPointSet(points)
	// Displace b by +4 arcsec in declination
	displaced := make([]SkyPoint, len(points))
	for i, p := range points {
		displaced[i] = SkyPoint{RA: p.RA, Dec: p.Dec + 4.0/arcsecPerDeg}
	}
	b := NewPointSet(displaced)

	res := CrossMatch(a, b, 9)
	if res.Count != 6 {
		t.Fatalf("Count = %d, want 6", res.Count)
	}
	if !almostEqual(res.MeanDec, 4.0, 1e-6) {
		t.Errorf("MeanDec = %.6f arcsec, want 4", res.MeanDec)
	}
	if !almostEqual(res.MeanRA, 0, 1e-6) {
		t.Errorf("MeanRA = %.6f arcsec, want 0", res.MeanRA)
	}
	if !almostEqual(res.SeparationSum, 24.0, 1e-4) {
		t.Errorf("SeparationSum = %.6f arcsec, want 24", res.SeparationSum)
	}

	// Shifting b by the measured offset must collapse the residual
	aligned := b.Shift(res.MeanOffset())
	res2 := CrossMatch(a, aligned, 9)
	if res2.Count != 6 {
		t.Fatalf("post-shift Count = %d, want 6", res2.Count)
	}
	if res2.SeparationSum > 1e-3 {
		t.Errorf("post-shift SeparationSum = %.6f arcsec, want ~0", res2.SeparationSum)
	}
}

func TestCrossMatchIsRadiusJoin(t *testing.T) {
	a := NewPointSet([]SkyPoint{{RA: 50, Dec: 0}})
	b := NewPointSet([]SkyPoint{
		{RA: 50 + 2.0/arcsecPerDeg, Dec: 0},
		{RA: 50, Dec: 3.0 / arcsecPerDeg},
		{RA: 50 + 0.1, Dec: 0}, // far outside the radius
	})

	res := CrossMatch(a, b, 9)
	// One source in a pairs with both nearby sources in b
	if res.Count != 2 {
		t.Fatalf("Count = %d, want 2", res.Count)
	}
	for _, pair := range res.Pairs {
		if pair[0] != 0 {
			t.Errorf("pair %v references unexpected index in a", pair)
		}
	}
}

func TestCrossMatchCountSymmetric(t *testing.T) {
	a := NewPointSet([]SkyPoint{
		{RA: 80, Dec: 5},
		{RA: 80 + 1.5/arcsecPerDeg, Dec: 5},
		{RA: 81, Dec: 5},
	})
	b := NewPointSet([]SkyPoint{
		{RA: 80 + 0.5/arcsecPerDeg, Dec: 5},
		{RA: 81, Dec: 5 + 2.0/arcsecPerDeg},
	})

	ab := CrossMatch(a, b, 9)
	ba := CrossMatch(b, a, 9)
	if ab.Count != ba.Count {
		t.Errorf("count not symmetric: %d vs %d", ab.Count, ba.Count)
	}
	// Offsets flip sign under argument swap
	if !almostEqual(ab.MeanRA, -ba.MeanRA, 1e-9) || !almostEqual(ab.MeanDec, -ba.MeanDec, 1e-9) {
		t.Errorf("means not antisymmetric: (%.6f,%.6f) vs (%.6f,%.6f)",
			ab.MeanRA, ab.MeanDec, ba.MeanRA, ba.MeanDec)
	}
}

func TestCrossMatchSinglePairHasZeroStd(t *testing.T) {
	a := NewPointSet([]SkyPoint{{RA: 30, Dec: -20}})
	b := NewPointSet([]SkyPoint{{RA: 30, Dec: -20 + 1.0/arcsecPerDeg}})

	res := CrossMatch(a, b, 9)
	if res.Count != 1 {
		t.Fatalf("Count = %d, want 1", res.Count)
	}
	if res.StdRA != 0 || res.StdDec != 0 {
		t.Errorf("single-pair std = (%.6f, %.6f), want (0, 0)", res.StdRA, res.StdDec)
	}
}

func BenchmarkCrossMatch(b *testing.B) {
	points := make([]SkyPoint, 300)
	for i := range points {
		points[i] = SkyPoint{
			RA:  150 + float64(i%20)*0.02,
			Dec: -30 + float64(i/20)*0.02,
		}
	}
	a := NewPointSet(points)
	shifted := NewPointSet(points).Shift(Offset{RA: 2, Dec: 2})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CrossMatch(a, shifted, 9)
	}
}
