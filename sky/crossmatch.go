package sky

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CrossMatch finds every pair of sources from a and b whose great-circle
// separation is at most limit arcseconds. This is a radius join, not a
// nearest-neighbour assignment: a dense clump on one side can pair with a
// single source on the other and every combination is counted.
//
// The reported offsets are b minus a, so shifting b by the inverse of
// MeanOffset moves it onto a.
func CrossMatch(a, b *PointSet, limit float64) MatchResult {
	var res MatchResult

	dRA := make([]float64, 0, 64)
	dDec := make([]float64, 0, 64)

	for i, pa := range a.Points() {
		for j, pb := range b.Points() {
			// Cheap declination gate before the haversine
			if math.Abs(pb.Dec-pa.Dec)*arcsecPerDeg > limit {
				continue
			}
			sep := Separation(pa, pb)
			if sep > limit {
				continue
			}
			off := PairOffset(pa, pb)
			res.Pairs = append(res.Pairs, [2]int{i, j})
			res.SeparationSum += sep
			dRA = append(dRA, off.RA)
			dDec = append(dDec, off.Dec)
		}
	}

	res.Count = len(res.Pairs)
	if res.Count == 0 {
		res.MeanRA = math.NaN()
		res.MeanDec = math.NaN()
		res.StdRA = math.NaN()
		res.StdDec = math.NaN()
		return res
	}

	res.MeanRA = stat.Mean(dRA, nil)
	res.MeanDec = stat.Mean(dDec, nil)
	// Population std dev: a single matched pair scatters zero, not NaN
	res.StdRA = stat.PopStdDev(dRA, nil)
	res.StdDec = stat.PopStdDev(dDec, nil)
	return res
}
