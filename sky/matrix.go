package sky

import "gonum.org/v1/gonum/mat"

// BuildMatchMatrix cross-matches every unordered catalogue pair and
// returns the K x K symmetric matrix of match counts. The diagonal stays
// zero; a catalogue is never matched against itself. Runs one CrossMatch
// per pair, so cost grows quadratically with the number of beams.
func BuildMatchMatrix(cats []*Catalogue, limit float64) *mat.SymDense {
	k := len(cats)
	m := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			res := CrossMatch(cats[i].Points, cats[j].Points, limit)
			m.SetSym(i, j, float64(res.Count))
		}
	}
	return m
}
