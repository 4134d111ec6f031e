package sky

// Snapshot measures the residual scatter of the whole catalogue set:
// every unordered pair is cross-matched at the given limit and the
// matched separations are summed. A shrinking sum (or a growing count at
// a steady sum) means the beams are pulling together. Purely diagnostic;
// the scheduler never reads these numbers back.
func Snapshot(cats []*Catalogue, limit float64) StepStatistics {
	var s StepStatistics
	for i := 0; i < len(cats); i++ {
		for j := i + 1; j < len(cats); j++ {
			res := CrossMatch(cats[i].Points, cats[j].Points, limit)
			s.SeparationSum += res.SeparationSum
			s.MatchedPairs += res.Count
		}
	}
	return s
}
