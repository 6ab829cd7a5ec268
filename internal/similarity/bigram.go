package similarity

// bigramCounts returns the multiset of character bigrams in s, keyed by
// the two-rune pair.
func bigramCounts(s string) map[[2]rune]int {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	counts := make(map[[2]rune]int, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		counts[[2]rune{runes[i], runes[i+1]}]++
	}
	return counts
}

// DiceCoefficient computes the Sørensen–Dice coefficient over character
// bigram multisets of two normalized strings. The measure is symmetric,
// bounded to [0,1], and equals 1 only for identical input.
func DiceCoefficient(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	return diceFromCounts(bigramCounts(a), bigramCounts(b))
}

// diceFromCounts is the shared metric core. The engine's scoring path
// reuses a precomputed multiset for the candidate side.
func diceFromCounts(aCounts, bCounts map[[2]rune]int) float64 {
	if len(aCounts) == 0 || len(bCounts) == 0 {
		return 0
	}

	var intersection, aTotal, bTotal int
	for bg, n := range aCounts {
		aTotal += n
		if m, ok := bCounts[bg]; ok {
			if m < n {
				intersection += m
			} else {
				intersection += n
			}
		}
	}
	for _, n := range bCounts {
		bTotal += n
	}

	return 2 * float64(intersection) / float64(aTotal+bTotal)
}
