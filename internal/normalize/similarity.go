package normalize

// Similarity returns the matching-blocks ratio of two words: twice the total
// length of the longest matching blocks divided by the combined length, in
// runes. Symmetric and case-sensitive. 1.0 means identical, 0.0 disjoint.
func Similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingBlocksLen(ra, rb)) / float64(total)
}

// matchingBlocksLen sums the lengths of the matching blocks found by
// recursively locating the longest common substring and repeating on the
// pieces to its left and right.
func matchingBlocksLen(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	sum := size
	sum += matchingBlocksLen(a[:ai], b[:bi])
	sum += matchingBlocksLen(a[ai+size:], b[bi+size:])
	return sum
}

// longestMatch finds the longest common substring of a and b, returning its
// start offsets and length. Earliest occurrence in a wins ties.
func longestMatch(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// j2len[j] is the length of the common suffix ending at a[i-1], b[j-1].
	j2len := make(map[int]int, len(b))
	for i := range a {
		next := make(map[int]int, len(b))
		for j := range b {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > size {
				ai = i - k + 1
				bi = j - k + 1
				size = k
			}
		}
		j2len = next
	}
	return ai, bi, size
}
