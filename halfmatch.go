package dmp

// DiffHalfMatch checks whether the two texts share a substring which is at
// least half the length of the longer text. Returns the prefix and suffix of
// each text around the shared middle, or nil when no such substring exists.
// This speedup can produce non-minimal diffs.
func (c *Config) DiffHalfMatch(text1, text2 string) []string {
	hm := c.diffHalfMatch([]rune(text1), []rune(text2))
	if hm == nil {
		return nil
	}
	result := make([]string, len(hm))
	for i, r := range hm {
		result[i] = string(r)
	}
	return result
}

func (c *Config) diffHalfMatch(text1, text2 []rune) [][]rune {
	if c.DiffTimeout <= 0 {
		// Don't risk returning a non-optimal diff if we have unlimited time.
		return nil
	}
	long, short := text1, text2
	if len(text1) <= len(text2) {
		long, short = text2, text1
	}
	if len(short) < 4 || len(short)*2 < len(long) {
		return nil // Pointless.
	}
	// First check if the second quarter is the seed for a half-match, then
	// again based on the third quarter.
	hm1 := c.diffHalfMatchI(long, short, (len(long)+3)/4)
	hm2 := c.diffHalfMatchI(long, short, (len(long)+1)/2)
	var hm [][]rune
	switch {
	case hm1 == nil && hm2 == nil:
		return nil
	case hm2 == nil:
		hm = hm1
	case hm1 == nil:
		hm = hm2
	case len(hm1[4]) > len(hm2[4]):
		// Both matched: select the longest.
		hm = hm1
	default:
		hm = hm2
	}
	if len(text1) > len(text2) {
		return hm
	}
	return [][]rune{hm[2], hm[3], hm[0], hm[1], hm[4]}
}

// diffHalfMatchI looks for a substring of short within long, seeded at
// long[i:], that is at least half the length of long. Returns the prefix and
// suffix of long, the prefix and suffix of short, and the common middle, or
// nil when no long-enough match exists.
func (c *Config) diffHalfMatchI(long, short []rune, i int) [][]rune {
	// Start with a 1/4 length substring at position i as a seed.
	seed := long[i : i+len(long)/4]
	var bestCommonA, bestCommonB []rune
	var bestLongA, bestLongB, bestShortA, bestShortB []rune
	for j := runesIndexOf(short, seed, 0); j != -1; j = runesIndexOf(short, seed, j+1) {
		prefixLength := commonPrefixLength(long[i:], short[j:])
		suffixLength := commonSuffixLength(long[:i], short[:j])
		if len(bestCommonA)+len(bestCommonB) < suffixLength+prefixLength {
			bestCommonA = short[j-suffixLength : j]
			bestCommonB = short[j : j+prefixLength]
			bestLongA = long[:i-suffixLength]
			bestLongB = long[i+prefixLength:]
			bestShortA = short[:j-suffixLength]
			bestShortB = short[j+prefixLength:]
		}
	}
	if (len(bestCommonA)+len(bestCommonB))*2 < len(long) {
		return nil
	}
	return [][]rune{
		bestLongA,
		bestLongB,
		bestShortA,
		bestShortB,
		append(append([]rune{}, bestCommonA...), bestCommonB...),
	}
}
