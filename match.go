package dmp

import (
	"math"
)

// Match locates the best instance of pattern in text near loc, or -1 when no
// match beats MatchThreshold. Identical text and pattern match at 0, an
// empty pattern matches at loc clamped to the text, and anything else runs
// the fuzzy search.
func (c *Config) Match(text, pattern string, loc int) int {
	loc = max(0, min(loc, len(text)))
	switch {
	case text == pattern:
		// Shortcut (potentially not guaranteed by the algorithm).
		return 0
	case len(text) == 0:
		// Nothing to match.
		return -1
	case loc+len(pattern) <= len(text) && text[loc:loc+len(pattern)] == pattern:
		// Perfect match at the perfect spot! (Includes case of empty
		// pattern.)
		return loc
	}
	// Do a fuzzy compare.
	return c.MatchBitap(text, pattern, loc)
}

// MatchBitap locates the best instance of pattern in text near loc using the
// Bitap algorithm. Returns -1 if no match was found.
func (c *Config) MatchBitap(text, pattern string, loc int) int {
	// Initialise the alphabet.
	s := c.MatchAlphabet(pattern)
	// Highest score beyond which we give up.
	scoreThreshold := c.MatchThreshold
	// Is there a nearby exact match? (speedup)
	bestLoc := indexOf(text, pattern, loc)
	if bestLoc != -1 {
		scoreThreshold = math.Min(c.matchBitapScore(0, bestLoc, loc, pattern), scoreThreshold)
		// What about in the other direction? (speedup)
		bestLoc = lastIndexOf(text, pattern, loc+len(pattern))
		if bestLoc != -1 {
			scoreThreshold = math.Min(c.matchBitapScore(0, bestLoc, loc, pattern), scoreThreshold)
		}
	}
	// Initialise the bit arrays.
	matchMask := 1 << uint(len(pattern)-1)
	bestLoc = -1
	binMax := len(pattern) + len(text)
	var lastRd []int
	for d := 0; d < len(pattern); d++ {
		// Scan for the best match; each iteration allows for one more
		// error. Run a binary search to determine how far from loc we can
		// stray at this error level.
		binMin, binMid := 0, binMax
		for binMin < binMid {
			if c.matchBitapScore(d, loc+binMid, loc, pattern) <= scoreThreshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		// Use the result from this iteration as the maximum for the next.
		binMax = binMid
		start := max(1, loc-binMid+1)
		finish := min(loc+binMid, len(text)) + len(pattern)
		rd := make([]int, finish+2)
		rd[finish+1] = (1 << uint(d)) - 1
		for j := finish; j >= start; j-- {
			var charMatch int
			if j-1 < len(text) {
				charMatch = s[text[j-1]]
			}
			if d == 0 {
				// First pass: exact match.
				rd[j] = ((rd[j+1] << 1) | 1) & charMatch
			} else {
				// Subsequent passes: fuzzy match.
				rd[j] = ((rd[j+1]<<1)|1)&charMatch | (((lastRd[j+1] | lastRd[j]) << 1) | 1) | lastRd[j+1]
			}
			if rd[j]&matchMask != 0 {
				score := c.matchBitapScore(d, j-1, loc, pattern)
				// This match will almost certainly be better than any
				// existing match, but check anyway.
				if score <= scoreThreshold {
					// Told you so.
					scoreThreshold = score
					bestLoc = j - 1
					if bestLoc <= loc {
						// Already passed loc, downhill from here on in.
						break
					}
					// When passing loc, don't exceed our current distance
					// from loc.
					start = max(1, 2*loc-bestLoc)
				}
			}
		}
		if c.matchBitapScore(d+1, loc, loc, pattern) > scoreThreshold {
			// No hope for a (better) match at greater error levels.
			break
		}
		lastRd = rd
	}
	return bestLoc
}

// matchBitapScore computes the score for a match starting at x with e errors
// against a pattern expected at loc. Lower is better; 0.0 is a perfect
// match in the perfect spot.
func (c *Config) matchBitapScore(e, x, loc int, pattern string) float64 {
	accuracy := float64(e) / float64(len(pattern))
	proximity := math.Abs(float64(loc - x))
	if c.MatchDistance == 0 {
		// Dodge divide by zero error.
		if proximity == 0 {
			return accuracy
		}
		return 1.0
	}
	return accuracy + proximity/float64(c.MatchDistance)
}

// MatchAlphabet builds the per-character bitmasks for the Bitap algorithm:
// bit (len-i-1) is set in the mask of the character at position i, with
// duplicate characters OR-ing their positions together.
func (c *Config) MatchAlphabet(pattern string) map[byte]int {
	s := map[byte]int{}
	for i := 0; i < len(pattern); i++ {
		s[pattern[i]] |= 1 << uint(len(pattern)-i-1)
	}
	return s
}
