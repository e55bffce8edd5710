package dmp

import (
	"strconv"
	"strings"
	"time"
)

// Diff finds the differences between two texts. When checklines is true and
// the texts are large, a faster line-level diff runs first to carve the
// problem into smaller pieces.
//
// If an invalid UTF-8 sequence is encountered, it will be replaced by the
// Unicode replacement character.
func (c *Config) Diff(text1, text2 string, checklines bool) []Diff {
	return c.DiffRunes([]rune(text1), []rune(text2), checklines)
}

// DiffRunes finds the differences between two rune sequences.
func (c *Config) DiffRunes(text1, text2 []rune, checklines bool) []Diff {
	var deadline time.Time
	if c.DiffTimeout > 0 {
		deadline = time.Now().Add(c.DiffTimeout)
	}
	return c.diffRunes(text1, text2, checklines, deadline)
}

func (c *Config) diffRunes(text1, text2 []rune, checklines bool, deadline time.Time) []Diff {
	// Check for equality (speedup).
	if runesEqual(text1, text2) {
		if len(text1) == 0 {
			return nil
		}
		return []Diff{{OpEqual, string(text1)}}
	}
	// Trim off common prefix (speedup).
	n := commonPrefixLength(text1, text2)
	prefix := text1[:n]
	text1, text2 = text1[n:], text2[n:]
	// Trim off common suffix (speedup).
	n = commonSuffixLength(text1, text2)
	suffix := text1[len(text1)-n:]
	text1, text2 = text1[:len(text1)-n], text2[:len(text2)-n]
	// Compute the diff on the middle block.
	diffs := c.diffCompute(text1, text2, checklines, deadline)
	// Restore the prefix and suffix.
	if len(prefix) != 0 {
		diffs = append([]Diff{{OpEqual, string(prefix)}}, diffs...)
	}
	if len(suffix) != 0 {
		diffs = append(diffs, Diff{OpEqual, string(suffix)})
	}
	return c.DiffCleanupMerge(diffs)
}

// diffCompute finds the differences between two rune slices, assuming they
// share no common prefix or suffix.
func (c *Config) diffCompute(text1, text2 []rune, checklines bool, deadline time.Time) []Diff {
	switch {
	case len(text1) == 0:
		// Just add some text (speedup).
		return []Diff{{OpInsert, string(text2)}}
	case len(text2) == 0:
		// Just delete some text (speedup).
		return []Diff{{OpDelete, string(text1)}}
	}
	long, short := text1, text2
	op := OpDelete
	if len(text1) <= len(text2) {
		long, short = text2, text1
		op = OpInsert
	}
	if i := runesIndex(long, short); i != -1 {
		// Shorter text is inside the longer text (speedup).
		return []Diff{
			{op, string(long[:i])},
			{OpEqual, string(short)},
			{op, string(long[i+len(short):])},
		}
	}
	if len(short) == 1 {
		// Single character string; after the previous speedup the character
		// can't be an equality.
		return []Diff{
			{OpDelete, string(text1)},
			{OpInsert, string(text2)},
		}
	}
	// Check to see if the problem can be split in two.
	if hm := c.diffHalfMatch(text1, text2); hm != nil {
		// Send both halves off for separate processing.
		diffs := c.diffRunes(hm[0], hm[2], checklines, deadline)
		diffs = append(diffs, Diff{OpEqual, string(hm[4])})
		return append(diffs, c.diffRunes(hm[1], hm[3], checklines, deadline)...)
	}
	if checklines && len(text1) > 100 && len(text2) > 100 {
		return c.diffLineMode(text1, text2, deadline)
	}
	if diffs := c.diffMap(text1, text2, deadline); diffs != nil {
		return diffs
	}
	// Mapping timed out or found no commonality at all; emit the trivial
	// diff instead.
	return []Diff{
		{OpDelete, string(text1)},
		{OpInsert, string(text2)},
	}
}

// diffLineMode does a quick line-level diff first, then re-diffs the changed
// regions character by character for accuracy. This speedup can produce
// non-minimal diffs.
func (c *Config) diffLineMode(text1, text2 []rune, deadline time.Time) []Diff {
	// Scan the text on a line-by-line basis first.
	text1, text2, lines := c.DiffLinesToRunes(string(text1), string(text2))
	diffs := c.diffRunes(text1, text2, false, deadline)
	// Convert the diff back to original text.
	diffs = c.DiffCharsToLines(diffs, lines)
	// Eliminate freak matches (e.g. blank lines).
	diffs = c.DiffCleanupSemantic(diffs)
	// Rediff any replacement blocks, this time character-by-character.
	// Add a dummy entry at the end.
	diffs = append(diffs, Diff{OpEqual, ""})
	var countDelete, countInsert int
	var textDelete, textInsert string
	pointer := 0
	for pointer < len(diffs) {
		switch diffs[pointer].Op {
		case OpInsert:
			countInsert++
			textInsert += diffs[pointer].Text
		case OpDelete:
			countDelete++
			textDelete += diffs[pointer].Text
		case OpEqual:
			// Upon reaching an equality, check for prior redundancies.
			if countDelete >= 1 && countInsert >= 1 {
				// Delete the offending records and add the merged ones.
				diffs = splice(diffs, pointer-countDelete-countInsert, countDelete+countInsert)
				pointer = pointer - countDelete - countInsert
				sub := c.diffRunes([]rune(textDelete), []rune(textInsert), false, deadline)
				for j := len(sub) - 1; j >= 0; j-- {
					diffs = splice(diffs, pointer, 0, sub[j])
				}
				pointer += len(sub)
			}
			countDelete, countInsert = 0, 0
			textDelete, textInsert = "", ""
		}
		pointer++
	}
	return diffs[:len(diffs)-1] // Remove the dummy entry at the end.
}

// DiffLinesToChars splits two texts into a list of strings and reduces each
// text to a string of hash tokens where every token stands for one line.
func (c *Config) DiffLinesToChars(text1, text2 string) (string, string, []string) {
	return c.diffLinesToStrings(text1, text2)
}

// DiffLinesToRunes splits two texts into hash token sequences ready to hand
// to DiffRunes.
func (c *Config) DiffLinesToRunes(text1, text2 string) ([]rune, []rune, []string) {
	chars1, chars2, lines := c.diffLinesToStrings(text1, text2)
	return []rune(chars1), []rune(chars2), lines
}

// DiffCharsToLines rehydrates the text in a diff from a string of line
// hashes to real lines of text.
func (c *Config) DiffCharsToLines(diffs []Diff, lines []string) []Diff {
	hydrated := make([]Diff, 0, len(diffs))
	for _, d := range diffs {
		tokens := strings.Split(d.Text, ",")
		text := make([]string, len(tokens))
		for i, t := range tokens {
			n, err := strconv.Atoi(t)
			if err == nil {
				text[i] = lines[n]
			}
		}
		d.Text = strings.Join(text, "")
		hydrated = append(hydrated, d)
	}
	return hydrated
}

// diffLinesToStrings maps every unique line in both texts to an integer
// index and renders each text as the comma-joined indexes of its lines.
// Using integer tokens rather than single code points keeps the table from
// capping out at a few hundred distinct lines.
func (c *Config) diffLinesToStrings(text1, text2 string) (string, string, []string) {
	// '\x00' is a valid character, but various debuggers don't like it, so
	// index 0 is a junk entry and real lines start at 1.
	lines := []string{""} // e.g. lines[4] == "Hello\n"
	hash := map[string]int{}
	tokens1 := diffLinesToStringsMunge(text1, &lines, hash)
	tokens2 := diffLinesToStringsMunge(text2, &lines, hash)
	return intArrayToString(tokens1), intArrayToString(tokens2), lines
}

// diffLinesToStringsMunge walks text pulling out a substring for each line,
// assigning new lines the next free index. Splitting with strings.Split
// would double the memory footprint, hence the manual scan.
func diffLinesToStringsMunge(text string, lines *[]string, hash map[string]int) []uint32 {
	lineStart, lineEnd := 0, -1
	var tokens []uint32
	for lineEnd < len(text)-1 {
		lineEnd = indexOf(text, "\n", lineStart)
		if lineEnd == -1 {
			lineEnd = len(text) - 1
		}
		line := text[lineStart : lineEnd+1]
		lineStart = lineEnd + 1
		if n, ok := hash[line]; ok {
			tokens = append(tokens, uint32(n))
		} else {
			*lines = append(*lines, line)
			hash[line] = len(*lines) - 1
			tokens = append(tokens, uint32(len(*lines)-1))
		}
	}
	return tokens
}

// DiffCommonPrefix determines the common prefix length of two strings, in
// runes.
func (c *Config) DiffCommonPrefix(text1, text2 string) int {
	return commonPrefixLength([]rune(text1), []rune(text2))
}

// DiffCommonSuffix determines the common suffix length of two strings, in
// runes.
func (c *Config) DiffCommonSuffix(text1, text2 string) int {
	return commonSuffixLength([]rune(text1), []rune(text2))
}

// DiffCommonOverlap determines the length of the longest suffix of text1
// that is also a prefix of text2.
func (c *Config) DiffCommonOverlap(text1, text2 string) int {
	// Eliminate the null case.
	if len(text1) == 0 || len(text2) == 0 {
		return 0
	}
	// Truncate the longer string.
	if len(text1) > len(text2) {
		text1 = text1[len(text1)-len(text2):]
	} else if len(text1) < len(text2) {
		text2 = text2[:len(text1)]
	}
	n := min(len(text1), len(text2))
	// Quick check for the worst case.
	if text1 == text2 {
		return n
	}
	// Start by looking for a single character match and increase length
	// until no match is found.
	// Performance analysis: https://neil.fraser.name/news/2010/11/04/
	best, length := 0, 1
	for {
		pattern := text1[n-length:]
		found := strings.Index(text2, pattern)
		if found == -1 {
			return best
		}
		length += found
		if found == 0 || text1[n-length:] == text2[:length] {
			best = length
			length++
		}
	}
}
