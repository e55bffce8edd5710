package dmp

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DiffCleanupMerge reorders and merges like edit sections, merging
// equalities. Any edit section can move as long as it doesn't cross an
// equality.
func (c *Config) DiffCleanupMerge(diffs []Diff) []Diff {
	// Add a dummy entry at the end.
	diffs = append(diffs, Diff{OpEqual, ""})
	pointer := 0
	var countDelete, countInsert int
	var textDelete, textInsert []rune
	for pointer < len(diffs) {
		switch diffs[pointer].Op {
		case OpInsert:
			countInsert++
			textInsert = append(textInsert, []rune(diffs[pointer].Text)...)
			pointer++
		case OpDelete:
			countDelete++
			textDelete = append(textDelete, []rune(diffs[pointer].Text)...)
			pointer++
		case OpEqual:
			// Upon reaching an equality, check for prior redundancies.
			switch {
			case countDelete+countInsert > 1:
				if countDelete != 0 && countInsert != 0 {
					// Factor out any common prefix.
					if n := commonPrefixLength(textInsert, textDelete); n != 0 {
						x := pointer - countDelete - countInsert
						if x > 0 && diffs[x-1].Op == OpEqual {
							diffs[x-1].Text += string(textInsert[:n])
						} else {
							diffs = append([]Diff{{OpEqual, string(textInsert[:n])}}, diffs...)
							pointer++
						}
						textInsert = textInsert[n:]
						textDelete = textDelete[n:]
					}
					// Factor out any common suffix.
					if n := commonSuffixLength(textInsert, textDelete); n != 0 {
						diffs[pointer].Text = string(textInsert[len(textInsert)-n:]) + diffs[pointer].Text
						textInsert = textInsert[:len(textInsert)-n]
						textDelete = textDelete[:len(textDelete)-n]
					}
				}
				// Delete the offending records and add the merged ones.
				switch {
				case countDelete == 0:
					diffs = splice(diffs, pointer-countInsert, countInsert,
						Diff{OpInsert, string(textInsert)})
				case countInsert == 0:
					diffs = splice(diffs, pointer-countDelete, countDelete,
						Diff{OpDelete, string(textDelete)})
				default:
					diffs = splice(diffs, pointer-countDelete-countInsert, countDelete+countInsert,
						Diff{OpDelete, string(textDelete)},
						Diff{OpInsert, string(textInsert)})
				}
				pointer = pointer - countDelete - countInsert + 1
				if countDelete != 0 {
					pointer++
				}
				if countInsert != 0 {
					pointer++
				}
			case pointer != 0 && diffs[pointer-1].Op == OpEqual:
				// Merge this equality with the previous one.
				diffs[pointer-1].Text += diffs[pointer].Text
				diffs = append(diffs[:pointer], diffs[pointer+1:]...)
			default:
				pointer++
			}
			countDelete, countInsert = 0, 0
			textDelete, textInsert = nil, nil
		}
	}
	if len(diffs[len(diffs)-1].Text) == 0 {
		diffs = diffs[:len(diffs)-1] // Remove the dummy entry at the end.
	}
	// Second pass: look for single edits surrounded on both sides by
	// equalities which can be shifted sideways to eliminate an equality.
	// E.g: A<ins>BA</ins>C -> <ins>AB</ins>AC
	changes := false
	pointer = 1
	// Intentionally ignore the first and last element (don't need checking).
	for pointer < len(diffs)-1 {
		if diffs[pointer-1].Op == OpEqual && diffs[pointer+1].Op == OpEqual {
			// This is a single edit surrounded by equalities.
			switch {
			case strings.HasSuffix(diffs[pointer].Text, diffs[pointer-1].Text):
				// Shift the edit over the previous equality.
				diffs[pointer].Text = diffs[pointer-1].Text +
					diffs[pointer].Text[:len(diffs[pointer].Text)-len(diffs[pointer-1].Text)]
				diffs[pointer+1].Text = diffs[pointer-1].Text + diffs[pointer+1].Text
				diffs = splice(diffs, pointer-1, 1)
				changes = true
			case strings.HasPrefix(diffs[pointer].Text, diffs[pointer+1].Text):
				// Shift the edit over the next equality.
				diffs[pointer-1].Text += diffs[pointer+1].Text
				diffs[pointer].Text = diffs[pointer].Text[len(diffs[pointer+1].Text):] + diffs[pointer+1].Text
				diffs = splice(diffs, pointer+1, 1)
				changes = true
			}
		}
		pointer++
	}
	// If shifts were made, the diff needs reordering and another shift sweep.
	if changes {
		diffs = c.DiffCleanupMerge(diffs)
	}
	return diffs
}

// DiffCleanupSemantic reduces the number of edits by eliminating
// semantically trivial equalities.
func (c *Config) DiffCleanupSemantic(diffs []Diff) []Diff {
	changes := false
	// Stack of indices where equalities are found.
	equalities := make([]int, 0, len(diffs))
	// Always equal to diffs[equalities[len(equalities)-1]].Text.
	var lastEquality string
	var pointer int
	// Number of characters changed before and after the equality.
	var insertions1, deletions1, insertions2, deletions2 int
	for pointer < len(diffs) {
		if diffs[pointer].Op == OpEqual {
			// Equality found.
			equalities = append(equalities, pointer)
			insertions1, deletions1 = insertions2, deletions2
			insertions2, deletions2 = 0, 0
			lastEquality = diffs[pointer].Text
		} else {
			// An insertion or deletion.
			if diffs[pointer].Op == OpInsert {
				insertions2 += utf8.RuneCountInString(diffs[pointer].Text)
			} else {
				deletions2 += utf8.RuneCountInString(diffs[pointer].Text)
			}
			// Eliminate an equality smaller or equal to the edits on both
			// sides of it.
			n := utf8.RuneCountInString(lastEquality)
			if n > 0 && n <= max(insertions1, deletions1) && n <= max(insertions2, deletions2) {
				// Duplicate record.
				insPoint := equalities[len(equalities)-1]
				diffs = splice(diffs, insPoint, 0, Diff{OpDelete, lastEquality})
				// Change second copy to insert.
				diffs[insPoint+1].Op = OpInsert
				// Throw away the equality we just deleted, and the previous
				// one (it needs to be reevaluated).
				equalities = equalities[:len(equalities)-1]
				if len(equalities) > 0 {
					equalities = equalities[:len(equalities)-1]
				}
				pointer = -1
				if len(equalities) > 0 {
					pointer = equalities[len(equalities)-1]
				}
				// Reset the counters.
				insertions1, deletions1 = 0, 0
				insertions2, deletions2 = 0, 0
				lastEquality = ""
				changes = true
			}
		}
		pointer++
	}
	// Normalize the diff.
	if changes {
		diffs = c.DiffCleanupMerge(diffs)
	}
	diffs = c.DiffCleanupSemanticLossless(diffs)
	// Find any overlaps between deletions and insertions.
	// e.g: <del>abcxxx</del><ins>xxxdef</ins>
	//   -> <del>abc</del>xxx<ins>def</ins>
	// e.g: <del>xxxabc</del><ins>defxxx</ins>
	//   -> <ins>def</ins>xxx<del>abc</del>
	// Only extract an overlap if it is at least half as big as the edit
	// ahead or behind it.
	pointer = 1
	for pointer < len(diffs) {
		if diffs[pointer-1].Op == OpDelete && diffs[pointer].Op == OpInsert {
			deletion := diffs[pointer-1].Text
			insertion := diffs[pointer].Text
			overlap1 := c.DiffCommonOverlap(deletion, insertion)
			overlap2 := c.DiffCommonOverlap(insertion, deletion)
			if overlap1 >= overlap2 {
				if float64(overlap1) >= float64(utf8.RuneCountInString(deletion))/2 ||
					float64(overlap1) >= float64(utf8.RuneCountInString(insertion))/2 {
					// Overlap found: insert an equality and trim the
					// surrounding edits.
					diffs = splice(diffs, pointer, 0, Diff{OpEqual, insertion[:overlap1]})
					diffs[pointer-1].Text = deletion[:len(deletion)-overlap1]
					diffs[pointer+1].Text = insertion[overlap1:]
					pointer++
				}
			} else if float64(overlap2) >= float64(utf8.RuneCountInString(deletion))/2 ||
				float64(overlap2) >= float64(utf8.RuneCountInString(insertion))/2 {
				// Reverse overlap found: insert an equality and swap and
				// trim the surrounding edits.
				diffs = splice(diffs, pointer, 0, Diff{OpEqual, deletion[:overlap2]})
				diffs[pointer-1] = Diff{OpInsert, insertion[:len(insertion)-overlap2]}
				diffs[pointer+1] = Diff{OpDelete, deletion[overlap2:]}
				pointer++
			}
			pointer++
		}
		pointer++
	}
	return diffs
}

// Boundary classification expressions for the semantic score.
var (
	nonAlphaNumericRE = regexp.MustCompile(`[^a-zA-Z0-9]`)
	whitespaceRE      = regexp.MustCompile(`\s`)
	linebreakRE       = regexp.MustCompile(`[\r\n]`)
	blanklineEndRE    = regexp.MustCompile(`\n\r?\n$`)
)

// diffCleanupSemanticScore rates how well the boundary between one and two
// falls on logical seams, from 6 (best) down to 0 (worst).
func diffCleanupSemanticScore(one, two string) int {
	if len(one) == 0 || len(two) == 0 {
		// Edges are the best.
		return 6
	}
	// Each port of this function behaves slightly differently due to subtle
	// differences in each language's definition of things like 'whitespace'.
	// Since this function's purpose is largely cosmetic, the choice has been
	// made to use each language's native features rather than force total
	// conformity.
	r1, _ := utf8.DecodeLastRuneInString(one)
	r2, _ := utf8.DecodeRuneInString(two)
	char1, char2 := string(r1), string(r2)
	nonAlphaNumeric1 := nonAlphaNumericRE.MatchString(char1)
	nonAlphaNumeric2 := nonAlphaNumericRE.MatchString(char2)
	whitespace1 := nonAlphaNumeric1 && whitespaceRE.MatchString(char1)
	whitespace2 := nonAlphaNumeric2 && whitespaceRE.MatchString(char2)
	lineBreak1 := whitespace1 && linebreakRE.MatchString(char1)
	lineBreak2 := whitespace2 && linebreakRE.MatchString(char2)
	blankLine1 := lineBreak1 && blanklineEndRE.MatchString(one)
	blankLine2 := lineBreak2 && blanklineEndRE.MatchString(two)
	switch {
	case blankLine1 || blankLine2:
		// Five points for blank lines.
		return 5
	case lineBreak1 || lineBreak2:
		// Four points for line breaks.
		return 4
	case nonAlphaNumeric1 && !whitespace1 && whitespace2:
		// Three points for end of sentences.
		return 3
	case whitespace1 || whitespace2:
		// Two points for whitespace.
		return 2
	case nonAlphaNumeric1 || nonAlphaNumeric2:
		// One point for non-alphanumeric.
		return 1
	}
	return 0
}

// DiffCleanupSemanticLossless looks for single edits surrounded on both
// sides by equalities which can be shifted sideways to align the edit to a
// word boundary. E.g: The c<ins>at c</ins>ame. -> The <ins>cat </ins>came.
// The total text covered by the script is unchanged.
func (c *Config) DiffCleanupSemanticLossless(diffs []Diff) []Diff {
	pointer := 1
	// Intentionally ignore the first and last element (don't need checking).
	for pointer < len(diffs)-1 {
		if diffs[pointer-1].Op == OpEqual && diffs[pointer+1].Op == OpEqual {
			// This is a single edit surrounded by equalities.
			equality1 := diffs[pointer-1].Text
			edit := diffs[pointer].Text
			equality2 := diffs[pointer+1].Text
			// First, shift the edit as far left as possible.
			if n := c.DiffCommonSuffix(equality1, edit); n > 0 {
				// n is in runes; recover the byte length of the overlap.
				common := edit[len(edit)-suffixBytes(edit, n):]
				equality1 = equality1[:len(equality1)-len(common)]
				edit = common + edit[:len(edit)-len(common)]
				equality2 = common + equality2
			}
			// Second, step rune by rune right, looking for the best fit.
			bestEquality1, bestEdit, bestEquality2 := equality1, edit, equality2
			bestScore := diffCleanupSemanticScore(equality1, edit) +
				diffCleanupSemanticScore(edit, equality2)
			for len(edit) != 0 && len(equality2) != 0 {
				_, sz := utf8.DecodeRuneInString(edit)
				if len(equality2) < sz || edit[:sz] != equality2[:sz] {
					break
				}
				equality1 += edit[:sz]
				edit = edit[sz:] + equality2[:sz]
				equality2 = equality2[sz:]
				score := diffCleanupSemanticScore(equality1, edit) +
					diffCleanupSemanticScore(edit, equality2)
				// The >= encourages trailing rather than leading whitespace
				// on edits.
				if score >= bestScore {
					bestScore = score
					bestEquality1, bestEdit, bestEquality2 = equality1, edit, equality2
				}
			}
			if diffs[pointer-1].Text != bestEquality1 {
				// We have an improvement, save it back to the diff.
				if len(bestEquality1) != 0 {
					diffs[pointer-1].Text = bestEquality1
				} else {
					diffs = splice(diffs, pointer-1, 1)
					pointer--
				}
				diffs[pointer].Text = bestEdit
				if len(bestEquality2) != 0 {
					diffs[pointer+1].Text = bestEquality2
				} else {
					diffs = splice(diffs, pointer+1, 1)
					pointer--
				}
			}
		}
		pointer++
	}
	return diffs
}

// suffixBytes returns the byte length of the last n runes of s.
func suffixBytes(s string, n int) int {
	i := len(s)
	for ; n > 0; n-- {
		_, sz := utf8.DecodeLastRuneInString(s[:i])
		i -= sz
	}
	return len(s) - i
}

// DiffCleanupEfficiency reduces the number of edits by eliminating
// operationally trivial equalities, as priced by DiffEditCost.
func (c *Config) DiffCleanupEfficiency(diffs []Diff) []Diff {
	changes := false
	// Stack of indices where equalities are found.
	type equality struct {
		index int
		next  *equality
	}
	var equalities *equality
	// Always equal to diffs[equalities.index].Text.
	var lastEquality string
	pointer := 0
	// Whether an insertion or deletion precedes or follows the last
	// equality candidate.
	var preIns, preDel, postIns, postDel bool
	for pointer < len(diffs) {
		if diffs[pointer].Op == OpEqual {
			// Equality found.
			if len(diffs[pointer].Text) < c.DiffEditCost && (postIns || postDel) {
				// Candidate found.
				equalities = &equality{index: pointer, next: equalities}
				preIns, preDel = postIns, postDel
				lastEquality = diffs[pointer].Text
			} else {
				// Not a candidate, and can never become one.
				equalities = nil
				lastEquality = ""
			}
			postIns, postDel = false, false
		} else {
			// An insertion or deletion.
			if diffs[pointer].Op == OpDelete {
				postDel = true
			} else {
				postIns = true
			}
			// Five types to be split:
			// <ins>A</ins><del>B</del>XY<ins>C</ins><del>D</del>
			// <ins>A</ins>X<ins>C</ins><del>D</del>
			// <ins>A</ins><del>B</del>X<ins>C</ins>
			// <del>A</del>X<ins>C</ins><del>D</del>
			// <ins>A</ins><del>B</del>X<del>C</del>
			var flanks int
			for _, b := range []bool{preIns, preDel, postIns, postDel} {
				if b {
					flanks++
				}
			}
			if len(lastEquality) > 0 &&
				((preIns && preDel && postIns && postDel) ||
					(len(lastEquality) < c.DiffEditCost/2 && flanks == 3)) {
				insPoint := equalities.index
				// Duplicate record.
				diffs = splice(diffs, insPoint, 0, Diff{OpDelete, lastEquality})
				// Change second copy to insert.
				diffs[insPoint+1].Op = OpInsert
				// Throw away the equality we just deleted.
				equalities = equalities.next
				lastEquality = ""
				if preIns && preDel {
					// No changes made which could affect previous entry,
					// keep going.
					postIns, postDel = true, true
					equalities = nil
				} else {
					if equalities != nil {
						equalities = equalities.next
					}
					pointer = -1
					if equalities != nil {
						pointer = equalities.index
					}
					postIns, postDel = false, false
				}
				changes = true
			}
		}
		pointer++
	}
	if changes {
		diffs = c.DiffCleanupMerge(diffs)
	}
	return diffs
}
