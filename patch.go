package dmp

import (
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Patch is one hunk of an edit script, carrying the positions and lengths it
// covers in the source and destination texts plus equality context around
// the edits.
type Patch struct {
	Diffs   []Diff
	Start1  int
	Start2  int
	Length1 int
	Length2 int
}

// String satisfies the fmt.Stringer interface, rendering the hunk in a
// format that emulates GNU diff's, e.g:
//
//	@@ -382,8 +481,9 @@
//
// Header indices are printed 1-based; the comma and length are elided when
// the length is 1, and a zero-length side prints "s,0".
func (p *Patch) String() string {
	coords := func(start, length int) string {
		switch length {
		case 0:
			return strconv.Itoa(start) + ",0"
		case 1:
			return strconv.Itoa(start + 1)
		}
		return strconv.Itoa(start+1) + "," + strconv.Itoa(length)
	}
	var sb strings.Builder
	sb.WriteString("@@ -")
	sb.WriteString(coords(p.Start1, p.Length1))
	sb.WriteString(" +")
	sb.WriteString(coords(p.Start2, p.Length2))
	sb.WriteString(" @@\n")
	// Escape the body of the patch with %xx notation.
	for _, d := range p.Diffs {
		switch d.Op {
		case OpInsert:
			sb.WriteByte('+')
		case OpDelete:
			sb.WriteByte('-')
		case OpEqual:
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.Replace(url.QueryEscape(d.Text), "+", " ", -1))
		sb.WriteByte('\n')
	}
	return unescaper.Replace(sb.String())
}

// PatchAddContext grows the equality context of patch until its source text
// occurs uniquely in text, without letting the pattern expand beyond what
// the match engine can handle.
func (c *Config) PatchAddContext(patch Patch, text string) Patch {
	if len(text) == 0 {
		return patch
	}
	pattern := text[patch.Start2 : patch.Start2+patch.Length1]
	padding := 0
	// Look for the first and last matches of pattern in text. If two
	// different matches are found, increase the pattern length.
	for strings.Index(text, pattern) != strings.LastIndex(text, pattern) &&
		len(pattern) < c.MatchMaxBits-2*c.PatchMargin {
		padding += c.PatchMargin
		pattern = text[max(0, patch.Start2-padding):min(len(text), patch.Start2+patch.Length1+padding)]
	}
	// Add one chunk for good luck.
	padding += c.PatchMargin
	// Add the prefix.
	prefix := text[max(0, patch.Start2-padding):patch.Start2]
	if len(prefix) != 0 {
		patch.Diffs = append([]Diff{{OpEqual, prefix}}, patch.Diffs...)
	}
	// Add the suffix.
	suffix := text[patch.Start2+patch.Length1 : min(len(text), patch.Start2+patch.Length1+padding)]
	if len(suffix) != 0 {
		patch.Diffs = append(patch.Diffs, Diff{OpEqual, suffix})
	}
	// Roll back the start points and extend the lengths.
	patch.Start1 -= len(prefix)
	patch.Start2 -= len(prefix)
	patch.Length1 += len(prefix) + len(suffix)
	patch.Length2 += len(prefix) + len(suffix)
	return patch
}

// PatchMake computes a list of patches to turn one text into another. It
// accepts (text1, text2), (diffs), (text1, diffs), or the deprecated
// (text1, text2, diffs) form, which ignores text2.
func (c *Config) PatchMake(opt ...interface{}) []Patch {
	switch len(opt) {
	case 1:
		diffs, _ := opt[0].([]Diff)
		return c.PatchMake(c.DiffText1(diffs), diffs)
	case 2:
		text1 := opt[0].(string)
		switch t := opt[1].(type) {
		case string:
			diffs := c.Diff(text1, t, true)
			if len(diffs) > 2 {
				diffs = c.DiffCleanupSemantic(diffs)
				diffs = c.DiffCleanupEfficiency(diffs)
			}
			return c.PatchMake(text1, diffs)
		case []Diff:
			return c.patchMake2(text1, t)
		}
	case 3:
		return c.PatchMake(opt[0], opt[2])
	}
	return []Patch{}
}

// patchMake2 computes a list of patches to turn text1 into the text the
// diffs describe.
func (c *Config) patchMake2(text1 string, diffs []Diff) []Patch {
	patches := []Patch{}
	if len(diffs) == 0 {
		return patches // Get rid of the nil case.
	}
	var patch Patch
	var charCount1, charCount2 int // Number of characters into text1/text2.
	// Start with text1 (prepatchText) and apply the diffs until we arrive
	// at text2 (postpatchText). We recreate the patches one by one to
	// determine context info.
	prepatchText := text1
	postpatchText := text1
	for i, d := range diffs {
		if len(patch.Diffs) == 0 && d.Op != OpEqual {
			// A new patch starts here.
			patch.Start1 = charCount1
			patch.Start2 = charCount2
		}
		switch d.Op {
		case OpInsert:
			patch.Diffs = append(patch.Diffs, d)
			patch.Length2 += len(d.Text)
			postpatchText = postpatchText[:charCount2] + d.Text + postpatchText[charCount2:]
		case OpDelete:
			patch.Diffs = append(patch.Diffs, d)
			patch.Length1 += len(d.Text)
			postpatchText = postpatchText[:charCount2] + postpatchText[charCount2+len(d.Text):]
		case OpEqual:
			if len(d.Text) <= 2*c.PatchMargin && len(patch.Diffs) != 0 && i != len(diffs)-1 {
				// Small equality inside a patch.
				patch.Diffs = append(patch.Diffs, d)
				patch.Length1 += len(d.Text)
				patch.Length2 += len(d.Text)
			}
			if len(d.Text) >= 2*c.PatchMargin && len(patch.Diffs) != 0 {
				// Time for a new patch.
				patch = c.PatchAddContext(patch, prepatchText)
				patches = append(patches, patch)
				patch = Patch{}
				// Unlike Unidiff, our patch lists have a rolling context.
				// Update prepatch text & pos to reflect the application of
				// the just completed patch.
				prepatchText = postpatchText
				charCount1 = charCount2
			}
		}
		// Update the current character count.
		if d.Op != OpInsert {
			charCount1 += len(d.Text)
		}
		if d.Op != OpDelete {
			charCount2 += len(d.Text)
		}
	}
	// Pick up the leftover patch if not empty.
	if len(patch.Diffs) != 0 {
		patch = c.PatchAddContext(patch, prepatchText)
		patches = append(patches, patch)
	}
	return patches
}

// PatchDeepCopy returns a patch list identical to, and sharing nothing
// with, the given one.
func (c *Config) PatchDeepCopy(patches []Patch) []Patch {
	patchesCopy := make([]Patch, 0, len(patches))
	for _, p := range patches {
		patchCopy := Patch{
			Start1:  p.Start1,
			Start2:  p.Start2,
			Length1: p.Length1,
			Length2: p.Length2,
		}
		patchCopy.Diffs = append(patchCopy.Diffs, p.Diffs...)
		patchesCopy = append(patchesCopy, patchCopy)
	}
	return patchesCopy
}

// PatchApply merges a set of patches onto the text. Returns the patched
// text and an array of true/false values indicating which patches were
// applied.
func (c *Config) PatchApply(patches []Patch, text string) (string, []bool) {
	if len(patches) == 0 {
		return text, []bool{}
	}
	// Deep copy the patches so that no changes are made to the originals.
	patches = c.PatchDeepCopy(patches)
	nullPadding := c.PatchAddPadding(patches)
	text = nullPadding + text + nullPadding
	patches = c.PatchSplitMax(patches)
	// delta keeps track of the offset between the expected and actual
	// location of the previous patch. If there are patches expected at
	// positions 10 and 20, but the first was found at 12, delta is 2 and
	// the second patch has an effective expected position of 22.
	delta := 0
	results := make([]bool, len(patches))
	for x, p := range patches {
		expectedLoc := p.Start2 + delta
		text1 := c.DiffText1(p.Diffs)
		var startLoc int
		endLoc := -1
		if len(text1) > c.MatchMaxBits {
			// PatchSplitMax will only provide an oversized pattern in the
			// case of a monster delete.
			startLoc = c.Match(text, text1[:c.MatchMaxBits], expectedLoc)
			if startLoc != -1 {
				endLoc = c.Match(text, text1[len(text1)-c.MatchMaxBits:],
					expectedLoc+len(text1)-c.MatchMaxBits)
				if endLoc == -1 || startLoc >= endLoc {
					// Can't find valid trailing context. Drop this patch.
					startLoc = -1
				}
			}
		} else {
			startLoc = c.Match(text, text1, expectedLoc)
		}
		if startLoc == -1 {
			// No match found. :(
			results[x] = false
			// Subtract the delta for this failed patch from subsequent
			// patches.
			delta -= p.Length2 - p.Length1
			continue
		}
		// Found a match. :)
		results[x] = true
		delta = startLoc - expectedLoc
		var text2 string
		if endLoc == -1 {
			text2 = text[startLoc:min(startLoc+len(text1), len(text))]
		} else {
			text2 = text[startLoc:min(endLoc+c.MatchMaxBits, len(text))]
		}
		if text1 == text2 {
			// Perfect match, just shove the replacement text in.
			text = text[:startLoc] + c.DiffText2(p.Diffs) + text[startLoc+len(text1):]
			continue
		}
		// Imperfect match. Run a diff to get a framework of equivalent
		// indices.
		diffs := c.Diff(text1, text2, false)
		if len(text1) > c.MatchMaxBits &&
			float64(c.DiffLevenshtein(diffs))/float64(len(text1)) > c.PatchDeleteThreshold {
			// The end points match, but the content is unacceptably bad.
			results[x] = false
			continue
		}
		diffs = c.DiffCleanupSemanticLossless(diffs)
		index1 := 0
		for _, d := range p.Diffs {
			if d.Op != OpEqual {
				index2 := c.DiffXIndex(diffs, index1)
				switch d.Op {
				case OpInsert:
					text = text[:startLoc+index2] + d.Text + text[startLoc+index2:]
				case OpDelete:
					text = text[:startLoc+index2] +
						text[startLoc+c.DiffXIndex(diffs, index1+len(d.Text)):]
				}
			}
			if d.Op != OpDelete {
				index1 += len(d.Text)
			}
		}
	}
	// Strip the padding off.
	return text[len(nullPadding) : len(text)-len(nullPadding)], results
}

// PatchAddPadding adds some padding on text start and end so that edges can
// match something. Intended to be called only from within PatchApply.
func (c *Config) PatchAddPadding(patches []Patch) string {
	paddingLength := c.PatchMargin
	nullPadding := ""
	for x := 1; x <= paddingLength; x++ {
		nullPadding += string(rune(x))
	}
	// Bump all the patches forward.
	for i := range patches {
		patches[i].Start1 += paddingLength
		patches[i].Start2 += paddingLength
	}
	// Add some padding on start of first diff.
	first := &patches[0]
	if len(first.Diffs) == 0 || first.Diffs[0].Op != OpEqual {
		// Add nullPadding equality.
		first.Diffs = append([]Diff{{OpEqual, nullPadding}}, first.Diffs...)
		first.Start1 -= paddingLength // Should be 0.
		first.Start2 -= paddingLength // Should be 0.
		first.Length1 += paddingLength
		first.Length2 += paddingLength
	} else if paddingLength > len(first.Diffs[0].Text) {
		// Grow first equality.
		extraLength := paddingLength - len(first.Diffs[0].Text)
		first.Diffs[0].Text = nullPadding[len(first.Diffs[0].Text):] + first.Diffs[0].Text
		first.Start1 -= extraLength
		first.Start2 -= extraLength
		first.Length1 += extraLength
		first.Length2 += extraLength
	}
	// Add some padding on end of last diff.
	last := &patches[len(patches)-1]
	if len(last.Diffs) == 0 || last.Diffs[len(last.Diffs)-1].Op != OpEqual {
		// Add nullPadding equality.
		last.Diffs = append(last.Diffs, Diff{OpEqual, nullPadding})
		last.Length1 += paddingLength
		last.Length2 += paddingLength
	} else if paddingLength > len(last.Diffs[len(last.Diffs)-1].Text) {
		// Grow last equality.
		extraLength := paddingLength - len(last.Diffs[len(last.Diffs)-1].Text)
		last.Diffs[len(last.Diffs)-1].Text += nullPadding[:extraLength]
		last.Length1 += extraLength
		last.Length2 += extraLength
	}
	return nullPadding
}

// PatchSplitMax breaks up any patches longer than the maximum limit of the
// match algorithm into consecutive smaller patches, each with its own
// context. Intended to be called only from within PatchApply.
func (c *Config) PatchSplitMax(patches []Patch) []Patch {
	patchSize := c.MatchMaxBits
	for x := 0; x < len(patches); x++ {
		if patches[x].Length1 <= patchSize {
			continue
		}
		bigpatch := patches[x]
		// Remove the big old patch.
		patches = append(patches[:x], patches[x+1:]...)
		x--
		start1 := bigpatch.Start1
		start2 := bigpatch.Start2
		precontext := ""
		for len(bigpatch.Diffs) != 0 {
			// Create one of several smaller patches.
			patch := Patch{
				Start1: start1 - len(precontext),
				Start2: start2 - len(precontext),
			}
			empty := true
			if len(precontext) != 0 {
				patch.Length1 = len(precontext)
				patch.Length2 = len(precontext)
				patch.Diffs = append(patch.Diffs, Diff{OpEqual, precontext})
			}
			for len(bigpatch.Diffs) != 0 && patch.Length1 < patchSize-c.PatchMargin {
				op := bigpatch.Diffs[0].Op
				text := bigpatch.Diffs[0].Text
				switch {
				case op == OpInsert:
					// Insertions are harmless.
					patch.Length2 += len(text)
					start2 += len(text)
					patch.Diffs = append(patch.Diffs, bigpatch.Diffs[0])
					bigpatch.Diffs = bigpatch.Diffs[1:]
					empty = false
				case op == OpDelete && len(patch.Diffs) == 1 &&
					patch.Diffs[0].Op == OpEqual && len(text) > 2*patchSize:
					// This is a large deletion. Let it pass in one chunk.
					patch.Length1 += len(text)
					start1 += len(text)
					patch.Diffs = append(patch.Diffs, Diff{op, text})
					bigpatch.Diffs = bigpatch.Diffs[1:]
					empty = false
				default:
					// Deletion or equality. Only take as much as we can
					// stomach.
					text = text[:min(len(text), patchSize-patch.Length1-c.PatchMargin)]
					patch.Length1 += len(text)
					start1 += len(text)
					if op == OpEqual {
						patch.Length2 += len(text)
						start2 += len(text)
					} else {
						empty = false
					}
					patch.Diffs = append(patch.Diffs, Diff{op, text})
					if text == bigpatch.Diffs[0].Text {
						bigpatch.Diffs = bigpatch.Diffs[1:]
					} else {
						bigpatch.Diffs[0].Text = bigpatch.Diffs[0].Text[len(text):]
					}
				}
			}
			// Compute the head context for the next patch.
			precontext = c.DiffText2(patch.Diffs)
			precontext = precontext[max(0, len(precontext)-c.PatchMargin):]
			// Append the end context for this patch.
			postcontext := c.DiffText1(bigpatch.Diffs)
			if len(postcontext) > c.PatchMargin {
				postcontext = postcontext[:c.PatchMargin]
			}
			if len(postcontext) != 0 {
				patch.Length1 += len(postcontext)
				patch.Length2 += len(postcontext)
				if len(patch.Diffs) != 0 && patch.Diffs[len(patch.Diffs)-1].Op == OpEqual {
					patch.Diffs[len(patch.Diffs)-1].Text += postcontext
				} else {
					patch.Diffs = append(patch.Diffs, Diff{OpEqual, postcontext})
				}
			}
			if !empty {
				x++
				patches = append(patches[:x], append([]Patch{patch}, patches[x:]...)...)
			}
		}
	}
	return patches
}

// PatchToText renders a list of patches to its textual representation.
func (c *Config) PatchToText(patches []Patch) string {
	var sb strings.Builder
	for _, p := range patches {
		sb.WriteString(p.String())
	}
	return sb.String()
}

// patchHeaderRE matches a patch header line.
var patchHeaderRE = regexp.MustCompile(`^@@ -(\d+),?(\d*) \+(\d+),?(\d*) @@$`)

// PatchFromText parses a textual representation of patches and returns the
// patch list.
func (c *Config) PatchFromText(textline string) ([]Patch, error) {
	patches := []Patch{}
	if len(textline) == 0 {
		return patches, nil
	}
	text := strings.Split(textline, "\n")
	textPointer := 0
	for textPointer < len(text) {
		m := patchHeaderRE.FindStringSubmatch(text[textPointer])
		if m == nil {
			return patches, errors.New("Invalid patch string: " + text[textPointer])
		}
		var patch Patch
		patch.Start1, _ = strconv.Atoi(m[1])
		switch {
		case len(m[2]) == 0:
			patch.Start1--
			patch.Length1 = 1
		case m[2] == "0":
			patch.Length1 = 0
		default:
			patch.Start1--
			patch.Length1, _ = strconv.Atoi(m[2])
		}
		patch.Start2, _ = strconv.Atoi(m[3])
		switch {
		case len(m[4]) == 0:
			patch.Start2--
			patch.Length2 = 1
		case m[4] == "0":
			patch.Length2 = 0
		default:
			patch.Start2--
			patch.Length2, _ = strconv.Atoi(m[4])
		}
		textPointer++
		for textPointer < len(text) {
			if len(text[textPointer]) == 0 {
				textPointer++
				continue
			}
			sign := text[textPointer][0]
			line := strings.Replace(text[textPointer][1:], "+", "%2b", -1)
			line, _ = url.QueryUnescape(line)
			switch sign {
			case '-':
				patch.Diffs = append(patch.Diffs, Diff{OpDelete, line})
			case '+':
				patch.Diffs = append(patch.Diffs, Diff{OpInsert, line})
			case ' ':
				patch.Diffs = append(patch.Diffs, Diff{OpEqual, line})
			case '@':
				// Start of next patch.
				textPointer--
				goto next
			default:
				return patches, errors.New("Invalid patch mode '" + string(sign) + "' in: " + line)
			}
			textPointer++
		}
	next:
		textPointer++
		patches = append(patches, patch)
	}
	return patches, nil
}
