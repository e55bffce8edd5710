package dmp

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DiffText1 returns the source text of an edit script (all equalities and
// deletions).
func (c *Config) DiffText1(diffs []Diff) string {
	var sb strings.Builder
	for _, d := range diffs {
		if d.Op != OpInsert {
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}

// DiffText2 returns the destination text of an edit script (all equalities
// and insertions).
func (c *Config) DiffText2(diffs []Diff) string {
	var sb strings.Builder
	for _, d := range diffs {
		if d.Op != OpDelete {
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}

// DiffXIndex translates a location in the source text to the corresponding
// location in the destination text. A location inside a deletion maps to the
// start of the following region.
func (c *Config) DiffXIndex(diffs []Diff, loc int) int {
	var chars1, chars2, lastChars1, lastChars2 int
	var lastDiff Diff
	for _, d := range diffs {
		if d.Op != OpInsert {
			// Equality or deletion.
			chars1 += len(d.Text)
		}
		if d.Op != OpDelete {
			// Equality or insertion.
			chars2 += len(d.Text)
		}
		if chars1 > loc {
			// Overshot the location.
			lastDiff = d
			break
		}
		lastChars1, lastChars2 = chars1, chars2
	}
	if lastDiff.Op == OpDelete {
		// The location was deleted.
		return lastChars2
	}
	// Add the remaining character length.
	return lastChars2 + (loc - lastChars1)
}

// DiffLevenshtein computes the Levenshtein distance of an edit script: the
// number of inserted, deleted or substituted characters.
func (c *Config) DiffLevenshtein(diffs []Diff) int {
	var distance, insertions, deletions int
	for _, d := range diffs {
		switch d.Op {
		case OpInsert:
			insertions += utf8.RuneCountInString(d.Text)
		case OpDelete:
			deletions += utf8.RuneCountInString(d.Text)
		case OpEqual:
			// A deletion and an insertion is one substitution.
			distance += max(insertions, deletions)
			insertions, deletions = 0, 0
		}
	}
	return distance + max(insertions, deletions)
}

// DiffToDelta crushes an edit script into an encoded string of the
// operations required to transform the source text into the destination.
// E.g. "=3\t-2\t+ing" means keep 3 runes, delete 2 runes, insert "ing".
// Operations are tab-separated, inserted text is escaped with %xx notation.
func (c *Config) DiffToDelta(diffs []Diff) string {
	var sb strings.Builder
	for i, d := range diffs {
		if i != 0 {
			sb.WriteByte('\t')
		}
		switch d.Op {
		case OpInsert:
			sb.WriteByte('+')
			sb.WriteString(strings.Replace(url.QueryEscape(d.Text), "+", " ", -1))
		case OpDelete:
			sb.WriteByte('-')
			sb.WriteString(strconv.Itoa(utf8.RuneCountInString(d.Text)))
		case OpEqual:
			sb.WriteByte('=')
			sb.WriteString(strconv.Itoa(utf8.RuneCountInString(d.Text)))
		}
	}
	return unescaper.Replace(sb.String())
}

// DiffFromDelta rebuilds the full edit script from the source text and an
// encoded delta.
func (c *Config) DiffFromDelta(text1, delta string) ([]Diff, error) {
	var diffs []Diff
	i := 0
	runes := []rune(text1)
	for _, token := range strings.Split(delta, "\t") {
		if len(token) == 0 {
			// Blank tokens are ok (from a trailing \t).
			continue
		}
		// Each token begins with a one character parameter specifying the
		// operation of this token.
		param := token[1:]
		switch op := token[0]; op {
		case '+':
			// Decode would change all "+" to " ".
			param = strings.Replace(param, "+", "%2b", -1)
			param, err := url.QueryUnescape(param)
			if err != nil {
				return nil, err
			}
			if !utf8.ValidString(param) {
				return nil, fmt.Errorf("invalid UTF-8 token: %q", param)
			}
			diffs = append(diffs, Diff{OpInsert, param})
		case '=', '-':
			n, err := strconv.ParseInt(param, 10, 0)
			if err != nil {
				return nil, err
			} else if n < 0 {
				return nil, errors.New("Negative number in DiffFromDelta: " + param)
			}
			i += int(n)
			if i > len(runes) {
				// Out of bounds; the final length check reports it.
				break
			}
			text := string(runes[i-int(n) : i])
			if op == '=' {
				diffs = append(diffs, Diff{OpEqual, text})
			} else {
				diffs = append(diffs, Diff{OpDelete, text})
			}
		default:
			// Anything else is an error.
			return nil, errors.New("Invalid diff operation in DiffFromDelta: " + string(token[0]))
		}
	}
	if i != len(runes) {
		return nil, fmt.Errorf("Delta length (%v) is different from source text length (%v)", i, len(runes))
	}
	return diffs, nil
}

// DiffPrettyText renders an edit script as colored text for terminals.
func (c *Config) DiffPrettyText(diffs []Diff) string {
	var sb strings.Builder
	for _, d := range diffs {
		switch d.Op {
		case OpInsert:
			sb.WriteString("\x1b[32m")
			sb.WriteString(d.Text)
			sb.WriteString("\x1b[0m")
		case OpDelete:
			sb.WriteString("\x1b[31m")
			sb.WriteString(d.Text)
			sb.WriteString("\x1b[0m")
		case OpEqual:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}
