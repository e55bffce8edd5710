package dmp

import (
	"strings"
	"unicode/utf8"
)

// unescaper reverses the characters that url.QueryEscape encodes but that
// the delta and patch wire formats keep literal, for compatibility with
// JavaScript's encodeURI. It is case-sensitive on purpose: QueryEscape emits
// uppercase hex, so "%3f" from other producers is left alone and decoded on
// read instead.
var unescaper = strings.NewReplacer(
	"%21", "!", "%7E", "~", "%27", "'",
	"%28", "(", "%29", ")", "%3B", ";",
	"%2F", "/", "%3F", "?", "%3A", ":",
	"%40", "@", "%26", "&", "%3D", "=",
	"%2B", "+", "%24", "$", "%2C", ",",
	"%23", "#", "%2A", "*",
)

// indexOf returns the first byte index of pattern in s at or after s[i], or
// -1 when absent.
func indexOf(s, pattern string, i int) int {
	if i > len(s)-1 {
		return -1
	}
	if i <= 0 {
		return strings.Index(s, pattern)
	}
	n := strings.Index(s[i:], pattern)
	if n == -1 {
		return -1
	}
	return n + i
}

// lastIndexOf returns the last byte index of pattern in s starting at or
// before s[i], or -1 when absent.
func lastIndexOf(s, pattern string, i int) int {
	if i < 0 {
		return -1
	}
	if i >= len(s) {
		return strings.LastIndex(s, pattern)
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return strings.LastIndex(s[:i+size], pattern)
}

// runesIndex is the equivalent of strings.Index for rune slices.
func runesIndex(r1, r2 []rune) int {
	last := len(r1) - len(r2)
	for i := 0; i <= last; i++ {
		if runesEqual(r1[i:i+len(r2)], r2) {
			return i
		}
	}
	return -1
}

// runesIndexOf returns the index of pattern in target at or after target[i].
func runesIndexOf(target, pattern []rune, i int) int {
	if i > len(target)-1 {
		return -1
	}
	if i <= 0 {
		return runesIndex(target, pattern)
	}
	n := runesIndex(target[i:], pattern)
	if n == -1 {
		return -1
	}
	return n + i
}

func runesEqual(r1, r2 []rune) bool {
	if len(r1) != len(r2) {
		return false
	}
	for i, c := range r1 {
		if c != r2[i] {
			return false
		}
	}
	return true
}

// commonPrefixLength returns the length of the common prefix of two rune
// slices.
func commonPrefixLength(text1, text2 []rune) int {
	// Linear search; see the comment in commonSuffixLength.
	n := 0
	for ; n < len(text1) && n < len(text2); n++ {
		if text1[n] != text2[n] {
			return n
		}
	}
	return n
}

// commonSuffixLength returns the length of the common suffix of two rune
// slices.
func commonSuffixLength(text1, text2 []rune) int {
	// Linear search rather than the binary search discussed at
	// https://neil.fraser.name/news/2007/10/09/ — on rune slices the linear
	// scan wins.
	i1, i2 := len(text1), len(text2)
	for n := 0; ; n++ {
		i1--
		i2--
		if i1 < 0 || i2 < 0 || text1[i1] != text2[i2] {
			return n
		}
	}
}

// splice removes amount elements from diffs at index i, replacing them with
// elements.
func splice(diffs []Diff, i, amount int, elements ...Diff) []Diff {
	if len(elements) == amount {
		// Overwrite the relevant items directly.
		copy(diffs[i:], elements)
		return diffs
	}
	if len(elements) < amount {
		// Fewer new items than old: copy in, shift the tail left, and zero
		// the stranded entries so they can be collected.
		copy(diffs[i:], elements)
		copy(diffs[i+len(elements):], diffs[i+amount:])
		end := len(diffs) - amount + len(elements)
		tail := diffs[end:]
		for j := range tail {
			tail[j] = Diff{}
		}
		return diffs[:end]
	}
	// More new items than old: grow, shift the tail right, copy in.
	need := len(diffs) - amount + len(elements)
	for len(diffs) < need {
		diffs = append(diffs, Diff{})
	}
	copy(diffs[i+len(elements):], diffs[i+amount:])
	copy(diffs[i:], elements)
	return diffs
}

func intArrayToString(ns []uint32) string {
	if len(ns) == 0 {
		return ""
	}
	b := make([]byte, 0, len(ns)*4)
	for _, n := range ns {
		b = appendUint(b, n)
		b = append(b, ',')
	}
	return string(b[:len(b)-1])
}

func appendUint(b []byte, n uint32) []byte {
	if n >= 10 {
		b = appendUint(b, n/10)
	}
	return append(b, byte('0'+n%10))
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func max(x, y int) int {
	if x > y {
		return x
	}
	return y
}
