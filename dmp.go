// Package dmp provides robust algorithms for computing differences between
// two texts, for fuzzily locating a pattern within a text, and for building
// and applying patches against texts that may have drifted since the patch
// was made.
package dmp

import (
	"time"
)

// Op is the edit operation type.
type Op int

// Edit operations.
const (
	// OpDelete represents text removed from the source.
	OpDelete Op = -1
	// OpInsert represents text added by the destination.
	OpInsert Op = 1
	// OpEqual represents text common to source and destination.
	OpEqual Op = 0
)

// String satisfies the fmt.Stringer interface.
func (op Op) String() string {
	switch op {
	case OpDelete:
		return "Delete"
	case OpInsert:
		return "Insert"
	case OpEqual:
		return "Equal"
	}
	return "Unknown"
}

// Diff is a single edit operation and the text it applies to. A slice of
// Diff values forms an edit script: concatenating the text of every
// non-insert edit yields the source, every non-delete edit the destination.
type Diff struct {
	Op   Op
	Text string
}

// Config holds the tuning parameters shared by the diff, match and patch
// operations. A Config is read-only during calls, so a value configured once
// at startup may be used from multiple goroutines.
type Config struct {
	// DiffTimeout is how long to map a diff before giving up and falling
	// back to a trivial delete+insert (0 for no limit).
	DiffTimeout time.Duration
	// DiffEditCost is the cost of an empty edit operation in terms of edit
	// characters, used by the efficiency cleanup.
	DiffEditCost int
	// DiffDualThreshold is the combined input length above which the diff
	// core searches from both ends of the texts at once.
	DiffDualThreshold int

	// MatchThreshold is the score at which no match is declared (0.0 is a
	// perfect match, 1.0 a very loose one).
	MatchThreshold float64
	// MatchDistance scales the location penalty: a match this many
	// characters from the expected location adds 1.0 to its score (0
	// requires an exact location, 1000+ allows a broad search).
	MatchDistance int
	// MatchMaxBits is the number of bits in an int, bounding the longest
	// pattern the bit-parallel search can handle.
	MatchMaxBits int

	// PatchDeleteThreshold is how closely the contents of a large deleted
	// block must match the expected contents when applying drifted patches.
	// MatchThreshold still governs how closely the end points must match.
	PatchDeleteThreshold float64
	// PatchMargin is the number of context characters kept around each
	// patch hunk.
	PatchMargin int
}

// NewDefaultConfig creates a new configuration with default parameters.
func NewDefaultConfig() *Config {
	return &Config{
		DiffTimeout:          time.Second,
		DiffEditCost:         4,
		DiffDualThreshold:    32,
		MatchThreshold:       0.5,
		MatchDistance:        1000,
		MatchMaxBits:         32,
		PatchDeleteThreshold: 0.5,
		PatchMargin:          4,
	}
}
