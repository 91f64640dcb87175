package reconcile

import (
	"fmt"
	"strings"
)

// TieBreak decides which record survives when two versions of one serial
// carry the same timestamp.
type TieBreak string

const (
	// TieKeepFirst keeps the version seen first, so earlier sources win.
	TieKeepFirst TieBreak = "keep-first"

	// TieKeepLatest merges the later version over the earlier one.
	TieKeepLatest TieBreak = "keep-latest"
)

// String returns the tie-break name.
func (tb TieBreak) String() string {
	return string(tb)
}

// Valid reports whether tb is a known tie-break.
func (tb TieBreak) Valid() bool {
	return tb == TieKeepFirst || tb == TieKeepLatest
}

// ParseTieBreak reads a tie-break name. Blank input selects TieKeepFirst.
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first", string(TieKeepFirst):
		return TieKeepFirst, nil
	case "latest", "last", string(TieKeepLatest):
		return TieKeepLatest, nil
	default:
		return "", fmt.Errorf("unknown tie-break %q (want %s or %s)", s, TieKeepFirst, TieKeepLatest)
	}
}
