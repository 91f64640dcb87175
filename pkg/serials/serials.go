// Package serials formats and allocates document serial numbers such as
// PN-005 (Personal), CN-012 (Company) and DN-003 (Director).
package serials

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/agentstation/docledger/pkg/constants"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
)

// Serial prefixes.
const (
	PrefixPersonal = "PN"
	PrefixCompany  = "CN"
	PrefixDirector = "DN"
)

// Prefix returns the serial prefix for kind. Unknown kinds use the
// Director prefix.
func Prefix(kind documents.Kind) string {
	switch kind {
	case documents.KindPersonal:
		return PrefixPersonal
	case documents.KindCompany:
		return PrefixCompany
	default:
		return PrefixDirector
	}
}

// Format renders a serial with a sequence zero-padded to three digits.
// Sequences past 999 widen rather than wrap.
func Format(kind documents.Kind, seq int) string {
	return fmt.Sprintf("%s-%0*d", Prefix(kind), constants.SerialDigits, seq)
}

// Parse splits a serial into its prefix and sequence.
func Parse(serial string) (string, int, error) {
	prefix, digits, ok := strings.Cut(strings.TrimSpace(serial), "-")
	if !ok || digits == "" {
		return "", 0, errors.NewValidationError("serial", serial, "expected PREFIX-NNN")
	}
	switch prefix {
	case PrefixPersonal, PrefixCompany, PrefixDirector:
	default:
		return "", 0, errors.NewValidationError("serial", serial, "unknown prefix "+prefix)
	}
	seq, err := strconv.Atoi(digits)
	if err != nil || seq < 0 {
		return "", 0, errors.NewValidationError("serial", serial, "sequence is not a number")
	}
	return prefix, seq, nil
}

// Seeds are the next unused sequence per kind as reported by the service.
type Seeds struct {
	Personal int `json:"personal"`
	Company  int `json:"company"`
	Director int `json:"director"`
}

// Allocator hands out consecutive serials per kind from one set of seeds.
//
// The seeds come from a single read of the service's counters and are
// advanced in memory only. Two allocators seeded from the same read, in this
// process or another, will hand out the same serials. The service offers no
// lock or reservation to prevent that, so callers must treat a collision as
// a possible write failure rather than something this type can rule out.
type Allocator struct {
	mu   sync.Mutex
	next map[string]int
}

// NewAllocator seeds an allocator.
func NewAllocator(seeds Seeds) *Allocator {
	return &Allocator{
		next: map[string]int{
			PrefixPersonal: seeds.Personal,
			PrefixCompany:  seeds.Company,
			PrefixDirector: seeds.Director,
		},
	}
}

// Next returns the next serial for kind and advances its counter.
func (a *Allocator) Next(kind documents.Kind) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	prefix := Prefix(kind)
	seq := a.next[prefix]
	a.next[prefix] = seq + 1
	return Format(kind, seq)
}

// Peek returns the serial Next would return without advancing.
func (a *Allocator) Peek(kind documents.Kind) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Format(kind, a.next[Prefix(kind)])
}
