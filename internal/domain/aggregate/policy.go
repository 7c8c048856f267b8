// Package aggregate computes dashboard metrics from a filtered table. Every
// function is pure over its input table.
package aggregate

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/mailboard/internal/domain/model"
)

// Policy controls how placeholder values are treated.
type Policy struct {
	// ExcludeInvalid drops placeholder values ("", "--", "0", "Unknown")
	// from every dimensional grouping and from the brand denominator.
	ExcludeInvalid bool `json:"exclude_invalid"`
}

// DefaultPolicy excludes placeholders.
func DefaultPolicy() Policy { return Policy{ExcludeInvalid: true} }

// keep reports whether a dimension value participates under the policy.
func (p Policy) keep(v string) bool {
	return !p.ExcludeInvalid || !model.Placeholder(v)
}

// TopN truncates grouped results. All (0) means no truncation.
type TopN int

// Top-N selectors offered by the filter surface.
const (
	All   TopN = 0
	Top5  TopN = 5
	Top10 TopN = 10
	Top20 TopN = 20
)

// ParseTopN accepts "5", "10", "20" and "all". An empty string yields def.
func ParseTopN(s string, def TopN) (TopN, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "":
		return def, nil
	case "all":
		return All, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || !slices.Contains([]TopN{Top5, Top10, Top20}, TopN(n)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopN, s)
	}
	return TopN(n), nil
}

func (n TopN) String() string {
	if n == All {
		return "all"
	}
	return strconv.Itoa(int(n))
}

func (n TopN) limit(length int) int {
	if n <= All || int(n) > length {
		return length
	}
	return int(n)
}
