package indicators

import (
	"fmt"
	"slices"
	"strings"
)

// Tag groups.
const (
	GroupUseCase        = "use_case"
	GroupMathBasis      = "math_basis"
	GroupDataInput      = "data_input"
	GroupSignalType     = "signal_type"
	GroupOutputFormat   = "output_format"
	GroupTimeframe      = "timeframe"
	GroupComplexity     = "complexity"
	GroupMarket         = "market"
	GroupStrategy       = "strategy"
	GroupSmoothing      = "smoothing"
	GroupMethodology    = "methodology"
	GroupInterpretation = "interpretation"
)

// Tag is one classification of an indicator, e.g. use_case=trend_identification.
// Tags describe indicators for discovery; no calculation reads them.
type Tag struct {
	Group string
	Value string
}

func (t Tag) String() string {
	return t.Group + "=" + t.Value
}

// ParseTag parses "group=value".
func ParseTag(s string) (Tag, error) {
	group, value, ok := strings.Cut(strings.TrimSpace(s), "=")
	group = strings.ToLower(strings.TrimSpace(group))
	value = strings.ToLower(strings.TrimSpace(value))
	if !ok || group == "" || value == "" {
		return Tag{}, fmt.Errorf("tag %q: want group=value", s)
	}
	return Tag{Group: group, Value: value}, nil
}

// TagSet is a sorted, duplicate-free list of tags.
type TagSet []Tag

// NewTagSet sorts and deduplicates tags.
func NewTagSet(tags ...Tag) TagSet {
	ts := slices.Clone(tags)
	slices.SortFunc(ts, compareTags)
	return slices.Compact(ts)
}

func compareTags(a, b Tag) int {
	if c := strings.Compare(a.Group, b.Group); c != 0 {
		return c
	}
	return strings.Compare(a.Value, b.Value)
}

// Has reports whether t is in the set.
func (ts TagSet) Has(t Tag) bool {
	_, found := slices.BinarySearchFunc(ts, t, compareTags)
	return found
}

// HasAll reports whether every tag is in the set.
func (ts TagSet) HasAll(tags ...Tag) bool {
	for _, t := range tags {
		if !ts.Has(t) {
			return false
		}
	}
	return true
}

// Values returns the values of one group.
func (ts TagSet) Values(group string) []string {
	var out []string
	for _, t := range ts {
		if t.Group == group {
			out = append(out, t.Value)
		}
	}
	return out
}

func (ts TagSet) String() string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

// tagged is embedded by every indicator. The set is built once in the
// constructor and only copies leave it.
type tagged struct {
	tags TagSet
}

func (t tagged) Tags() TagSet {
	return slices.Clone(t.tags)
}

// tagSpec is a compact way to declare tags: group followed by its values.
type tagSpec map[string][]string

func (spec tagSpec) build() tagged {
	var tags []Tag
	for group, values := range spec {
		for _, v := range values {
			tags = append(tags, Tag{Group: group, Value: v})
		}
	}
	return tagged{tags: NewTagSet(tags...)}
}
