package fieldstats

import (
	"fmt"
	"sort"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/mlanham/csvsleuth/internal/classify"
)

// Case classifies the letter case observed across a field's values.
type Case int

const (
	CaseUnknown Case = iota
	CaseLower
	CaseUpper
	CaseMixed
	CaseNA
)

func (c Case) String() string {
	switch c {
	case CaseLower:
		return "lower"
	case CaseUpper:
		return "upper"
	case CaseMixed:
		return "mixed"
	case CaseNA:
		return "n/a"
	default:
		return "unknown"
	}
}

// FreqMap counts occurrences of each distinct token observed for a field.
type FreqMap map[string]int

// Keys returns the distinct tokens in sorted order.
func (f FreqMap) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Total returns the sum of all occurrence counts.
func (f FreqMap) Total() int {
	total := 0
	for _, n := range f {
		total += n
	}
	return total
}

// Stats derives per-field statistics from raw string values, excluding
// tokens the classifier reports as unknown. Statistics over a FreqMap
// operate on its Keys; counts never participate.
type Stats struct {
	clf *classify.Classifier
}

// New builds a Stats using the given classifier, or the default one when
// nil is passed.
func New(clf *classify.Classifier) *Stats {
	if clf == nil {
		clf = classify.Default
	}
	return &Stats{clf: clf}
}

// GetCase determines the overall letter case of a string-typed field.
// Any other declared type yields CaseNA without inspecting values.
// Unknown and numeric values do not vote. Priority: any individually
// mixed-case value wins, then only-lower, then only-upper; lower and upper
// together also count as mixed; nothing classifiable is unknown.
func (s *Stats) GetCase(vt classify.ValueType, values []string) Case {
	if vt != classify.TypeString {
		return CaseNA
	}

	var lower, upper, mixed int
	for _, v := range values {
		switch {
		case s.clf.IsUnknown(v), s.clf.IsInteger(v), s.clf.IsFloat(v):
			// excluded from the vote
		case isLower(v):
			lower++
		case isUpper(v):
			upper++
		default:
			mixed++
		}
	}

	switch {
	case mixed > 0:
		return CaseMixed
	case lower > 0 && upper == 0:
		return CaseLower
	case upper > 0 && lower == 0:
		return CaseUpper
	case lower > 0 && upper > 0:
		return CaseMixed
	default:
		return CaseUnknown
	}
}

// GetMin returns the smallest non-unknown value under the type-appropriate
// ordering: numeric for integer/float, lexicographic otherwise. Numeric
// results are re-rendered as strings. ok is false when no usable value
// remains. An out-of-range vt is a contract violation and errors.
func (s *Stats) GetMin(vt classify.ValueType, values []string) (string, bool, error) {
	return s.extremum(vt, values, false)
}

// GetMax is the mirror of GetMin.
func (s *Stats) GetMax(vt classify.ValueType, values []string) (string, bool, error) {
	return s.extremum(vt, values, true)
}

func (s *Stats) extremum(vt classify.ValueType, values []string, wantMax bool) (string, bool, error) {
	if !vt.Valid() {
		return "", false, fmt.Errorf("fieldstats: invalid value type %d", int(vt))
	}

	switch vt {
	case classify.TypeInteger:
		var best int64
		found := false
		for _, v := range values {
			if s.clf.IsUnknown(v) {
				continue
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				continue
			}
			if !found || (wantMax && n > best) || (!wantMax && n < best) {
				best = n
				found = true
			}
		}
		if !found {
			return "", false, nil
		}
		return strconv.FormatInt(best, 10), true, nil

	case classify.TypeFloat:
		var best float64
		found := false
		for _, v := range values {
			if s.clf.IsUnknown(v) {
				continue
			}
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			if !found || (wantMax && n > best) || (!wantMax && n < best) {
				best = n
				found = true
			}
		}
		if !found {
			return "", false, nil
		}
		return strconv.FormatFloat(best, 'g', -1, 64), true, nil

	default:
		// string, timestamp and unknown all compare lexicographically
		var best string
		found := false
		for _, v := range values {
			if s.clf.IsUnknown(v) {
				continue
			}
			if !found || (wantMax && v > best) || (!wantMax && v < best) {
				best = v
				found = true
			}
		}
		return best, found, nil
	}
}

// MaxLength returns the character count of the longest non-unknown value,
// or 0 when every value is unknown or the input is empty.
func (s *Stats) MaxLength(values []string) int {
	maxLen := 0
	for _, v := range values {
		if s.clf.IsUnknown(v) {
			continue
		}
		if n := utf8.RuneCountInString(v); n > maxLen {
			maxLen = n
		}
	}
	return maxLen
}

// MinLength returns the character count of the shortest non-unknown value.
// ok is false when every value is unknown or the input is empty; callers
// must not read the length in that case.
func (s *Stats) MinLength(values []string) (int, bool) {
	minLen := 0
	found := false
	for _, v := range values {
		if s.clf.IsUnknown(v) {
			continue
		}
		n := utf8.RuneCountInString(v)
		if !found || n < minLen {
			minLen = n
			found = true
		}
	}
	return minLen, found
}

// isLower reports whether every cased rune is lowercase and at least one
// cased rune exists.
func isLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}

// isUpper reports whether every cased rune is uppercase and at least one
// cased rune exists.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
