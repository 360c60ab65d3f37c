package classify

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueType identifies what kind of data a field holds.
type ValueType int

const (
	TypeUnknown ValueType = iota
	TypeInteger
	TypeFloat
	TypeTimestamp
	TypeString
)

// Valid reports whether t is one of the declared value types.
func (t ValueType) Valid() bool {
	return t >= TypeUnknown && t <= TypeString
}

func (t ValueType) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeTimestamp:
		return "timestamp"
	case TypeString:
		return "string"
	default:
		return "invalid"
	}
}

// ParseValueType converts a textual type name to its ValueType.
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unknown":
		return TypeUnknown, nil
	case "integer", "int":
		return TypeInteger, nil
	case "float":
		return TypeFloat, nil
	case "timestamp":
		return TypeTimestamp, nil
	case "string":
		return TypeString, nil
	default:
		return TypeUnknown, fmt.Errorf("classify: unrecognized value type %q", s)
	}
}

// timestampLayouts is the accepted set of date/time shapes. Kept small on
// purpose: anything fancier belongs to the caller.
var timestampLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"02-Jan-2006",
}

// DefaultSentinels returns the standard markers treated as missing data.
// The empty string is always unknown and does not need to be listed.
func DefaultSentinels() []string {
	return []string{"unknown", "unk", "na", "n/a", "none", "null", "-"}
}

// Classifier decides what a single raw token represents. Sentinel matching
// is case-insensitive. The zero Classifier is not usable; construct with New.
type Classifier struct {
	sentinels map[string]struct{}
}

// New builds a Classifier with the given sentinel markers. With no
// arguments the default sentinel set is used.
func New(sentinels ...string) *Classifier {
	if len(sentinels) == 0 {
		sentinels = DefaultSentinels()
	}
	set := make(map[string]struct{}, len(sentinels))
	for _, s := range sentinels {
		set[strings.ToLower(s)] = struct{}{}
	}
	return &Classifier{sentinels: set}
}

// Default is a shared Classifier with the standard sentinel set.
var Default = New()

// IsUnknown reports whether the token represents missing data.
func (c *Classifier) IsUnknown(token string) bool {
	if token == "" {
		return true
	}
	_, ok := c.sentinels[strings.ToLower(token)]
	return ok
}

// IsInteger reports whether the token parses fully as a base-10 integer:
// an optional sign followed by digits only.
func (c *Classifier) IsInteger(token string) bool {
	return fastIsInt(token)
}

// IsFloat reports whether the token parses as a floating-point literal and
// is not already an integer.
func (c *Classifier) IsFloat(token string) bool {
	if !fastIsFloat(token) {
		return false
	}
	_, err := strconv.ParseFloat(token, 64)
	return err == nil
}

// IsTimestamp reports whether the token matches one of the accepted
// date/time layouts.
func (c *Classifier) IsTimestamp(token string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, token); err == nil {
			return true
		}
	}
	return false
}

// Classify maps a token to its ValueType, checking unknown, integer, float,
// and timestamp in order before falling through to string. Exactly one
// branch fires; unparseable tokens are simply strings, never errors.
func (c *Classifier) Classify(token string) ValueType {
	switch {
	case c.IsUnknown(token):
		return TypeUnknown
	case c.IsInteger(token):
		return TypeInteger
	case c.IsFloat(token):
		return TypeFloat
	case c.IsTimestamp(token):
		return TypeTimestamp
	default:
		return TypeString
	}
}

// fastIsInt checks the integer shape with a single byte scan, avoiding
// strconv for the common reject path.
func fastIsInt(str string) bool {
	if len(str) == 0 {
		return false
	}

	i := 0
	if str[0] == '-' || str[0] == '+' {
		if len(str) == 1 {
			return false
		}
		i = 1
	}

	for ; i < len(str); i++ {
		c := str[i]
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// fastIsFloat checks the float shape with a single byte scan. A dot or an
// exponent is required, so plain integers never match.
func fastIsFloat(str string) bool {
	if len(str) == 0 {
		return false
	}

	hasDot := false
	hasExp := false
	hasDigit := false
	i := 0

	if str[0] == '-' || str[0] == '+' {
		if len(str) == 1 {
			return false
		}
		i = 1
	}

	for ; i < len(str); i++ {
		c := str[i]
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case c == '.':
			if hasDot || hasExp {
				return false
			}
			hasDot = true
		case c == 'e' || c == 'E':
			if hasExp || !hasDigit || i == len(str)-1 {
				return false
			}
			hasExp = true
		case c == '-' || c == '+':
			// only valid immediately after the exponent marker
			if i == 0 || (str[i-1] != 'e' && str[i-1] != 'E') {
				return false
			}
		default:
			return false
		}
	}
	return hasDigit && (hasDot || hasExp)
}
