package rel

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Tuple is a single structured record: a mapping from attribute name to
// value. A tuple is not required to satisfy any schema until it is validated
// or coerced.
type Tuple map[string]interface{}

// Tuples is an ordered collection of tuples.
type Tuples []Tuple

// Get returns the value for the named attribute and whether it was present.
func (t Tuple) Get(name string) (interface{}, bool) {
	v, ok := t[name]
	return v, ok
}

// Has reports whether every named attribute is present.
func (t Tuple) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := t[name]; !ok {
			return false
		}
	}
	return true
}

// Copy returns a shallow copy of the tuple.
func (t Tuple) Copy() Tuple {
	out := make(Tuple, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Merge returns a new tuple containing t's attributes overlaid with other's.
// Attributes present in both take other's value. Neither input is mutated.
func (t Tuple) Merge(other Tuple) Tuple {
	out := t.Copy()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Project returns a new tuple containing only the named attributes. Absent
// attributes are simply omitted.
func (t Tuple) Project(names ...string) Tuple {
	out := make(Tuple, len(names))
	for _, name := range names {
		if v, ok := t[name]; ok {
			out[name] = v
		}
	}
	return out
}

// String returns a deterministic representation with attributes in name
// order, suitable for logging.
func (t Tuple) String() string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("(")
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", name, t[name])
	}
	sb.WriteString(")")
	return sb.String()
}

// Copy returns a new slice of shallow-copied tuples.
func (ts Tuples) Copy() Tuples {
	out := make(Tuples, len(ts))
	for i, t := range ts {
		out[i] = t.Copy()
	}
	return out
}

// CompareValues orders two attribute values. Values of different dynamic
// types compare by their formatted representation, so sorting is total and
// deterministic even over loosely typed tuples.
func CompareValues(a, b interface{}) int {
	switch av := a.(type) {
	case int:
		if bv, ok := toInt64(b); ok {
			return compareInt64(int64(av), bv)
		}
	case int64:
		if bv, ok := toInt64(b); ok {
			return compareInt64(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case !av && bv:
				return -1
			case av && !bv:
				return 1
			}
			return 0
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SortTuples stable-sorts ts in place by the named attributes, first name
// most significant. Tuples missing an attribute sort before those that have
// it.
func SortTuples(ts Tuples, attrs []string) {
	if len(attrs) == 0 {
		return
	}
	sort.SliceStable(ts, func(i, j int) bool {
		for _, attr := range attrs {
			av, aok := ts[i][attr]
			bv, bok := ts[j][attr]
			if !aok || !bok {
				if aok == bok {
					continue
				}
				return !aok
			}
			if c := CompareValues(av, bv); c != 0 {
				return c < 0
			}
		}
		return false
	})
}
