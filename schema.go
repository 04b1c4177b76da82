package rel

import (
	"fmt"
	"time"
)

// BaseType is the semantic type of an attribute.
type BaseType string

const (
	TypeInt       BaseType = "int"
	TypeString    BaseType = "string"
	TypeBool      BaseType = "bool"
	TypeFloat     BaseType = "float"
	TypeTimestamp BaseType = "timestamp"
)

// BaseTypeFromString converts s to a BaseType, or returns a configuration
// error if s names no known type.
func BaseTypeFromString(s string) (BaseType, error) {
	switch bt := BaseType(s); bt {
	case TypeInt, TypeString, TypeBool, TypeFloat, TypeTimestamp:
		return bt, nil
	}
	return "", NewErrConfiguration("unknown base type: '%s'", s)
}

// Attribute is one typed, named column of a schema. Immutable once declared.
type Attribute struct {
	Name       string   `json:"name"`
	Type       BaseType `json:"type"`
	PrimaryKey bool     `json:"primaryKey"`
}

// Schema is an ordered set of typed attributes for one relation, zero or
// more of which are designated primary key. Attribute names are unique
// within a schema. Schemas are immutable after construction and shared
// read-only by the commands bound to their relation.
type Schema struct {
	attrs  []Attribute
	byName map[string]int
}

// NewSchema builds a schema from the given attributes, in order. Duplicate
// names and unknown types are configuration errors.
func NewSchema(attrs ...Attribute) (*Schema, error) {
	s := &Schema{
		attrs:  make([]Attribute, len(attrs)),
		byName: make(map[string]int, len(attrs)),
	}
	for i, attr := range attrs {
		if attr.Name == "" {
			return nil, NewErrConfiguration("schema attribute %d has no name", i)
		}
		if _, err := BaseTypeFromString(string(attr.Type)); err != nil {
			return nil, NewErrConfiguration("schema attribute '%s' has unknown type '%s'", attr.Name, attr.Type)
		}
		if _, ok := s.byName[attr.Name]; ok {
			return nil, NewErrConfiguration("schema attribute '%s' declared twice", attr.Name)
		}
		s.attrs[i] = attr
		s.byName[attr.Name] = i
	}
	return s, nil
}

// Attributes returns the schema's attributes in declaration order.
func (s *Schema) Attributes() []Attribute {
	out := make([]Attribute, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// Attribute returns the named attribute and whether it exists.
func (s *Schema) Attribute(name string) (Attribute, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Attribute{}, false
	}
	return s.attrs[i], true
}

// PrimaryKey returns the primary-key attributes in declaration order.
func (s *Schema) PrimaryKey() []Attribute {
	var out []Attribute
	for _, attr := range s.attrs {
		if attr.PrimaryKey {
			out = append(out, attr)
		}
	}
	return out
}

// PrimaryKeyNames returns the names of the primary-key attributes in
// declaration order.
func (s *Schema) PrimaryKeyNames() []string {
	pk := s.PrimaryKey()
	out := make([]string, len(pk))
	for i, attr := range pk {
		out[i] = attr.Name
	}
	return out
}

// Coerce returns a copy of t with every present attribute coerced to its
// declared type. Attributes not declared in the schema, or values that can
// not be coerced, produce a validation error whose payload names each
// offending attribute. Absent attributes are left absent; presence is a
// validator's concern, not the schema's.
func (s *Schema) Coerce(t Tuple) (Tuple, error) {
	out := make(Tuple, len(t))
	payload := map[string]interface{}{}

	for name, value := range t {
		attr, ok := s.Attribute(name)
		if !ok {
			payload[name] = "attribute is not declared in the schema"
			continue
		}
		v, err := coerceValue(attr.Type, value)
		if err != nil {
			payload[name] = err.Error()
			continue
		}
		out[name] = v
	}

	if len(payload) > 0 {
		return nil, NewErrValidation("tuple does not conform to schema", payload)
	}
	return out, nil
}

func coerceValue(typ BaseType, v interface{}) (interface{}, error) {
	switch typ {
	case TypeInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n == float64(int(n)) {
				return int(n), nil
			}
		}
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case TypeTimestamp:
		switch ts := v.(type) {
		case time.Time:
			return ts, nil
		case string:
			parsed, err := time.Parse(time.RFC3339, ts)
			if err == nil {
				return parsed, nil
			}
		}
	}
	return nil, fmt.Errorf("value '%v' is not coercible to type '%s'", v, typ)
}
