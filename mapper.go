package rel

// BuildFunc constructs a domain object from a tuple. Supplied explicitly at
// mapper-definition time so construction is a static, checked call rather
// than reflection.
type BuildFunc func(t Tuple) (interface{}, error)

// MapperConfig configures a new Mapper.
type MapperConfig struct {
	// Name identifies the mapper, e.g. in a Registry.
	Name string

	// Result declares the mapper's arity: One projects a single tuple, Many
	// projects each tuple of a collection. Defaults to One.
	Result Cardinality

	// Attributes lists the attributes that must be present on every input
	// tuple. An absent attribute fails the application with a mapping
	// error.
	Attributes []string

	// Build constructs the domain object from a tuple. Required.
	Build BuildFunc
}

// Mapper is a pure projection from tuple(s) to domain object(s). It is the
// terminal step of a pipeline or relation read: no side effects, no dataset
// access, and its output is never subject to cardinality rules.
type Mapper struct {
	name   string
	result Cardinality
	attrs  []string
	build  BuildFunc
}

// NewMapper builds a mapper. A missing build function or unknown arity is a
// configuration error raised here.
func NewMapper(cfg MapperConfig) (*Mapper, error) {
	if cfg.Build == nil {
		return nil, NewErrConfiguration("mapper '%s' has no build function", cfg.Name)
	}

	result := cfg.Result
	if result == "" {
		result = One
	}
	if _, err := CardinalityFromString(string(result)); err != nil {
		return nil, err
	}

	return &Mapper{
		name:   cfg.Name,
		result: result,
		attrs:  append([]string(nil), cfg.Attributes...),
		build:  cfg.Build,
	}, nil
}

// Name returns the mapper's name.
func (m *Mapper) Name() string { return m.name }

// Result returns the mapper's declared arity.
func (m *Mapper) Result() Cardinality { return m.result }

// Apply projects in — a Tuple for arity One, Tuples for arity Many — into a
// domain object or a slice of domain objects. An input of the wrong shape is
// a configuration error; a missing required attribute is a mapping error.
func (m *Mapper) Apply(in interface{}) (interface{}, error) {
	switch m.result {
	case Many:
		ts, ok := in.(Tuples)
		if !ok {
			return nil, NewErrConfiguration("mapper '%s' declared '%s' but was applied to %T", m.name, Many, in)
		}
		out := make([]interface{}, len(ts))
		for i, t := range ts {
			obj, err := m.applyOne(t)
			if err != nil {
				return nil, err
			}
			out[i] = obj
		}
		return out, nil
	default:
		t, ok := in.(Tuple)
		if !ok {
			return nil, NewErrConfiguration("mapper '%s' declared '%s' but was applied to %T", m.name, One, in)
		}
		return m.applyOne(t)
	}
}

func (m *Mapper) applyOne(t Tuple) (interface{}, error) {
	for _, attr := range m.attrs {
		if _, ok := t[attr]; !ok {
			return nil, NewErrMapping(m.name, attr)
		}
	}
	return m.build(t)
}

// runStep lets a mapper serve as a pipeline step.
func (m *Mapper) runStep(piped interface{}, upstream Tuples) (interface{}, error) {
	return m.Apply(piped)
}

func (m *Mapper) stepResult() Cardinality { return m.result }
