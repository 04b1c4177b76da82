package rel

import (
	"github.com/featurebasedb/rel/errors"
	"github.com/featurebasedb/rel/logger"
	"github.com/gofrs/uuid"
)

// Cardinality declares the expected shape of a command's result: a single
// tuple or a collection.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// CardinalityFromString converts s to a Cardinality, or returns a
// configuration error if s names no known cardinality.
func CardinalityFromString(s string) (Cardinality, error) {
	switch c := Cardinality(s); c {
	case One, Many:
		return c, nil
	}
	return "", NewErrConfiguration("unknown result cardinality: '%s'", s)
}

// Kind selects a command's default execution step against the dataset.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// ExecuteFunc is a command's execution step. input is the tuple the command
// was called or bound with; upstream carries the raw output of the preceding
// pipeline step so dependent fields can be derived from it. Custom execute
// functions usually shape a tuple from input and upstream, then delegate to
// cmd.Relation()'s dataset (or to cmd.ExecuteDefault).
type ExecuteFunc func(cmd *Command, input Tuple, upstream ...Tuple) (Tuples, error)

// CriteriaFunc derives the dataset criteria for an update or delete from the
// command's input tuple.
type CriteriaFunc func(input Tuple) Predicate

// CommandConfig configures a new Command.
type CommandConfig struct {
	// Name identifies the command, e.g. in a Registry.
	Name string

	// Relation binds the command to a relation. Required.
	Relation *Relation

	// Kind selects the default execution step. Defaults to KindCreate.
	// Ignored when Execute is set, except as documentation.
	Kind Kind

	// Result declares the command's result cardinality. Defaults to One.
	// Anything other than One or Many is rejected here, at definition time.
	Result Cardinality

	// Validator, when present, runs before execution. A failure aborts the
	// call with no dataset mutation.
	Validator Validator

	// Criteria derives update/delete criteria from the input tuple.
	// Defaults to matching the input's primary-key attributes.
	Criteria CriteriaFunc

	// Execute overrides the default kind-based execution step.
	Execute ExecuteFunc

	// Logger defaults to logger.NopLogger.
	Logger logger.Logger
}

// Command is a named, validated mutation operation bound to one relation.
// Commands are immutable after construction: With returns a new command
// carrying a bound input and never mutates the original. A successful Call
// performs exactly one dataset mutation.
type Command struct {
	name      string
	relation  *Relation
	kind      Kind
	result    Cardinality
	validator Validator
	criteria  CriteriaFunc
	execute   ExecuteFunc
	bound     Tuple
	log       logger.Logger
}

// NewCommand builds a command. Unknown cardinalities and kinds are
// configuration errors raised here, never deferred to invocation.
func NewCommand(cfg CommandConfig) (*Command, error) {
	if cfg.Relation == nil {
		return nil, NewErrConfiguration("command '%s' has no relation", cfg.Name)
	}

	result := cfg.Result
	if result == "" {
		result = One
	}
	if _, err := CardinalityFromString(string(result)); err != nil {
		return nil, err
	}

	kind := cfg.Kind
	if kind == "" {
		kind = KindCreate
	}
	switch kind {
	case KindCreate, KindUpdate, KindDelete:
	default:
		return nil, NewErrConfiguration("unknown command kind: '%s'", kind)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NopLogger
	}

	return &Command{
		name:      cfg.Name,
		relation:  cfg.Relation,
		kind:      kind,
		result:    result,
		validator: cfg.Validator,
		criteria:  cfg.Criteria,
		execute:   cfg.Execute,
		log:       log,
	}, nil
}

// Name returns the command's name.
func (c *Command) Name() string { return c.name }

// Relation returns the relation the command is bound to.
func (c *Command) Relation() *Relation { return c.relation }

// Result returns the command's declared result cardinality.
func (c *Command) Result() Cardinality { return c.result }

// With returns a new command pre-loaded with bound, deferring execution; the
// dataset is not touched and the receiver is not mutated. Binding twice
// overlays the later tuple onto the earlier one.
func (c *Command) With(bound Tuple) *Command {
	out := *c
	if c.bound != nil {
		out.bound = c.bound.Merge(bound)
	} else {
		out.bound = bound.Copy()
	}
	return &out
}

// Call validates the effective input (any bound tuple overlaid onto input),
// runs the execution step, and shapes the output by the declared
// cardinality: One yields a single Tuple and fails with a cardinality error
// on any other count; Many yields Tuples. A validation failure returns the
// validator's error untouched and performs no mutation. upstream, when
// present, is passed through to the execution step for dependent-field
// derivation.
func (c *Command) Call(input Tuple, upstream ...Tuple) (interface{}, error) {
	in := input
	if in == nil {
		in = Tuple{}
	}
	if c.bound != nil {
		in = in.Merge(c.bound)
	}

	if c.validator != nil {
		if err := c.validator.Validate(in); err != nil {
			return nil, err
		}
	}

	out, err := c.exec(in, upstream...)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("command %s: executed with %d result tuples", c.name, len(out))

	switch c.result {
	case One:
		if len(out) != 1 {
			return nil, NewErrCardinality(One, len(out))
		}
		return out[0], nil
	default:
		return out, nil
	}
}

// CallOne is Call for commands declared One, typed to a single tuple.
func (c *Command) CallOne(input Tuple, upstream ...Tuple) (Tuple, error) {
	out, err := c.Call(input, upstream...)
	if err != nil {
		return nil, err
	}
	t, ok := out.(Tuple)
	if !ok {
		return nil, NewErrCardinality(One, len(out.(Tuples)))
	}
	return t, nil
}

func (c *Command) exec(in Tuple, upstream ...Tuple) (Tuples, error) {
	if c.execute != nil {
		return c.execute(c, in, upstream...)
	}
	return c.ExecuteDefault(in)
}

// ExecuteDefault runs the kind-selected primitive against the relation's
// dataset: insert for create, update/delete driven by the command's
// criteria otherwise. Custom execute functions may delegate here after
// enriching their input.
func (c *Command) ExecuteDefault(in Tuple) (Tuples, error) {
	switch c.kind {
	case KindUpdate:
		return c.executeUpdate(in)
	case KindDelete:
		return c.executeDelete(in)
	default:
		return c.executeCreate(in)
	}
}

func (c *Command) executeCreate(in Tuple) (Tuples, error) {
	schema := c.relation.Schema()

	t, err := schema.Coerce(in)
	if err != nil {
		return nil, err
	}

	if c.relation.autoID {
		t, err = fillAutoID(schema, t)
		if err != nil {
			return nil, err
		}
	}

	stored, err := c.relation.Dataset().Insert(t)
	if err != nil {
		return nil, errors.Wrapf(err, "command '%s': inserting", c.name)
	}
	return Tuples{stored}, nil
}

func (c *Command) executeUpdate(in Tuple) (Tuples, error) {
	schema := c.relation.Schema()

	t, err := schema.Coerce(in)
	if err != nil {
		return nil, err
	}

	updated, err := c.relation.Dataset().Update(c.criteriaFor(t), t)
	if err != nil {
		return nil, errors.Wrapf(err, "command '%s': updating", c.name)
	}
	return updated, nil
}

func (c *Command) executeDelete(in Tuple) (Tuples, error) {
	crit := c.criteriaFor(in)

	// Collect the victims first so the command's output reflects what was
	// removed; the delete itself is still a single dataset call.
	victims, err := c.relation.Dataset().Filter(crit).Tuples()
	if err != nil {
		return nil, errors.Wrapf(err, "command '%s': reading victims", c.name)
	}
	if _, err := c.relation.Dataset().Delete(crit); err != nil {
		return nil, errors.Wrapf(err, "command '%s': deleting", c.name)
	}
	return victims, nil
}

// criteriaFor resolves the command's criteria for in: the configured
// CriteriaFunc if present, otherwise a match on in's primary-key attributes.
func (c *Command) criteriaFor(in Tuple) Predicate {
	if c.criteria != nil {
		return c.criteria(in)
	}
	pk := c.relation.Schema().PrimaryKeyNames()
	want := in.Project(pk...)
	return func(t Tuple) bool {
		for _, name := range pk {
			wv, ok := want[name]
			if !ok {
				continue
			}
			tv, ok := t[name]
			if !ok || CompareValues(wv, tv) != 0 {
				return false
			}
		}
		return true
	}
}

// fillAutoID assigns a generated UUID to a single absent string primary key.
func fillAutoID(schema *Schema, t Tuple) (Tuple, error) {
	pk := schema.PrimaryKey()
	if len(pk) != 1 || pk[0].Type != TypeString {
		return t, nil
	}
	if _, ok := t[pk[0].Name]; ok {
		return t, nil
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Wrap(err, "generating tuple id")
	}
	out := t.Copy()
	out[pk[0].Name] = id.String()
	return out, nil
}

// runStep lets a command serve as a pipeline step: the piped value becomes
// the call input (a Many predecessor can not feed a command directly).
func (c *Command) runStep(piped interface{}, upstream Tuples) (interface{}, error) {
	var in Tuple
	switch v := piped.(type) {
	case nil:
		in = Tuple{}
	case Tuple:
		in = v
	default:
		return nil, NewErrConfiguration("command '%s' requires a single tuple input, got %T", c.name, piped)
	}
	return c.Call(in, upstream...)
}

// stepResult reports the shape of the step's output for construction-time
// pipeline checks.
func (c *Command) stepResult() Cardinality { return c.result }
