package rel

import (
	"github.com/featurebasedb/rel/errors"
	"github.com/featurebasedb/rel/logger"
)

// RelationConfig configures a new Relation.
type RelationConfig struct {
	// Name identifies the relation, e.g. in a Registry.
	Name string

	// Schema declares the relation's attributes. Required.
	Schema *Schema

	// Dataset is the backing collection. Required.
	Dataset Dataset

	// Seed tuples are coerced and inserted exactly once, at construction.
	// Reads never re-evaluate the seed.
	Seed Tuples

	// AutoID makes create commands fill an absent string primary key with a
	// generated UUID before insert.
	AutoID bool

	// Logger defaults to logger.NopLogger.
	Logger logger.Logger
}

// Relation is a named, lazy, schema-aware view bound to one dataset.
// Restrict, Project, and Order return derived relations sharing the same
// dataset; nothing touches storage until Tuples is called. Absent an
// explicit ordering, reads follow the dataset's natural order.
type Relation struct {
	name    string
	schema  *Schema
	dataset Dataset
	autoID  bool
	log     logger.Logger

	restriction []Predicate
	projection  []string
	ordering    []string
}

// NewRelation builds a relation and applies cfg.Seed to the dataset. A
// missing schema or dataset is a configuration error; a seed tuple that
// fails schema coercion fails construction.
func NewRelation(cfg RelationConfig) (*Relation, error) {
	if cfg.Name == "" {
		return nil, NewErrConfiguration("relation has no name")
	}
	if cfg.Schema == nil {
		return nil, NewErrConfiguration("relation '%s' has no schema", cfg.Name)
	}
	if cfg.Dataset == nil {
		return nil, NewErrConfiguration("relation '%s' has no dataset", cfg.Name)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NopLogger
	}

	r := &Relation{
		name:    cfg.Name,
		schema:  cfg.Schema,
		dataset: cfg.Dataset,
		autoID:  cfg.AutoID,
		log:     log,
	}

	for _, t := range cfg.Seed {
		coerced, err := cfg.Schema.Coerce(t)
		if err != nil {
			return nil, errors.Wrapf(err, "seeding relation '%s'", cfg.Name)
		}
		if _, err := cfg.Dataset.Insert(coerced); err != nil {
			return nil, errors.Wrapf(err, "seeding relation '%s'", cfg.Name)
		}
	}
	if len(cfg.Seed) > 0 {
		log.Debugf("relation %s: seeded %d tuples", cfg.Name, len(cfg.Seed))
	}

	return r, nil
}

// Name returns the relation's name.
func (r *Relation) Name() string { return r.name }

// Schema returns the relation's schema.
func (r *Relation) Schema() *Schema { return r.schema }

// Dataset returns the backing dataset.
func (r *Relation) Dataset() Dataset { return r.dataset }

// copyWith clones r so derived relations never mutate their parent.
func (r *Relation) copyWith() *Relation {
	out := *r
	out.restriction = append([]Predicate(nil), r.restriction...)
	out.projection = append([]string(nil), r.projection...)
	out.ordering = append([]string(nil), r.ordering...)
	return &out
}

// Restrict returns a derived relation limited to tuples matching p.
func (r *Relation) Restrict(p Predicate) *Relation {
	out := r.copyWith()
	out.restriction = append(out.restriction, p)
	return out
}

// Project returns a derived relation whose tuples carry only the named
// attributes.
func (r *Relation) Project(attrs ...string) *Relation {
	out := r.copyWith()
	out.projection = attrs
	return out
}

// Order returns a derived relation ordered by the named attributes.
func (r *Relation) Order(attrs ...string) *Relation {
	out := r.copyWith()
	out.ordering = attrs
	return out
}

// OrderByPrimaryKey returns a derived relation ordered by the schema's
// primary-key attributes.
func (r *Relation) OrderByPrimaryKey() *Relation {
	return r.Order(r.schema.PrimaryKeyNames()...)
}

// Tuples materializes the relation: restriction then ordering are pushed to
// the dataset, projection is applied to the result.
func (r *Relation) Tuples() (Tuples, error) {
	ds := r.dataset
	for _, p := range r.restriction {
		ds = ds.Filter(p)
	}
	if len(r.ordering) > 0 {
		ds = ds.Order(r.ordering...)
	}

	ts, err := ds.Tuples()
	if err != nil {
		return nil, errors.Wrapf(err, "reading relation '%s'", r.name)
	}

	if len(r.projection) > 0 {
		out := make(Tuples, len(ts))
		for i, t := range ts {
			out[i] = t.Project(r.projection...)
		}
		return out, nil
	}
	return ts, nil
}

// One materializes the relation and returns its single tuple, or a
// cardinality error if the relation holds zero or more than one tuple.
func (r *Relation) One() (Tuple, error) {
	ts, err := r.Tuples()
	if err != nil {
		return nil, err
	}
	if len(ts) != 1 {
		return nil, NewErrCardinality(One, len(ts))
	}
	return ts[0], nil
}
