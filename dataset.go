package rel

// Predicate reports whether a tuple belongs to a restricted view.
type Predicate func(Tuple) bool

// Dataset is the storage collaborator consumed by relations and commands.
// Implementations must make each Insert, Update, and Delete atomic with
// respect to its own call; nothing above the dataset coordinates concurrent
// mutations.
//
// Tuples must be returned in a stable order: repeated iteration over an
// unchanged dataset yields the same sequence.
type Dataset interface {
	// Insert stores the tuple and returns it as stored.
	Insert(t Tuple) (Tuple, error)

	// Update overlays t onto every tuple matching criteria and returns the
	// updated tuples as stored.
	Update(criteria Predicate, t Tuple) (Tuples, error)

	// Delete removes every tuple matching criteria and returns how many
	// were removed.
	Delete(criteria Predicate) (int, error)

	// Filter returns a lazy view restricted to tuples matching p.
	Filter(p Predicate) Dataset

	// Order returns a lazy view ordered by the named attributes.
	Order(attrs ...string) Dataset

	// Tuples materializes the dataset's tuples in its stable order.
	Tuples() (Tuples, error)
}

// View layers restriction and ordering over a base dataset without copying
// it. Backends return Views from their Filter and Order methods so the
// layering logic lives in one place. Nothing is evaluated until Tuples is
// called. Inserts pass straight through to the base; updates and deletes
// combine the view's restrictions with the caller's criteria.
type View struct {
	base  Dataset
	preds []Predicate
	order []string
}

var _ Dataset = (*View)(nil)

// NewView wraps base in a view with the given restrictions and ordering.
func NewView(base Dataset, preds []Predicate, order []string) *View {
	return &View{base: base, preds: preds, order: order}
}

func (v *View) Insert(t Tuple) (Tuple, error) {
	return v.base.Insert(t)
}

func (v *View) Update(criteria Predicate, t Tuple) (Tuples, error) {
	return v.base.Update(v.combined(criteria), t)
}

func (v *View) Delete(criteria Predicate) (int, error) {
	return v.base.Delete(v.combined(criteria))
}

func (v *View) Filter(p Predicate) Dataset {
	preds := make([]Predicate, 0, len(v.preds)+1)
	preds = append(preds, v.preds...)
	preds = append(preds, p)
	return NewView(v.base, preds, v.order)
}

func (v *View) Order(attrs ...string) Dataset {
	return NewView(v.base, v.preds, attrs)
}

func (v *View) Tuples() (Tuples, error) {
	ts, err := v.base.Tuples()
	if err != nil {
		return nil, err
	}

	out := make(Tuples, 0, len(ts))
	for _, t := range ts {
		if v.matches(t) {
			out = append(out, t)
		}
	}
	SortTuples(out, v.order)
	return out, nil
}

func (v *View) matches(t Tuple) bool {
	for _, p := range v.preds {
		if !p(t) {
			return false
		}
	}
	return true
}

// combined ands the view's restrictions with criteria. A nil criteria
// matches everything within the view.
func (v *View) combined(criteria Predicate) Predicate {
	return func(t Tuple) bool {
		if !v.matches(t) {
			return false
		}
		if criteria == nil {
			return true
		}
		return criteria(t)
	}
}
