// Package inmem contains the in-memory implementation of the rel.Dataset
// interface. It is the default backend for tests and for configurations
// without a storage path.
package inmem

import (
	"sync"

	"github.com/featurebasedb/rel"
)

// Ensure type implements interface.
var _ rel.Dataset = (*Dataset)(nil)

// Dataset is a mutex-guarded, slice-backed dataset. Its natural order is
// insertion order, which is stable across reads. Each mutating method holds
// the lock for its whole call, making every mutation atomic with respect to
// concurrent use.
type Dataset struct {
	mu     sync.RWMutex
	tuples rel.Tuples
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{}
}

// Insert stores a copy of t and returns it.
func (d *Dataset) Insert(t rel.Tuple) (rel.Tuple, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	stored := t.Copy()
	d.tuples = append(d.tuples, stored)
	return stored.Copy(), nil
}

// Update overlays t onto every tuple matching criteria and returns copies of
// the updated tuples.
func (d *Dataset) Update(criteria rel.Predicate, t rel.Tuple) (rel.Tuples, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out rel.Tuples
	for i, existing := range d.tuples {
		if criteria != nil && !criteria(existing) {
			continue
		}
		updated := existing.Merge(t)
		d.tuples[i] = updated
		out = append(out, updated.Copy())
	}
	return out, nil
}

// Delete removes every tuple matching criteria and returns the count.
func (d *Dataset) Delete(criteria rel.Predicate) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.tuples[:0]
	n := 0
	for _, existing := range d.tuples {
		if criteria == nil || criteria(existing) {
			n++
			continue
		}
		kept = append(kept, existing)
	}
	d.tuples = kept
	return n, nil
}

// Filter returns a lazy view restricted to tuples matching p.
func (d *Dataset) Filter(p rel.Predicate) rel.Dataset {
	return rel.NewView(d, []rel.Predicate{p}, nil)
}

// Order returns a lazy view ordered by the named attributes.
func (d *Dataset) Order(attrs ...string) rel.Dataset {
	return rel.NewView(d, nil, attrs)
}

// Tuples returns copies of the dataset's tuples in insertion order.
func (d *Dataset) Tuples() (rel.Tuples, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tuples.Copy(), nil
}

// Len returns the number of stored tuples.
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.tuples)
}
