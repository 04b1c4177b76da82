package rel_test

import (
	"testing"

	"github.com/featurebasedb/rel"
	"github.com/stretchr/testify/assert"
)

func TestTuple(t *testing.T) {
	t.Run("Merge", func(t *testing.T) {
		a := rel.Tuple{"id": 1, "name": "Jane"}
		b := rel.Tuple{"name": "Joe", "age": 30}

		got := a.Merge(b)
		assert.Equal(t, rel.Tuple{"id": 1, "name": "Joe", "age": 30}, got)

		// Neither input was mutated.
		assert.Equal(t, rel.Tuple{"id": 1, "name": "Jane"}, a)
		assert.Equal(t, rel.Tuple{"name": "Joe", "age": 30}, b)
	})

	t.Run("Project", func(t *testing.T) {
		a := rel.Tuple{"id": 1, "name": "Jane"}
		assert.Equal(t, rel.Tuple{"name": "Jane"}, a.Project("name", "missing"))
	})

	t.Run("String", func(t *testing.T) {
		a := rel.Tuple{"name": "Jane", "id": 1}
		// Deterministic: attributes in name order.
		assert.Equal(t, "(id: 1, name: Jane)", a.String())
	})

	t.Run("SortTuples", func(t *testing.T) {
		ts := rel.Tuples{
			{"id": 2, "name": "b"},
			{"id": 1, "name": "c"},
			{"id": 2, "name": "a"},
		}
		rel.SortTuples(ts, []string{"id", "name"})
		assert.Equal(t, rel.Tuples{
			{"id": 1, "name": "c"},
			{"id": 2, "name": "a"},
			{"id": 2, "name": "b"},
		}, ts)
	})

	t.Run("CompareValues", func(t *testing.T) {
		tests := []struct {
			a, b interface{}
			exp  int
		}{
			{1, 2, -1},
			{2, 1, 1},
			{2, 2, 0},
			{"a", "b", -1},
			{false, true, -1},
			{1.5, 2.5, -1},
		}
		for _, test := range tests {
			assert.Equal(t, test.exp, rel.CompareValues(test.a, test.b))
		}
	})
}
