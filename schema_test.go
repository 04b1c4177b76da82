package rel_test

import (
	"testing"

	"github.com/featurebasedb/rel"
	"github.com/featurebasedb/rel/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		tests := []struct {
			name  string
			attrs []rel.Attribute
			expOK bool
		}{
			{
				name: "valid",
				attrs: []rel.Attribute{
					{Name: "id", Type: rel.TypeInt, PrimaryKey: true},
					{Name: "name", Type: rel.TypeString},
				},
				expOK: true,
			},
			{
				name: "duplicate-name",
				attrs: []rel.Attribute{
					{Name: "id", Type: rel.TypeInt},
					{Name: "id", Type: rel.TypeString},
				},
				expOK: false,
			},
			{
				name: "unknown-type",
				attrs: []rel.Attribute{
					{Name: "id", Type: rel.BaseType("blob")},
				},
				expOK: false,
			},
			{
				name: "unnamed",
				attrs: []rel.Attribute{
					{Type: rel.TypeInt},
				},
				expOK: false,
			},
		}

		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				schema, err := rel.NewSchema(test.attrs...)
				if test.expOK {
					require.NoError(t, err)
					assert.Equal(t, test.attrs, schema.Attributes())
				} else {
					require.Error(t, err)
					assert.True(t, errors.Is(err, rel.ErrConfiguration))
				}
			})
		}
	})

	t.Run("PrimaryKey", func(t *testing.T) {
		schema, err := rel.NewSchema(
			rel.Attribute{Name: "org", Type: rel.TypeString, PrimaryKey: true},
			rel.Attribute{Name: "id", Type: rel.TypeInt, PrimaryKey: true},
			rel.Attribute{Name: "name", Type: rel.TypeString},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"org", "id"}, schema.PrimaryKeyNames())
	})

	t.Run("Coerce", func(t *testing.T) {
		schema, err := rel.NewSchema(
			rel.Attribute{Name: "id", Type: rel.TypeInt, PrimaryKey: true},
			rel.Attribute{Name: "name", Type: rel.TypeString},
			rel.Attribute{Name: "active", Type: rel.TypeBool},
			rel.Attribute{Name: "score", Type: rel.TypeFloat},
		)
		require.NoError(t, err)

		t.Run("types", func(t *testing.T) {
			// json and toml decoders hand back float64/int64 for ints.
			got, err := schema.Coerce(rel.Tuple{
				"id":     float64(7),
				"name":   "Jane",
				"active": true,
				"score":  3,
			})
			require.NoError(t, err)
			assert.Equal(t, rel.Tuple{
				"id":     7,
				"name":   "Jane",
				"active": true,
				"score":  float64(3),
			}, got)
		})

		t.Run("partial-tuple", func(t *testing.T) {
			got, err := schema.Coerce(rel.Tuple{"name": "Joe"})
			require.NoError(t, err)
			assert.Equal(t, rel.Tuple{"name": "Joe"}, got)
		})

		t.Run("undeclared-attribute", func(t *testing.T) {
			_, err := schema.Coerce(rel.Tuple{"nickname": "J"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, rel.ErrValidation))
			assert.Contains(t, errors.Payload(err), "nickname")
		})

		t.Run("uncoercible-value", func(t *testing.T) {
			_, err := schema.Coerce(rel.Tuple{"id": "seven", "name": 12})
			require.Error(t, err)
			assert.True(t, errors.Is(err, rel.ErrValidation))
			payload := errors.Payload(err)
			assert.Contains(t, payload, "id")
			assert.Contains(t, payload, "name")
		})
	})
}
