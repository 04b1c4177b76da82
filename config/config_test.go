package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/featurebasedb/rel"
	"github.com/featurebasedb/rel/config"
	"github.com/featurebasedb/rel/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rel.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const usersConfig = `
[storage]
backend = "inmem"

[[relation]]
name = "users"

  [[relation.attribute]]
  name = "id"
  type = "int"
  primary-key = true

  [[relation.attribute]]
  name = "name"
  type = "string"

  [[relation.seed]]
  id = 2
  name = "Joe"

  [[relation.seed]]
  id = 1
  name = "Jane"
`

func TestConfig(t *testing.T) {
	t.Run("LoadAndBuild", func(t *testing.T) {
		cfg, err := config.Load(writeConfig(t, usersConfig))
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		registry, closeFn, err := config.Build(cfg, nil, config.BuildOptions{})
		require.NoError(t, err)
		defer closeFn()

		users, err := registry.Relation("users")
		require.NoError(t, err)

		// Seeds were applied and coerced; the primary-key read path orders
		// them.
		ts, err := users.OrderByPrimaryKey().Tuples()
		require.NoError(t, err)
		assert.Equal(t, rel.Tuples{
			{"id": 1, "name": "Jane"},
			{"id": 2, "name": "Joe"},
		}, ts)
	})

	t.Run("SkipSeeds", func(t *testing.T) {
		cfg, err := config.Load(writeConfig(t, usersConfig))
		require.NoError(t, err)

		registry, closeFn, err := config.Build(cfg, nil, config.BuildOptions{SkipSeeds: true})
		require.NoError(t, err)
		defer closeFn()

		users, err := registry.Relation("users")
		require.NoError(t, err)
		ts, err := users.Tuples()
		require.NoError(t, err)
		assert.Empty(t, ts)
	})

	t.Run("BoltBackend", func(t *testing.T) {
		dir := t.TempDir()
		body := `
[storage]
backend = "bolt"
path = "` + filepath.Join(dir, "rel.boltdb") + `"
timeout = "500ms"

[[relation]]
name = "users"

  [[relation.attribute]]
  name = "id"
  type = "int"
  primary-key = true

  [[relation.attribute]]
  name = "name"
  type = "string"

  [[relation.seed]]
  id = 1
  name = "Jane"
`
		cfg, err := config.Load(writeConfig(t, body))
		require.NoError(t, err)

		registry, closeFn, err := config.Build(cfg, nil, config.BuildOptions{})
		require.NoError(t, err)
		defer closeFn()

		users, err := registry.Relation("users")
		require.NoError(t, err)
		ts, err := users.Tuples()
		require.NoError(t, err)
		assert.Equal(t, rel.Tuples{{"id": 1, "name": "Jane"}}, ts)
	})

	t.Run("Validate", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{
				name: "unknown-backend",
				body: `
[storage]
backend = "postgres"

[[relation]]
name = "users"
  [[relation.attribute]]
  name = "id"
  type = "int"
`,
			},
			{
				name: "bolt-without-path",
				body: `
[storage]
backend = "bolt"

[[relation]]
name = "users"
  [[relation.attribute]]
  name = "id"
  type = "int"
`,
			},
			{
				name: "no-relations",
				body: `
[storage]
backend = "inmem"
`,
			},
			{
				name: "duplicate-relation",
				body: `
[[relation]]
name = "users"
  [[relation.attribute]]
  name = "id"
  type = "int"

[[relation]]
name = "users"
  [[relation.attribute]]
  name = "id"
  type = "int"
`,
			},
			{
				name: "unknown-type",
				body: `
[[relation]]
name = "users"
  [[relation.attribute]]
  name = "id"
  type = "blob"
`,
			},
		}

		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				cfg, err := config.Load(writeConfig(t, test.body))
				require.NoError(t, err)

				err = cfg.Validate()
				require.Error(t, err)
				assert.True(t, errors.Is(err, rel.ErrConfiguration))
			})
		}
	})
}
