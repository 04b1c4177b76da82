package rel_test

import (
	"testing"

	"github.com/featurebasedb/rel"
	"github.com/featurebasedb/rel/errors"
	"github.com/featurebasedb/rel/inmem"
	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tasksRelation(t *testing.T) (*rel.Relation, *inmem.Dataset) {
	t.Helper()
	schema, err := rel.NewSchema(
		rel.Attribute{Name: "id", Type: rel.TypeInt, PrimaryKey: true},
		rel.Attribute{Name: "title", Type: rel.TypeString},
		rel.Attribute{Name: "name", Type: rel.TypeString},
	)
	require.NoError(t, err)

	ds := inmem.NewDataset()
	r, err := rel.NewRelation(rel.RelationConfig{
		Name:    "tasks",
		Schema:  schema,
		Dataset: ds,
	})
	require.NoError(t, err)
	return r, ds
}

// newCreateTask builds a create command whose execution derives the task's
// name from the upstream tuple (the user created by the previous step).
func newCreateTask(t *testing.T, tasks *rel.Relation) *rel.Command {
	t.Helper()
	cmd, err := rel.NewCommand(rel.CommandConfig{
		Name:     "tasks.create",
		Relation: tasks,
		Execute: func(cmd *rel.Command, input rel.Tuple, upstream ...rel.Tuple) (rel.Tuples, error) {
			task := rel.Tuple{"id": 1, "title": input["title"]}
			if len(upstream) > 0 {
				task["name"] = upstream[0]["name"]
			}
			return cmd.ExecuteDefault(task)
		},
	})
	require.NoError(t, err)
	return cmd
}

type user struct {
	ID   int
	Name string
}

func newUserMapper(t *testing.T, card rel.Cardinality) *rel.Mapper {
	t.Helper()
	m, err := rel.NewMapper(rel.MapperConfig{
		Name:       "users.entity",
		Result:     card,
		Attributes: []string{"id", "name"},
		Build: func(t rel.Tuple) (interface{}, error) {
			return user{ID: t["id"].(int), Name: t["name"].(string)}, nil
		},
	})
	require.NoError(t, err)
	return m
}

func TestPipeline(t *testing.T) {
	t.Run("SequentialDataFlow", func(t *testing.T) {
		users, _ := usersRelation(t, nil)
		tasks, _ := tasksRelation(t)

		createUser, err := rel.NewCommand(rel.CommandConfig{
			Name:     "users.create",
			Relation: users,
		})
		require.NoError(t, err)

		createTask := newCreateTask(t, tasks)

		p, err := rel.Sequential(
			createUser.With(rel.Tuple{"id": 1, "name": "Jane"}),
			createTask.With(rel.Tuple{"title": "X"}),
		)
		require.NoError(t, err)

		out, err := p.Call(rel.Tuple{})
		require.NoError(t, err)

		// The task derives its name from the user's output and keeps its
		// own bound title.
		task, ok := out.(rel.Tuple)
		require.True(t, ok)
		assert.Equal(t, "Jane", task["name"])
		assert.Equal(t, "X", task["title"])

		// Both mutations landed.
		stored, err := tasks.Tuples()
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("FailureShortCircuit", func(t *testing.T) {
		users, _ := usersRelation(t, nil)
		tasks, tasksDS := tasksRelation(t)

		createUser, err := rel.NewCommand(rel.CommandConfig{
			Name:      "users.create",
			Relation:  users,
			Validator: requireName(),
		})
		require.NoError(t, err)

		createTask := newCreateTask(t, tasks)

		p, err := rel.Sequential(createUser, createTask.With(rel.Tuple{"title": "X"}))
		require.NoError(t, err)

		// The first step's validator fails; the second step never runs.
		_, err = p.Call(rel.Tuple{"id": 1})
		require.Error(t, err)
		assert.True(t, errors.Is(err, rel.ErrValidation))
		assert.Equal(t, 0, tasksDS.Len())
	})

	t.Run("MapperTermination", func(t *testing.T) {
		users, _ := usersRelation(t, nil)

		createUser, err := rel.NewCommand(rel.CommandConfig{
			Name:     "users.create",
			Relation: users,
		})
		require.NoError(t, err)

		p, err := rel.Sequential(
			createUser.With(rel.Tuple{"id": 1, "name": "Jane"}),
			newUserMapper(t, rel.One),
		)
		require.NoError(t, err)

		out, err := p.Call(rel.Tuple{})
		require.NoError(t, err)

		// The pipeline yields the domain object, not a raw tuple.
		got, ok := out.(user)
		require.True(t, ok)
		if diff := deep.Equal(user{ID: 1, Name: "Jane"}, got); diff != nil {
			t.Fatal(diff)
		}
	})

	t.Run("ThreeCommandChain", func(t *testing.T) {
		users, _ := usersRelation(t, nil)
		tasks, _ := tasksRelation(t)

		createUser, err := rel.NewCommand(rel.CommandConfig{
			Name:     "users.create",
			Relation: users,
		})
		require.NoError(t, err)

		createTask := newCreateTask(t, tasks)

		touch, err := rel.NewCommand(rel.CommandConfig{
			Name:     "tasks.touch",
			Relation: tasks,
			Kind:     rel.KindUpdate,
			Execute: func(cmd *rel.Command, input rel.Tuple, upstream ...rel.Tuple) (rel.Tuples, error) {
				return cmd.ExecuteDefault(rel.Tuple{"id": input["id"], "title": "touched"})
			},
		})
		require.NoError(t, err)

		p, err := rel.Sequential(
			createUser.With(rel.Tuple{"id": 1, "name": "Jane"}),
			createTask.With(rel.Tuple{"title": "X"}),
			touch,
		)
		require.NoError(t, err)

		out, err := p.Call(rel.Tuple{})
		require.NoError(t, err)
		assert.Equal(t, "touched", out.(rel.Tuple)["title"])
	})

	t.Run("ConstructionChecks", func(t *testing.T) {
		users, _ := usersRelation(t, nil)

		createUser, err := rel.NewCommand(rel.CommandConfig{
			Name:     "users.create",
			Relation: users,
		})
		require.NoError(t, err)

		listUsers, err := rel.NewCommand(rel.CommandConfig{
			Name:     "users.list",
			Relation: users,
			Result:   rel.Many,
			Execute: func(cmd *rel.Command, input rel.Tuple, upstream ...rel.Tuple) (rel.Tuples, error) {
				return cmd.Relation().Tuples()
			},
		})
		require.NoError(t, err)

		t.Run("collection-into-command", func(t *testing.T) {
			_, err := rel.Sequential(listUsers, createUser)
			require.Error(t, err)
			assert.True(t, errors.Is(err, rel.ErrConfiguration))
		})

		t.Run("mapper-arity-mismatch", func(t *testing.T) {
			_, err := rel.Sequential(createUser, newUserMapper(t, rel.Many))
			require.Error(t, err)
			assert.True(t, errors.Is(err, rel.ErrConfiguration))
		})

		t.Run("collection-mapper-mid-chain", func(t *testing.T) {
			_, err := rel.Sequential(listUsers, newUserMapper(t, rel.Many), createUser)
			require.Error(t, err)
			assert.True(t, errors.Is(err, rel.ErrConfiguration))
		})

		t.Run("collection-mapper-terminal", func(t *testing.T) {
			_, err := rel.Sequential(listUsers, newUserMapper(t, rel.Many))
			require.NoError(t, err)
		})
	})

	t.Run("Bind", func(t *testing.T) {
		users, ds := usersRelation(t, nil)

		create, err := rel.NewCommand(rel.CommandConfig{
			Name:      "users.create",
			Relation:  users,
			Validator: requireName(),
		})
		require.NoError(t, err)

		rp, err := rel.Bind(create, newUserMapper(t, rel.One))
		require.NoError(t, err)

		res := rp.Call(rel.Tuple{"id": 1, "name": "Jane"})
		require.True(t, res.OK())
		assert.Equal(t, user{ID: 1, Name: "Jane"}, res.Value())

		// Failure is captured, not raised, and short-circuits the mapper.
		res = rp.Call(rel.Tuple{"id": 2})
		require.False(t, res.OK())
		assert.True(t, errors.Is(res.Err(), rel.ErrValidation))
		assert.Equal(t, 1, ds.Len())
	})

	t.Run("MappingError", func(t *testing.T) {
		m := newUserMapper(t, rel.One)

		_, err := m.Apply(rel.Tuple{"id": 1})
		require.Error(t, err)
		assert.True(t, errors.Is(err, rel.ErrMapping))
	})

	t.Run("ManyMapper", func(t *testing.T) {
		m := newUserMapper(t, rel.Many)

		out, err := m.Apply(rel.Tuples{
			{"id": 1, "name": "Jane"},
			{"id": 2, "name": "Joe"},
		})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{
			user{ID: 1, Name: "Jane"},
			user{ID: 2, Name: "Joe"},
		}, out)
	})
}
