package rel_test

import (
	"testing"

	"github.com/featurebasedb/rel"
	"github.com/featurebasedb/rel/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	users, _ := usersRelation(t, nil)
	create, err := rel.NewCommand(rel.CommandConfig{
		Name:     "users.create",
		Relation: users,
	})
	require.NoError(t, err)
	mapper := newUserMapper(t, rel.One)

	g := rel.NewRegistry(nil)

	t.Run("Relations", func(t *testing.T) {
		require.NoError(t, g.RegisterRelation(users))

		err := g.RegisterRelation(users)
		require.Error(t, err)
		assert.True(t, errors.Is(err, rel.ErrRelationExists))

		got, err := g.Relation("users")
		require.NoError(t, err)
		assert.Equal(t, users, got)

		_, err = g.Relation("ghosts")
		require.Error(t, err)
		assert.True(t, errors.Is(err, rel.ErrRelationDoesNotExist))

		assert.Equal(t, []string{"users"}, g.RelationNames())
	})

	t.Run("Commands", func(t *testing.T) {
		require.NoError(t, g.RegisterCommand(create))

		err := g.RegisterCommand(create)
		require.Error(t, err)
		assert.True(t, errors.Is(err, rel.ErrCommandExists))

		got, err := g.Command("users.create")
		require.NoError(t, err)
		assert.Equal(t, create, got)

		_, err = g.Command("users.destroy")
		require.Error(t, err)
		assert.True(t, errors.Is(err, rel.ErrCommandDoesNotExist))
	})

	t.Run("Mappers", func(t *testing.T) {
		require.NoError(t, g.RegisterMapper(mapper))

		err := g.RegisterMapper(mapper)
		require.Error(t, err)
		assert.True(t, errors.Is(err, rel.ErrMapperExists))

		got, err := g.Mapper("users.entity")
		require.NoError(t, err)
		assert.Equal(t, mapper, got)

		_, err = g.Mapper("tasks.entity")
		require.Error(t, err)
		assert.True(t, errors.Is(err, rel.ErrMapperDoesNotExist))
	})
}
