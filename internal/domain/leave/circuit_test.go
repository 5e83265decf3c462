package leave

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conges/internal/domain/employee"
)

func TestResolveTwoLevels(t *testing.T) {
	resolver := NewResolver(twoLevelDirectory())

	circuit, err := resolver.Resolve(context.Background(), "agent")
	require.NoError(t, err)
	require.NotNil(t, circuit.Level1)
	require.NotNil(t, circuit.Level2)
	assert.Equal(t, "chef", circuit.Level1.ID)
	assert.Equal(t, "directeur", circuit.Level2.ID)
	assert.Equal(t, 2, circuit.Depth())
}

func TestResolveOneLevel(t *testing.T) {
	resolver := NewResolver(twoLevelDirectory())

	circuit, err := resolver.Resolve(context.Background(), "chef")
	require.NoError(t, err)
	require.NotNil(t, circuit.Level1)
	assert.Equal(t, "directeur", circuit.Level1.ID)
	assert.Nil(t, circuit.Level2)
	assert.Equal(t, 1, circuit.Depth())
}

func TestResolveNoSupervisor(t *testing.T) {
	resolver := NewResolver(twoLevelDirectory())

	circuit, err := resolver.Resolve(context.Background(), "directeur")
	require.NoError(t, err)
	assert.Nil(t, circuit.Level1)
	assert.Nil(t, circuit.Level2)
	assert.Equal(t, 0, circuit.Depth())
}

func TestResolveSelfSupervision(t *testing.T) {
	dir := fakeDirectory{
		"loop": permanent("loop", employee.RoleAgent, "loop"),
	}
	resolver := NewResolver(dir)

	circuit, err := resolver.Resolve(context.Background(), "loop")
	require.NoError(t, err)
	assert.Equal(t, 0, circuit.Depth())
}

func TestResolveSupervisorCycle(t *testing.T) {
	// a is supervised by b, b by a: the cycle stops the walk at depth 1.
	dir := fakeDirectory{
		"a": permanent("a", employee.RoleAgent, "b"),
		"b": permanent("b", employee.RoleAgent, "a"),
	}
	resolver := NewResolver(dir)

	circuit, err := resolver.Resolve(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, circuit.Level1)
	assert.Equal(t, "b", circuit.Level1.ID)
	assert.Nil(t, circuit.Level2)
}

func TestResolveUnknownEmployee(t *testing.T) {
	resolver := NewResolver(twoLevelDirectory())

	_, err := resolver.Resolve(context.Background(), "nobody")
	require.ErrorIs(t, err, employee.ErrNotFound)
}
