package operations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsanalytics/internal/operations"
	"opsanalytics/internal/operations/testutil"
)

func TestRegistry(t *testing.T) {
	reg := operations.NewRegistry[int]()

	require.NoError(t, reg.Register(testutil.NewMockStage[int]("a")))
	require.NoError(t, reg.Register(testutil.NewMockStage[int]("b")))
	require.NoError(t, reg.Register(testutil.NewMockStage[int]("c")))

	assert.Error(t, reg.Register(nil))
	assert.Error(t, reg.Register(testutil.NewMockStage[int]("")))
	assert.Error(t, reg.Register(testutil.NewMockStage[int]("a")), "duplicate id")

	assert.Equal(t, 3, reg.Count())
	assert.Equal(t, []string{"a", "b", "c"}, reg.ListIDs())
	assert.True(t, reg.Has("b"))

	require.NoError(t, reg.Unregister("b"))
	assert.False(t, reg.Has("b"))
	assert.Equal(t, []string{"a", "c"}, reg.ListIDs())
	assert.Error(t, reg.Unregister("b"))

	s, err := reg.Get("c")
	require.NoError(t, err)
	assert.Equal(t, "Mock c", s.Name())
	_, err = reg.Get("zzz")
	assert.Error(t, err)

	ids := make([]string, 0)
	for _, s := range reg.List() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		operations.NewRegistry[int]().MustRegister(testutil.NewMockStage[int]("a"), testutil.NewMockStage[int]("a"))
	})
}
