package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/alterflow/internal/workflow"
	"github.com/vk/alterflow/internal/yxmd"
)

func testGraph(t *testing.T) *workflow.Graph {
	t.Helper()
	g, err := workflow.Build([]workflow.ToolNode{{ID: "1", Type: "Filter"}}, nil)
	require.NoError(t, err)
	return g
}

func TestRegistry_AddAndGet(t *testing.T) {
	r := NewRegistry(4)
	w := r.Add("report.yxmd", &yxmd.Document{Name: "report.yxmd"}, testGraph(t))
	require.NotEmpty(t, w.ID)

	got, err := r.Get(w.ID)
	require.NoError(t, err)
	assert.Same(t, w, got)
	assert.Equal(t, "report.yxmd", got.Name)
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry(4)
	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_EvictsOldest(t *testing.T) {
	r := NewRegistry(2)
	g := testGraph(t)
	a := r.Add("a", nil, g)
	b := r.Add("b", nil, g)
	c := r.Add("c", nil, g)

	assert.Equal(t, 2, r.Len())
	_, err := r.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, w := range []*Workflow{b, c} {
		_, err := r.Get(w.ID)
		assert.NoError(t, err)
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry(4)
	w := r.Add("a", nil, testGraph(t))

	r.Remove(w.ID)
	_, err := r.Get(w.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, r.Len())

	// Unknown removals are no-ops.
	r.Remove("nope")
}

func TestRegistry_IDsAreUnique(t *testing.T) {
	r := NewRegistry(8)
	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		w := r.Add("a", nil, testGraph(t))
		assert.False(t, seen[w.ID])
		seen[w.ID] = true
	}
}
