package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AppendAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := Record{
		Kind:     "python-direct",
		Workflow: "sales_pipeline.yxmd",
		ToolIDs:  []string{"1", "2", "10"},
		Output:   "import pandas as pd",
		Prompt:   "Convert the following tools",
	}
	id, err := s.Append(ctx, rec)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, rec.Kind, got.Kind)
	assert.Equal(t, rec.Workflow, got.Workflow)
	assert.Equal(t, rec.ToolIDs, got.ToolIDs)
	assert.Equal(t, rec.Output, got.Output)
	assert.Equal(t, rec.Prompt, got.Prompt)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
}

func TestStore_GetUnknown(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, kind := range []string{"python-direct", "sql-direct", "python-advanced"} {
		_, err := s.Append(ctx, Record{Kind: kind, Workflow: "w"})
		require.NoError(t, err)
	}

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "python-advanced", recs[0].Kind)
	assert.Equal(t, "sql-direct", recs[1].Kind)
	assert.Equal(t, "python-direct", recs[2].Kind)
}

func TestStore_EmptyToolIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Append(ctx, Record{Kind: "sql-advanced", Workflow: "w"})
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.ToolIDs)
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Append(ctx, Record{Kind: "python-direct", Workflow: "w"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
}

func TestStore_Prune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		id, err := s.Append(ctx, Record{Kind: "python-direct", Workflow: "w"})
		require.NoError(t, err)
		last = id
	}

	dropped, err := s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, dropped)

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, last, recs[0].ID)

	dropped, err = s.Prune(ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, dropped)
}
