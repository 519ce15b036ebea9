package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_SatisfiesRepository(t *testing.T) {
	var _ Repository = NewMemoryRepository()
	var _ Repository = (*SQLiteRepository)(nil)
}

func TestMemoryRepository_GetMissingIsNilNil(t *testing.T) {
	r := NewMemoryRepository()
	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemoryRepository_SetGetDelete(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("v1")))
	require.NoError(t, r.Set(ctx, "k", []byte("v2")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	require.NoError(t, r.Delete(ctx, "k"))
	require.NoError(t, r.Delete(ctx, "k"))
	v, err = r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemoryRepository_ValuesAreCopied(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, r.Set(ctx, "k", in))
	in[0] = 'X'

	v, _ := r.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), v)

	v[0] = 'Y'
	again, _ := r.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryRepository_ListAndClear(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	assert.Equal(t, []string{"a", "b"}, r.Keys())

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)

	require.NoError(t, r.Clear(ctx))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}
