package localstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := s.Read("cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write("cart", []byte(`{"lines":[]}`)))
	require.NoError(t, s.Write("cart", []byte(`{"lines":[1]}`)))
	data, ok, err := s.Read("cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"lines":[1]}`, string(data))

	assert.Error(t, s.Write("../escape", nil))
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Write("k", []byte("v")))
	data, ok, err := s.Read("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(data))
	assert.Equal(t, 1, s.Writes)
}
