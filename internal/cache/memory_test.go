package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetAndGet(t *testing.T) {
	m := NewMemory()

	expected := testStruct{Name: "Alice", Age: 30}
	require.NoError(t, m.Set("user:1", expected, time.Minute))

	var actual testStruct
	found, err := m.Get("user:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestMemory_ReturnsCopy(t *testing.T) {
	m := NewMemory()
	src := []int{1, 2, 3}
	require.NoError(t, m.Set("list", src, 0))
	src[0] = 100

	var out []int
	found, err := m.Get("list", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestMemory_Expiration(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("short", "v", 20*time.Millisecond))

	time.Sleep(50 * time.Millisecond)

	var out string
	found, err := m.Get("short", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_Invalidate(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("k", "v", time.Minute))
	require.NoError(t, m.Invalidate("k"))
	require.NoError(t, m.Invalidate("missing"))

	var out string
	found, err := m.Get("k", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_TypeMismatch(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("k", "text", time.Minute))

	var out testStruct
	found, err := m.Get("k", &out)
	assert.False(t, found)
	assert.Error(t, err)
}
