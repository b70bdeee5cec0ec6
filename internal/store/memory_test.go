package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_AddAndSearch(t *testing.T) {
	st := newTestStore(t)

	id, err := st.AddMemory("s1", "booked a flight to Delhi", map[string]string{"kind": "note"})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	_, err = st.AddMemory("s1", "grocery list for the week", nil)
	require.NoError(t, err)

	hits, err := st.SearchMemory("s1", "flight to delhi", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, id, hits[0].ID)
	require.Equal(t, "note", hits[0].Metadata["kind"])
}

func TestMemory_RanksByTermOverlap(t *testing.T) {
	st := newTestStore(t)

	_, err := st.AddMemory("s1", "weather in Mumbai today", nil)
	require.NoError(t, err)
	best, err := st.AddMemory("s1", "flight weather delay in Mumbai", nil)
	require.NoError(t, err)

	hits, err := st.SearchMemory("s1", "flight weather mumbai", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	require.Equal(t, best, hits[0].ID)
}

func TestMemory_SessionScoped(t *testing.T) {
	st := newTestStore(t)

	_, err := st.AddMemory("s1", "secret project notes", nil)
	require.NoError(t, err)

	hits, err := st.SearchMemory("s2", "secret project", 5)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestMemory_TopKLimit(t *testing.T) {
	st := newTestStore(t)

	for i := 0; i < 10; i++ {
		_, err := st.AddMemory("s1", fmt.Sprintf("reminder %d about the meeting", i), nil)
		require.NoError(t, err)
	}

	hits, err := st.SearchMemory("s1", "meeting reminder", 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
}
