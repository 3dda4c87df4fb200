package collection

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/and161185/notepad/internal/errs"
	"github.com/and161185/notepad/internal/model"
)

func note(id, title string) model.Note {
	return model.Note{ID: id, Title: title, Content: "c-" + id, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func ids(ns []model.Note) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.ID)
	}
	return out
}

func TestStore_ReplaceAll(t *testing.T) {
	t.Parallel()
	s := New()
	s.ReplaceAll([]model.Note{note("1", "a"), {Title: "pending"}, note("2", "b"), note("1", "a2")})

	require.Equal(t, []string{"1", "2"}, ids(s.Snapshot()))
	got, ok := s.Get("1")
	require.True(t, ok)
	require.Equal(t, "a2", got.Title, "last duplicate wins")

	s.ReplaceAll(nil)
	require.Zero(t, s.Len())
}

func TestStore_Append(t *testing.T) {
	t.Parallel()
	s := New()
	require.NoError(t, s.Append(note("1", "a")))
	require.NoError(t, s.Append(note("2", "b")))
	require.ErrorIs(t, s.Append(model.Note{Title: "no id"}), errs.ErrValidation)

	require.NoError(t, s.Append(note("1", "a-again")))
	require.Equal(t, []string{"1", "2"}, ids(s.Snapshot()), "duplicate append keeps id unique")
	got, _ := s.Get("1")
	require.Equal(t, "a-again", got.Title)
}

func TestStore_ReplaceByID_KeepsOrder(t *testing.T) {
	t.Parallel()
	s := New()
	s.ReplaceAll([]model.Note{note("1", "a"), note("2", "b"), note("3", "c")})

	require.True(t, s.ReplaceByID("2", note("2", "B")))
	require.Equal(t, []string{"1", "2", "3"}, ids(s.Snapshot()))
	got, _ := s.Get("2")
	require.Equal(t, "B", got.Title)

	require.False(t, s.ReplaceByID("9", note("9", "x")), "absent id is not inserted")
	require.Equal(t, 3, s.Len())

	require.True(t, s.ReplaceByID("3", note("other", "C")))
	got, _ = s.Get("3")
	require.Equal(t, "3", got.ID, "id is immutable")
}

func TestStore_RemoveByID_Reindexes(t *testing.T) {
	t.Parallel()
	s := New()
	s.ReplaceAll([]model.Note{note("1", "a"), note("2", "b"), note("3", "c")})

	require.True(t, s.RemoveByID("1"))
	require.False(t, s.RemoveByID("1"))
	require.Equal(t, []string{"2", "3"}, ids(s.Snapshot()))

	require.True(t, s.ReplaceByID("3", note("3", "C")))
	got, ok := s.Get("3")
	require.True(t, ok)
	require.Equal(t, "C", got.Title)
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	t.Parallel()
	s := New()
	require.NoError(t, s.Append(note("1", "a")))
	snap := s.Snapshot()
	snap[0].Title = "mutated"
	got, _ := s.Get("1")
	require.Equal(t, "a", got.Title)
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()
	s := New()
	s.ReplaceAll([]model.Note{note("1", "a")})
	s.Clear()
	require.Zero(t, s.Len())
	_, ok := s.Get("1")
	require.False(t, ok)
	require.NoError(t, s.Append(note("1", "a")))
	require.Equal(t, 1, s.Len())
}

func TestStore_ConcurrentReaders(t *testing.T) {
	t.Parallel()
	s := New()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("%d-%d", w, i)
				_ = s.Append(note(id, "t"))
				s.ReplaceByID(id, note(id, "u"))
				if i%2 == 0 {
					s.RemoveByID(id)
				}
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				for _, n := range s.Snapshot() {
					if n.ID == "" {
						t.Errorf("snapshot contains note without id")
					}
				}
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 200, s.Len())
}

func TestStore_Sequence(t *testing.T) {
	t.Parallel()
	s := New()
	s.ReplaceAll([]model.Note{note("1", "a"), note("2", "b")})
	require.NoError(t, s.Append(note("3", "c")))
	s.ReplaceByID("1", note("1", "A"))
	s.RemoveByID("2")

	want := []model.Note{note("1", "A"), note("3", "c")}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
