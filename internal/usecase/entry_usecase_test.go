package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/wordbook/internal/entity"
)

type fakeEntryRepo struct {
	mu      sync.Mutex
	stored  []entity.Entry
	loadErr error
	saveErr error
	saves   int
}

func (r *fakeEntryRepo) Load(ctx context.Context) ([]entity.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return slices.Clone(r.stored), nil
}

func (r *fakeEntryRepo) Save(ctx context.Context, entries []entity.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.stored = slices.Clone(entries)
	return nil
}

func (r *fakeEntryRepo) snapshot() []entity.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.stored)
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestStore(t *testing.T, seed ...entity.Entry) (EntryStore, *fakeEntryRepo) {
	t.Helper()
	repo := &fakeEntryRepo{stored: seed}
	store := NewEntryStore(repo, newTestLogger())
	impl := store.(*entryStore)
	seq := 0
	impl.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	require.NoError(t, store.Load(context.Background()))
	return store, repo
}

func seedEntries(n int) []entity.Entry {
	out := make([]entity.Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entity.Entry{English: fmt.Sprintf("word%d", i), Japanese: fmt.Sprintf("語%d", i)})
	}
	return out
}

func TestEntryStore_AddAppendsTrimmed(t *testing.T) {
	store, repo := newTestStore(t, seedEntries(2)...)

	index, err := store.Add(context.Background(), "  apple ", " りんご ", " I ate an apple. ")
	require.NoError(t, err)
	assert.Equal(t, 2, index)

	list := store.List()
	require.Len(t, list, 3)
	last := list[len(list)-1]
	assert.True(t, last.Equal(entity.Entry{English: "apple", Japanese: "りんご", Example: "I ate an apple."}))
	assert.NotEmpty(t, last.ID)

	persisted := repo.snapshot()
	require.Len(t, persisted, 3)
	assert.Equal(t, "apple", persisted[2].English)
}

func TestEntryStore_AddRejectsEmptyFields(t *testing.T) {
	cases := []struct{ english, japanese string }{
		{"", "りんご"},
		{"   ", "りんご"},
		{"apple", ""},
		{"apple", "\t\n"},
	}
	for _, c := range cases {
		store, repo := newTestStore(t, seedEntries(1)...)
		before := store.List()

		_, err := store.Add(context.Background(), c.english, c.japanese, "ex")
		require.ErrorIs(t, err, entity.ErrValidation)
		assert.Equal(t, before, store.List())
		assert.Zero(t, repo.saves)
	}
}

func TestEntryStore_UpdateReplacesOnlyTarget(t *testing.T) {
	store, _ := newTestStore(t, seedEntries(3)...)
	before := store.List()

	require.NoError(t, store.Update(context.Background(), 1, " run ", "走る", ""))

	after := store.List()
	require.Len(t, after, 3)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[2])
	assert.True(t, after[1].Equal(entity.Entry{English: "run", Japanese: "走る"}))
	assert.Equal(t, before[1].ID, after[1].ID, "update keeps the surrogate ID")
}

func TestEntryStore_UpdateErrors(t *testing.T) {
	store, repo := newTestStore(t, seedEntries(2)...)
	before := store.List()

	err := store.Update(context.Background(), 2, "a", "b", "")
	require.ErrorIs(t, err, entity.ErrIndexOutOfRange)

	err = store.Update(context.Background(), -1, "a", "b", "")
	require.ErrorIs(t, err, entity.ErrIndexOutOfRange)

	err = store.Update(context.Background(), 0, "a", " ", "")
	require.ErrorIs(t, err, entity.ErrValidation)

	// index is checked before the fields
	err = store.Update(context.Background(), 5, "", "", "")
	require.ErrorIs(t, err, entity.ErrIndexOutOfRange)

	assert.Equal(t, before, store.List())
	assert.Zero(t, repo.saves)
}

func TestEntryStore_DeleteShiftsLaterEntries(t *testing.T) {
	for i := 0; i < 4; i++ {
		t.Run(fmt.Sprintf("delete %d", i), func(t *testing.T) {
			store, _ := newTestStore(t, seedEntries(4)...)
			before := store.List()

			require.NoError(t, store.Delete(context.Background(), i))

			after := store.List()
			require.Len(t, after, 3)
			for j := range after {
				if j < i {
					assert.Equal(t, before[j], after[j])
				} else {
					assert.Equal(t, before[j+1], after[j])
				}
			}
		})
	}
}

func TestEntryStore_DeleteOutOfRange(t *testing.T) {
	store, _ := newTestStore(t)
	require.ErrorIs(t, store.Delete(context.Background(), 0), entity.ErrIndexOutOfRange)
}

func TestEntryStore_Get(t *testing.T) {
	store, _ := newTestStore(t, seedEntries(2)...)

	got, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "word1", got.English)

	_, err = store.Get(2)
	var idxErr *entity.IndexError
	require.True(t, errors.As(err, &idxErr))
	assert.Equal(t, 2, idxErr.Len)
}

func TestEntryStore_ListIsSnapshot(t *testing.T) {
	store, _ := newTestStore(t, seedEntries(1)...)
	list := store.List()
	list[0].English = "mutated"

	got, err := store.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "word0", got.English)
}

func TestEntryStore_WriteThroughFailureRollsBack(t *testing.T) {
	store, repo := newTestStore(t, seedEntries(2)...)
	before := store.List()
	repo.saveErr = fmt.Errorf("%w: disk full", entity.ErrPersistence)

	_, err := store.Add(context.Background(), "apple", "りんご", "")
	require.ErrorIs(t, err, entity.ErrPersistence)
	require.ErrorIs(t, store.Update(context.Background(), 0, "x", "y", ""), entity.ErrPersistence)
	require.ErrorIs(t, store.Delete(context.Background(), 1), entity.ErrPersistence)
	require.ErrorIs(t, store.Replace(context.Background(), seedEntries(5)), entity.ErrPersistence)

	assert.Equal(t, before, store.List())
}

func TestEntryStore_LoadError(t *testing.T) {
	repo := &fakeEntryRepo{loadErr: fmt.Errorf("%w: bad json", entity.ErrPersistence)}
	store := NewEntryStore(repo, newTestLogger())

	err := store.Load(context.Background())
	require.ErrorIs(t, err, entity.ErrPersistence)
	assert.Empty(t, store.List())
}

func TestEntryStore_SubscribeReceivesEveryMutation(t *testing.T) {
	store, _ := newTestStore(t)
	var lengths []int
	unsubscribe := store.Subscribe(func(entries []entity.Entry) {
		lengths = append(lengths, len(entries))
	})

	ctx := context.Background()
	_, err := store.Add(ctx, "a", "あ", "")
	require.NoError(t, err)
	_, err = store.Add(ctx, "b", "い", "")
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, 0, "c", "う", ""))
	_, err = store.Add(ctx, "", "", "")
	require.Error(t, err)
	require.NoError(t, store.Delete(ctx, 0))

	assert.Equal(t, []int{1, 2, 2, 1}, lengths)

	unsubscribe()
	_, err = store.Add(ctx, "d", "え", "")
	require.NoError(t, err)
	assert.Len(t, lengths, 4)
}

func TestEntryStore_SubscribersEndOnLatestList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var (
		mu      sync.Mutex
		last    []entity.Entry
		blocked sync.Once
	)
	entered := make(chan struct{})
	gate := make(chan struct{})
	store.Subscribe(func(entries []entity.Entry) {
		if len(entries) == 1 {
			blocked.Do(func() {
				close(entered)
				<-gate
			})
		}
		mu.Lock()
		last = entries
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := store.Add(ctx, "apple", "りんご", "")
		assert.NoError(t, err)
	}()
	<-entered
	go func() {
		defer wg.Done()
		_, err := store.Add(ctx, "cat", "猫", "")
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return store.Len() == 2 }, 2*time.Second, time.Millisecond)
	close(gate)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, last, 2)
	assert.Equal(t, "cat", last[1].English)
}

func TestEntryStore_IndexOfFollowsEntry(t *testing.T) {
	store, _ := newTestStore(t, seedEntries(3)...)
	target, err := store.Get(2)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), 0))

	index, ok := store.IndexOf(target.ID)
	require.True(t, ok)
	assert.Equal(t, 1, index)

	require.NoError(t, store.Delete(context.Background(), index))
	_, ok = store.IndexOf(target.ID)
	assert.False(t, ok)
	_, ok = store.IndexOf("")
	assert.False(t, ok)
}

func TestEntryStore_DuplicatesAllowed(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	_, err := store.Add(ctx, "cat", "猫", "")
	require.NoError(t, err)
	_, err = store.Add(ctx, "cat", "猫", "")
	require.NoError(t, err)

	list := store.List()
	require.Len(t, list, 2)
	assert.True(t, list[0].Equal(list[1]))
	assert.NotEqual(t, list[0].ID, list[1].ID)
}

func TestEntryStore_AppendAndReplace(t *testing.T) {
	store, repo := newTestStore(t, seedEntries(2)...)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, []entity.Entry{{English: " new ", Japanese: "新"}}))
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, "new", store.List()[2].English)

	require.NoError(t, store.Replace(ctx, []entity.Entry{{English: "only", Japanese: "唯一"}}))
	assert.Equal(t, 1, store.Len())
	assert.Len(t, repo.snapshot(), 1)
}

func TestEntryStore_BulkRejectsInvalidWithoutMutation(t *testing.T) {
	store, repo := newTestStore(t, seedEntries(2)...)
	before := store.List()

	err := store.Append(context.Background(), []entity.Entry{
		{English: "ok", Japanese: "良い"},
		{English: "", Japanese: "空"},
	})
	require.ErrorIs(t, err, entity.ErrValidation)
	assert.Equal(t, before, store.List())
	assert.Zero(t, repo.saves)
}

func TestEntryStore_Search(t *testing.T) {
	store, _ := newTestStore(t,
		entity.Entry{English: "banana", Japanese: "バナナ"},
		entity.Entry{English: "apple", Japanese: "りんご", Example: "I ate an apple."},
		entity.Entry{English: "apricot", Japanese: "杏"},
	)

	got, err := store.Search(`english.startsWith("ap")`, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 2, got[1].Index)

	got, err = store.Search("", "english desc")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{0, 2, 1}, []int{got[0].Index, got[1].Index, got[2].Index})

	got, err = store.Search(`example != ""`, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "apple", got[0].Entry.English)

	_, err = store.Search(`notes == "x"`, "")
	require.ErrorIs(t, err, entity.ErrValidation)
	_, err = store.Search("", "notes")
	require.ErrorIs(t, err, entity.ErrValidation)
}

func TestEntryStore_Save(t *testing.T) {
	store, repo := newTestStore(t, seedEntries(2)...)
	require.NoError(t, store.Save(context.Background()))
	assert.Equal(t, 1, repo.saves)
	assert.Len(t, repo.snapshot(), 2)
}
