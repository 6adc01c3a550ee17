package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/wordbook/internal/entity"
)

type fakeProvider struct {
	mu       sync.Mutex
	examples map[string]string
	err      error
	block    chan struct{}
	calls    []string
}

func (p *fakeProvider) LookupExample(ctx context.Context, word string) (string, bool, error) {
	p.mu.Lock()
	p.calls = append(p.calls, word)
	block := p.block
	p.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", false, fmt.Errorf("%w: %w", entity.ErrLookupUnavailable, ctx.Err())
		}
	}
	if p.err != nil {
		return "", false, p.err
	}
	example, ok := p.examples[word]
	return example, ok, nil
}

func TestExampleLookup_Lookup(t *testing.T) {
	lookup := NewExampleLookup(&fakeProvider{examples: map[string]string{"run": "I went for a run."}}, newTestLogger())

	res := lookup.Lookup(context.Background(), "run")
	require.NoError(t, res.Err)
	assert.True(t, res.Found)
	assert.Equal(t, "I went for a run.", res.Example)

	res = lookup.Lookup(context.Background(), "zzz")
	require.NoError(t, res.Err)
	assert.False(t, res.Found)
}

func TestExampleLookup_StartSupersedesPrevious(t *testing.T) {
	provider := &fakeProvider{examples: map[string]string{"new": "fresh"}, block: make(chan struct{})}
	lookup := NewExampleLookup(provider, newTestLogger())

	first := lookup.Start(context.Background(), "old")
	require.Eventually(t, func() bool {
		provider.mu.Lock()
		defer provider.mu.Unlock()
		return len(provider.calls) == 1
	}, time.Second, 5*time.Millisecond)

	provider.mu.Lock()
	provider.block = nil
	provider.mu.Unlock()
	second := lookup.Start(context.Background(), "new")

	old := <-first
	require.ErrorIs(t, old.Err, context.Canceled)

	fresh := <-second
	require.NoError(t, fresh.Err)
	assert.Equal(t, "fresh", fresh.Example)
}

func TestExampleLookup_Cancel(t *testing.T) {
	provider := &fakeProvider{block: make(chan struct{})}
	lookup := NewExampleLookup(provider, newTestLogger())

	ch := lookup.Start(context.Background(), "slow")
	lookup.Cancel()

	res := <-ch
	require.ErrorIs(t, res.Err, context.Canceled)
	_, open := <-ch
	assert.False(t, open)
}

func TestEditor_CommitAddsThenClears(t *testing.T) {
	store, _ := newTestStore(t)
	editor := NewEditor(store, nil)
	defer editor.Close()

	editor.SetDraft(" apple ", "りんご", "")
	index, err := editor.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, index)
	assert.True(t, editor.Draft().IsEmpty())
	assert.Equal(t, 1, store.Len())
}

func TestEditor_CommitRejectedKeepsDraft(t *testing.T) {
	store, _ := newTestStore(t)
	editor := NewEditor(store, nil)
	defer editor.Close()

	editor.SetDraft("apple", "", "ex")
	_, err := editor.Commit(context.Background())
	require.ErrorIs(t, err, entity.ErrValidation)
	assert.Equal(t, "apple", editor.Draft().English)
	assert.Zero(t, store.Len())
}

func TestEditor_SelectAndUpdateFollowsShiftedPosition(t *testing.T) {
	store, _ := newTestStore(t, seedEntries(3)...)
	editor := NewEditor(store, nil)
	defer editor.Close()
	ctx := context.Background()

	require.NoError(t, editor.Select(2))
	require.NoError(t, store.Delete(ctx, 0))

	index, ok := editor.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, index)

	editor.SetDraft("changed", "変更", "")
	got, err := editor.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	entry, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "changed", entry.English)
	assert.Equal(t, "changed", editor.Draft().English, "an update keeps the form")
}

func TestEditor_SelectionClearedWhenEntryDeleted(t *testing.T) {
	store, _ := newTestStore(t, seedEntries(2)...)
	editor := NewEditor(store, nil)
	defer editor.Close()

	require.NoError(t, editor.Select(1))
	require.NoError(t, store.Delete(context.Background(), 1))

	assert.True(t, editor.Draft().IsEmpty())
	_, ok := editor.Selected()
	assert.False(t, ok)
}

func TestEditor_DeleteSelected(t *testing.T) {
	store, _ := newTestStore(t, seedEntries(2)...)
	editor := NewEditor(store, nil)
	defer editor.Close()

	require.ErrorIs(t, editor.DeleteSelected(context.Background()), entity.ErrIndexOutOfRange)

	require.NoError(t, editor.Select(0))
	require.NoError(t, editor.DeleteSelected(context.Background()))
	assert.Equal(t, 1, store.Len())
	assert.True(t, editor.Draft().IsEmpty())
}

func TestEditor_SelectOutOfRange(t *testing.T) {
	store, _ := newTestStore(t)
	editor := NewEditor(store, nil)
	defer editor.Close()

	require.ErrorIs(t, editor.Select(0), entity.ErrIndexOutOfRange)
}

func TestEditor_LookupFillsDraftOnly(t *testing.T) {
	store, repo := newTestStore(t, entity.Entry{English: "run", Japanese: "走る"})
	lookup := NewExampleLookup(&fakeProvider{examples: map[string]string{"run": "I went for a run."}}, newTestLogger())
	editor := NewEditor(store, lookup)
	defer editor.Close()

	require.NoError(t, editor.Select(0))
	res, err := editor.LookupExample(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "I went for a run.", editor.Draft().Example)

	stored, err := store.Get(0)
	require.NoError(t, err)
	assert.Empty(t, stored.Example)
	assert.Zero(t, repo.saves)
}

func TestEditor_LookupNotFoundKeepsExample(t *testing.T) {
	store, _ := newTestStore(t)
	lookup := NewExampleLookup(&fakeProvider{}, newTestLogger())
	editor := NewEditor(store, lookup)
	defer editor.Close()

	editor.SetDraft("zzz", "", "mine")
	res, err := editor.LookupExample(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, "mine", editor.Draft().Example)
}

func TestEditor_LookupUnavailable(t *testing.T) {
	store, _ := newTestStore(t)
	lookup := NewExampleLookup(&fakeProvider{err: fmt.Errorf("%w: connection refused", entity.ErrLookupUnavailable)}, newTestLogger())
	editor := NewEditor(store, lookup)
	defer editor.Close()

	editor.SetDraft("run", "", "")
	_, err := editor.LookupExample(context.Background())
	require.True(t, errors.Is(err, entity.ErrLookupUnavailable))

	noLookup := NewEditor(store, nil)
	defer noLookup.Close()
	_, err = noLookup.LookupExample(context.Background())
	require.ErrorIs(t, err, entity.ErrLookupUnavailable)
}
