package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/eslsoft/wordbook/internal/entity"
)

// Editor holds the selection and the uncommitted form for one presentation session.
// The selection is tracked by surrogate ID and translated to a position on demand.
type Editor struct {
	store  EntryStore
	lookup ExampleLookup

	mu          sync.Mutex
	draft       entity.Draft
	unsubscribe func()
}

// NewEditor binds an editor to store and subscribes to its changes.
// lookup may be nil when dictionary access is disabled.
func NewEditor(store EntryStore, lookup ExampleLookup) *Editor {
	e := &Editor{store: store, lookup: lookup}
	e.unsubscribe = store.Subscribe(e.onStoreChanged)
	return e
}

// Close detaches the editor from the store and cancels any pending lookup.
func (e *Editor) Close() {
	e.unsubscribe()
	if e.lookup != nil {
		e.lookup.Cancel()
	}
}

// Select loads the entry at index into the draft.
func (e *Editor) Select(index EntryIndex) error {
	entry, err := e.store.Get(index)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.draft = entity.DraftFromEntry(entry)
	e.mu.Unlock()
	return nil
}

// Selected returns the current position of the selected entry.
func (e *Editor) Selected() (EntryIndex, bool) {
	e.mu.Lock()
	id := e.draft.EntryID
	e.mu.Unlock()
	return e.store.IndexOf(id)
}

// SetDraft replaces the form fields, keeping the selection.
func (e *Editor) SetDraft(english, japanese, example string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.English = english
	e.draft.Japanese = japanese
	e.draft.Example = example
}

// Draft returns a copy of the form state.
func (e *Editor) Draft() entity.Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Clear empties the form and drops the selection.
func (e *Editor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = entity.Draft{}
}

// Commit adds the draft as a new entry when nothing is selected, otherwise it
// replaces the selected entry. A new entry clears the form.
func (e *Editor) Commit(ctx context.Context) (EntryIndex, error) {
	draft := e.Draft()

	if draft.EntryID == "" {
		index, err := e.store.Add(ctx, draft.English, draft.Japanese, draft.Example)
		if err != nil {
			return -1, err
		}
		e.Clear()
		return index, nil
	}

	index, ok := e.store.IndexOf(draft.EntryID)
	if !ok {
		return -1, fmt.Errorf("selected entry: %w", entity.ErrIndexOutOfRange)
	}
	if err := e.store.Update(ctx, index, draft.English, draft.Japanese, draft.Example); err != nil {
		return -1, err
	}
	return index, nil
}

// DeleteSelected removes the selected entry and clears the form.
func (e *Editor) DeleteSelected(ctx context.Context) error {
	index, ok := e.Selected()
	if !ok {
		return fmt.Errorf("selected entry: %w", entity.ErrIndexOutOfRange)
	}
	if err := e.store.Delete(ctx, index); err != nil {
		return err
	}
	e.Clear()
	return nil
}

// LookupExample fetches an example for the draft's English word and, when one is
// found, writes it into the draft. The store is never modified.
func (e *Editor) LookupExample(ctx context.Context) (LookupResult, error) {
	if e.lookup == nil {
		return LookupResult{}, entity.ErrLookupUnavailable
	}
	word := e.Draft().English
	res := <-e.lookup.Start(ctx, word)
	if res.Err != nil {
		return res, res.Err
	}
	if res.Found {
		e.mu.Lock()
		if e.draft.English == word {
			e.draft.Example = res.Example
		}
		e.mu.Unlock()
	}
	return res, nil
}

func (e *Editor) onStoreChanged(entries []entity.Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft.EntryID == "" {
		return
	}
	if !lo.ContainsBy(entries, func(entry entity.Entry) bool { return entry.ID == e.draft.EntryID }) {
		e.draft = entity.Draft{}
	}
}
