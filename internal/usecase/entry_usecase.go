package usecase

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordbook/internal/entity"
	"github.com/eslsoft/wordbook/internal/repository"
	"github.com/eslsoft/wordbook/pkg/filterexpr"
)

// EntryIndex is the position of an entry in the ordered store.
type EntryIndex = int

// EntryStore owns the ordered entry list. Every mutation is written through to the
// repository before subscribers are notified.
type EntryStore interface {
	Load(ctx context.Context) error
	Add(ctx context.Context, english, japanese, example string) (EntryIndex, error)
	Update(ctx context.Context, index EntryIndex, english, japanese, example string) error
	Delete(ctx context.Context, index EntryIndex) error
	Get(index EntryIndex) (entity.Entry, error)
	List() []entity.Entry
	Len() int
	Save(ctx context.Context) error

	IndexOf(id string) (EntryIndex, bool)
	Append(ctx context.Context, entries []entity.Entry) error
	Replace(ctx context.Context, entries []entity.Entry) error
	Search(filter, orderBy string) ([]entity.IndexedEntry, error)

	// Subscribe registers fn to receive the full ordered list after every mutation.
	Subscribe(fn func([]entity.Entry)) (unsubscribe func())
}

var entryFilterSchema = filterexpr.Schema{
	"english":  filterexpr.KindString,
	"japanese": filterexpr.KindString,
	"example":  filterexpr.KindString,
	"index":    filterexpr.KindInt,
}

var entryOrderSchema = filterexpr.OrderSchema{
	Fields:      map[string]struct{}{"english": {}, "japanese": {}, "example": {}, "index": {}},
	FallbackKey: "index",
}

type subscriber struct {
	id int
	fn func([]entity.Entry)
}

type entryStore struct {
	mu      sync.Mutex
	repo    repository.EntryRepository
	logger  logrus.FieldLogger
	newID   func() string
	entries []entity.Entry

	// seq numbers committed revisions under mu. notifyMu serializes delivery and
	// drops any revision older than the last one delivered.
	seq          uint64
	notifyMu     sync.Mutex
	lastNotified uint64

	subMu  sync.Mutex
	subSeq int
	subs   []subscriber
}

// revision is one committed state of the list.
type revision struct {
	seq     uint64
	entries []entity.Entry
}

// NewEntryStore creates an empty store backed by repo. Call Load to seed it.
func NewEntryStore(repo repository.EntryRepository, logger logrus.FieldLogger) EntryStore {
	return &entryStore{
		repo:    repo,
		logger:  logger.WithField("component", "entry_store"),
		newID:   uuid.NewString,
		entries: []entity.Entry{},
	}
}

func (s *entryStore) Load(ctx context.Context) error {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	s.mu.Lock()
	for i := range loaded {
		loaded[i].ID = s.newID()
	}
	s.entries = loaded
	rev := s.revisionLocked()
	s.mu.Unlock()

	s.logger.WithField("entries", len(loaded)).Info("entries loaded")
	s.notify(rev)
	return nil
}

func (s *entryStore) Add(ctx context.Context, english, japanese, example string) (EntryIndex, error) {
	entry := entity.NewEntry(english, japanese, example)
	if err := entry.Validate(); err != nil {
		return -1, err
	}

	s.mu.Lock()
	entry.ID = s.newID()
	previous := s.entries
	s.entries = append(slices.Clip(previous), entry)
	index := len(s.entries) - 1
	rev, err := s.commitLocked(ctx, previous)
	s.mu.Unlock()
	if err != nil {
		return -1, err
	}

	s.logger.WithFields(logrus.Fields{"index": index, "english": entry.English}).Debug("entry added")
	s.notify(rev)
	return index, nil
}

func (s *entryStore) Update(ctx context.Context, index EntryIndex, english, japanese, example string) error {
	entry := entity.NewEntry(english, japanese, example)

	s.mu.Lock()
	if err := s.checkIndexLocked(index); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := entry.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	previous := s.entries
	next := slices.Clone(previous)
	entry.ID = previous[index].ID
	next[index] = entry
	s.entries = next
	rev, err := s.commitLocked(ctx, previous)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"index": index, "english": entry.English}).Debug("entry updated")
	s.notify(rev)
	return nil
}

func (s *entryStore) Delete(ctx context.Context, index EntryIndex) error {
	s.mu.Lock()
	if err := s.checkIndexLocked(index); err != nil {
		s.mu.Unlock()
		return err
	}
	previous := s.entries
	s.entries = slices.Delete(slices.Clone(previous), index, index+1)
	rev, err := s.commitLocked(ctx, previous)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.WithField("index", index).Debug("entry deleted")
	s.notify(rev)
	return nil
}

func (s *entryStore) Get(index EntryIndex) (entity.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndexLocked(index); err != nil {
		return entity.Entry{}, err
	}
	return s.entries[index], nil
}

func (s *entryStore) List() []entity.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *entryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *entryStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Save(ctx, s.entries); err != nil {
		return fmt.Errorf("save entries: %w", err)
	}
	return nil
}

func (s *entryStore) IndexOf(id string) (EntryIndex, bool) {
	if id == "" {
		return -1, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, index, ok := lo.FindIndexOf(s.entries, func(e entity.Entry) bool { return e.ID == id })
	return index, ok
}

func (s *entryStore) Append(ctx context.Context, entries []entity.Entry) error {
	return s.bulk(ctx, entries, false)
}

func (s *entryStore) Replace(ctx context.Context, entries []entity.Entry) error {
	return s.bulk(ctx, entries, true)
}

// bulk validates every incoming entry before touching the store, then writes once.
func (s *entryStore) bulk(ctx context.Context, entries []entity.Entry, replace bool) error {
	incoming := make([]entity.Entry, 0, len(entries))
	for i, e := range entries {
		e.Normalize()
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		incoming = append(incoming, e)
	}

	s.mu.Lock()
	for i := range incoming {
		incoming[i].ID = s.newID()
	}
	previous := s.entries
	if replace {
		s.entries = incoming
	} else {
		s.entries = append(slices.Clone(previous), incoming...)
	}
	rev, err := s.commitLocked(ctx, previous)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"count": len(incoming), "replace": replace}).Info("entries imported")
	s.notify(rev)
	return nil
}

func (s *entryStore) Search(filter, orderBy string) ([]entity.IndexedEntry, error) {
	keys, err := filterexpr.ParseOrderBy(orderBy, entryOrderSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: order_by: %w", entity.ErrValidation, err)
	}

	var predicate *filterexpr.Predicate
	if strings.TrimSpace(filter) != "" {
		predicate, err = filterexpr.Compile(filter, entryFilterSchema)
		if err != nil {
			return nil, fmt.Errorf("%w: filter: %w", entity.ErrValidation, err)
		}
	}

	indexed := lo.Map(s.List(), func(e entity.Entry, i int) entity.IndexedEntry {
		return entity.IndexedEntry{Index: i, Entry: e}
	})

	if predicate != nil {
		matched := make([]entity.IndexedEntry, 0, len(indexed))
		for _, ie := range indexed {
			ok, err := predicate.Match(entryVars(ie))
			if err != nil {
				return nil, err
			}
			if ok {
				matched = append(matched, ie)
			}
		}
		indexed = matched
	}

	if len(keys) > 0 {
		sort.SliceStable(indexed, func(i, j int) bool {
			return lessByKeys(indexed[i], indexed[j], keys)
		})
	}
	return indexed, nil
}

func (s *entryStore) Subscribe(fn func([]entity.Entry)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subSeq++
	id := s.subSeq
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		s.subs = lo.Reject(s.subs, func(sub subscriber, _ int) bool { return sub.id == id })
	}
}

// commitLocked writes the current list through. On failure the list is rolled
// back to previous so memory never diverges from disk.
func (s *entryStore) commitLocked(ctx context.Context, previous []entity.Entry) (revision, error) {
	if err := s.repo.Save(ctx, s.entries); err != nil {
		s.entries = previous
		s.logger.WithError(err).Error("write-through failed, mutation rolled back")
		return revision{}, fmt.Errorf("write-through: %w", err)
	}
	return s.revisionLocked(), nil
}

func (s *entryStore) checkIndexLocked(index EntryIndex) error {
	if index < 0 || index >= len(s.entries) {
		return &entity.IndexError{Index: index, Len: len(s.entries)}
	}
	return nil
}

func (s *entryStore) snapshotLocked() []entity.Entry {
	return slices.Clone(s.entries)
}

func (s *entryStore) revisionLocked() revision {
	s.seq++
	return revision{seq: s.seq, entries: s.snapshotLocked()}
}

// notify delivers rev to every subscriber unless a newer revision already went
// out, so the last list a subscriber sees is always the current one.
// Subscribers must not mutate the store from inside their callback.
func (s *entryStore) notify(rev revision) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if rev.seq <= s.lastNotified {
		return
	}
	s.lastNotified = rev.seq

	s.subMu.Lock()
	subs := slices.Clone(s.subs)
	s.subMu.Unlock()
	for _, sub := range subs {
		sub.fn(slices.Clone(rev.entries))
	}
}

func entryVars(ie entity.IndexedEntry) map[string]any {
	return map[string]any{
		"english":  ie.Entry.English,
		"japanese": ie.Entry.Japanese,
		"example":  ie.Entry.Example,
		"index":    int64(ie.Index),
	}
}

func lessByKeys(a, b entity.IndexedEntry, keys []filterexpr.OrderKey) bool {
	for _, key := range keys {
		cmp := compareField(a, b, key.Field)
		if cmp == 0 {
			continue
		}
		if key.Desc {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

func compareField(a, b entity.IndexedEntry, field string) int {
	switch field {
	case "english":
		return strings.Compare(strings.ToLower(a.Entry.English), strings.ToLower(b.Entry.English))
	case "japanese":
		return strings.Compare(a.Entry.Japanese, b.Entry.Japanese)
	case "example":
		return strings.Compare(a.Entry.Example, b.Entry.Example)
	default:
		return a.Index - b.Index
	}
}
