package backup

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/wordbook/internal/entity"
	"github.com/eslsoft/wordbook/internal/usecase"
)

const (
	defaultBatchSize = 512
	formatVersion    = 1

	recordTypeMeta  = "meta"
	recordTypeEntry = "entry"

	// a single record never legitimately approaches this
	maxRecordBytes = 1 << 20
)

var errMissingMeta = errors.New("backup: missing meta record")

// ProgressReporter receives progress callbacks during export and import.
type ProgressReporter interface {
	Start(total int)
	Increment(delta int)
	Finish()
}

type noopProgress struct{}

func (noopProgress) Start(int)     {}
func (noopProgress) Increment(int) {}
func (noopProgress) Finish()       {}

// Service streams the entry list to and from NDJSON backups.
type Service struct {
	store     usecase.EntryStore
	batchSize int
	now       func() time.Time
}

type Option func(*Service)

// WithBatchSize sets how many entries are written between progress callbacks.
func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// NewService constructs a backup service bound to store.
func NewService(store usecase.EntryStore, opts ...Option) *Service {
	svc := &Service{
		store:     store,
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	reporter ProgressReporter
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	replace  bool
	reporter ProgressReporter
}

// WithReplace swaps the whole list instead of appending to it.
func WithReplace(replace bool) ImportOption {
	return func(cfg *importConfig) {
		cfg.replace = replace
	}
}

// WithImportProgressReporter registers a reporter that receives progress callbacks during import.
func WithImportProgressReporter(reporter ProgressReporter) ImportOption {
	return func(cfg *importConfig) {
		cfg.reporter = reporter
	}
}

type record struct {
	Type       string     `json:"type"`
	Version    int        `json:"version,omitempty"`
	ExportedAt *time.Time `json:"exported_at,omitempty"`
	Count      *int       `json:"count,omitempty"`
	Payload    any        `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	ExportedAt *time.Time      `json:"exported_at"`
	Count      *int            `json:"count"`
	Payload    json.RawMessage `json:"payload"`
}

// Export writes a meta record followed by one record per entry, in store order.
// It returns the number of entries written.
func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) (int, error) {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	entries := s.store.List()
	count := len(entries)

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := s.now().UTC()
	meta := record{
		Type:       recordTypeMeta,
		Version:    formatVersion,
		ExportedAt: &now,
		Count:      &count,
	}
	if err := writeRecord(writer, meta); err != nil {
		return 0, err
	}

	reporter.Start(count)
	for _, batch := range lo.Chunk(entries, s.batchSize) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		for _, e := range batch {
			if err := writeRecord(writer, record{Type: recordTypeEntry, Payload: e}); err != nil {
				return 0, err
			}
		}
		reporter.Increment(len(batch))
	}
	reporter.Finish()

	if err := writer.Flush(); err != nil {
		return 0, fmt.Errorf("flush backup: %w", err)
	}
	return count, nil
}

// Import reads a backup produced by Export. Every record is decoded and validated
// before the store is touched, so a bad stream leaves the store unchanged.
// It returns the number of entries imported.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) (int, error) {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	entries, err := readEntries(r)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	reporter.Start(len(entries))
	if cfg.replace {
		err = s.store.Replace(ctx, entries)
	} else {
		err = s.store.Append(ctx, entries)
	}
	if err != nil {
		return 0, fmt.Errorf("import entries: %w", err)
	}
	reporter.Increment(len(entries))
	reporter.Finish()
	return len(entries), nil
}

func readEntries(r io.Reader) ([]entity.Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)

	var (
		metaSeen bool
		meta     rawRecord
		entries  []entity.Entry
		lineNo   int
	)
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec rawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("%w: decode record on line %d: %w", entity.ErrValidation, lineNo, err)
		}

		switch rec.Type {
		case recordTypeMeta:
			if metaSeen {
				return nil, fmt.Errorf("%w: backup: duplicate meta record on line %d", entity.ErrValidation, lineNo)
			}
			metaSeen = true
			meta = rec
		case recordTypeEntry:
			if !metaSeen {
				return nil, fmt.Errorf("%w: %w", entity.ErrValidation, errMissingMeta)
			}
			entry, err := decodeEntry(rec.Payload)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			entries = append(entries, entry)
		default:
			return nil, fmt.Errorf("%w: backup: unknown record type %q on line %d", entity.ErrValidation, rec.Type, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}

	if !metaSeen {
		return nil, fmt.Errorf("%w: %w", entity.ErrValidation, errMissingMeta)
	}
	if meta.Version != formatVersion {
		return nil, fmt.Errorf("%w: backup: unsupported format version %d", entity.ErrValidation, meta.Version)
	}
	if meta.Count != nil && *meta.Count != len(entries) {
		return nil, fmt.Errorf("%w: backup: meta announces %d entries, found %d", entity.ErrValidation, *meta.Count, len(entries))
	}
	if entries == nil {
		entries = []entity.Entry{}
	}
	return entries, nil
}

func decodeEntry(payload json.RawMessage) (entity.Entry, error) {
	if len(payload) == 0 {
		return entity.Entry{}, fmt.Errorf("%w: backup: missing payload", entity.ErrValidation)
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	var e entity.Entry
	if err := dec.Decode(&e); err != nil {
		return entity.Entry{}, fmt.Errorf("%w: decode payload: %w", entity.ErrValidation, err)
	}
	e.Normalize()
	if err := e.Validate(); err != nil {
		return entity.Entry{}, err
	}
	return e, nil
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return err
	}
	return nil
}
