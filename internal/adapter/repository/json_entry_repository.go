package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/eslsoft/wordbook/internal/entity"
	"github.com/eslsoft/wordbook/internal/repository"
)

// entryRecord is the on-disk shape of one entry. Keys are fixed; a record
// written before examples existed has no "example" key and reads as "".
type entryRecord struct {
	English  string `json:"english"`
	Japanese string `json:"japanese"`
	Example  string `json:"example"`
}

type jsonEntryRepository struct {
	fs     afero.Fs
	path   string
	logger logrus.FieldLogger
}

// NewJSONEntryRepository stores entries as a single JSON array at path.
func NewJSONEntryRepository(fsys afero.Fs, path string, logger logrus.FieldLogger) repository.EntryRepository {
	return &jsonEntryRepository{
		fs:     fsys,
		path:   path,
		logger: logger.WithField("component", "json_repository"),
	}
}

func (r *jsonEntryRepository) Load(ctx context.Context) ([]entity.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrPersistence, err)
	}
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.WithField("path", r.path).Debug("entry file not found, starting empty")
			return []entity.Entry{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", entity.ErrPersistence, r.path, err)
	}

	entries, err := decodeEntries(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", entity.ErrPersistence, r.path, err)
	}
	r.logger.WithFields(logrus.Fields{"path": r.path, "entries": len(entries)}).Debug("entries loaded")
	return entries, nil
}

func (r *jsonEntryRepository) Save(ctx context.Context, entries []entity.Entry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrPersistence, err)
	}
	data, err := encodeEntries(entries)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", entity.ErrPersistence, err)
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := r.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create directory %s: %w", entity.ErrPersistence, dir, err)
		}
	}
	if err := afero.WriteFile(r.fs, r.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", entity.ErrPersistence, r.path, err)
	}
	r.logger.WithFields(logrus.Fields{"path": r.path, "entries": len(entries)}).Debug("entries saved")
	return nil
}

func encodeEntries(entries []entity.Entry) ([]byte, error) {
	records := make([]entryRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, entryRecord{English: e.English, Japanese: e.Japanese, Example: e.Example})
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeEntries(data []byte) ([]entity.Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("expected a JSON array of entries")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	entries := make([]entity.Entry, 0, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, fmt.Errorf("entry %d: expected an object", i)
		}
		var rec entryRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		e := entity.NewEntry(rec.English, rec.Japanese, rec.Example)
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
