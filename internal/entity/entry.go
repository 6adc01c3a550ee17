package entity

import "strings"

// Entry is one English/Japanese word pair with an optional example sentence.
//
// ID is an in-memory surrogate assigned by the store. It is never persisted:
// the on-disk identity of an entry is its position.
type Entry struct {
	ID       string `json:"-"`
	English  string `json:"english"`
	Japanese string `json:"japanese"`
	Example  string `json:"example"`
}

// NewEntry returns a normalized entry built from raw form input.
func NewEntry(english, japanese, example string) Entry {
	e := Entry{English: english, Japanese: japanese, Example: example}
	e.Normalize()
	return e
}

// Normalize trims surrounding whitespace from every field.
func (e *Entry) Normalize() {
	e.English = strings.TrimSpace(e.English)
	e.Japanese = strings.TrimSpace(e.Japanese)
	e.Example = strings.TrimSpace(e.Example)
}

// Validate reports every empty required field. It does not trim; call Normalize first.
func (e Entry) Validate() error {
	var fields []FieldError
	if strings.TrimSpace(e.English) == "" {
		fields = append(fields, FieldError{Field: "english", Message: "is required"})
	}
	if strings.TrimSpace(e.Japanese) == "" {
		fields = append(fields, FieldError{Field: "japanese", Message: "is required"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Equal compares the persisted fields, ignoring the surrogate ID.
func (e Entry) Equal(other Entry) bool {
	return e.English == other.English && e.Japanese == other.Japanese && e.Example == other.Example
}

// Label is the single-line form used by list views ("apple - りんご").
func (e Entry) Label() string {
	return e.English + " - " + e.Japanese
}

// IndexedEntry pairs an entry with its current position.
type IndexedEntry struct {
	Index int
	Entry Entry
}
