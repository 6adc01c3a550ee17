package entity

// Draft is the editor's uncommitted form state.
// EntryID is empty when the draft describes a new entry.
type Draft struct {
	EntryID  string
	English  string
	Japanese string
	Example  string
}

// IsEmpty reports whether no field carries input.
func (d Draft) IsEmpty() bool {
	return d.EntryID == "" && d.English == "" && d.Japanese == "" && d.Example == ""
}

// DraftFromEntry loads an entry into the editor form.
func DraftFromEntry(e Entry) Draft {
	return Draft{EntryID: e.ID, English: e.English, Japanese: e.Japanese, Example: e.Example}
}
