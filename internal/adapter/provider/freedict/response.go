package freedict

// apiEntry is one element of the Free Dictionary API response array
// (the API returns one entry per etymology).
type apiEntry struct {
	Word     string       `json:"word"`
	Meanings []apiMeaning `json:"meanings"`
}

// apiMeaning groups definitions sharing a part of speech.
type apiMeaning struct {
	PartOfSpeech string          `json:"partOfSpeech"`
	Definitions  []apiDefinition `json:"definitions"`
}

// apiDefinition is a single definition with an optional usage example.
type apiDefinition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

// firstExample scans entries, meanings and definitions in document order and
// returns the first non-empty example.
func firstExample(entries []apiEntry) (string, bool) {
	for _, entry := range entries {
		for _, meaning := range entry.Meanings {
			for _, def := range meaning.Definitions {
				if def.Example != "" {
					return def.Example, true
				}
			}
		}
	}
	return "", false
}
