package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/samber/lo"

	"github.com/eslsoft/wordbook/internal/entity"
)

const maxRequestBytes = 1 << 20

type entryPayload struct {
	English  string `json:"english"`
	Japanese string `json:"japanese"`
	Example  string `json:"example"`
}

type entryResponse struct {
	Index    int    `json:"index"`
	English  string `json:"english"`
	Japanese string `json:"japanese"`
	Example  string `json:"example"`
}

type listResponse struct {
	Entries []entryResponse `json:"entries"`
	Total   int             `json:"total"`
}

type lookupResponse struct {
	Word    string `json:"word"`
	Example string `json:"example"`
	Found   bool   `json:"found"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (p entryPayload) entry() entity.Entry {
	return entity.NewEntry(p.English, p.Japanese, p.Example)
}

func toEntryResponse(index int, e entity.Entry) entryResponse {
	return entryResponse{Index: index, English: e.English, Japanese: e.Japanese, Example: e.Example}
}

func toListResponse(entries []entity.IndexedEntry, total int) listResponse {
	return listResponse{
		Entries: lo.Map(entries, func(ie entity.IndexedEntry, _ int) entryResponse {
			return toEntryResponse(ie.Index, ie.Entry)
		}),
		Total: total,
	}
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := s.store.Search(q.Get("filter"), q.Get("order_by"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(entries, s.store.Len()))
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	index, err := s.store.Add(r.Context(), payload.English, payload.Japanese, payload.Example)
	if err != nil {
		s.writeError(w, err)
		return
	}
	// answer with what was written; the slot may already hold another entry
	writeJSON(w, http.StatusCreated, toEntryResponse(index, payload.entry()))
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	entry, err := s.store.Get(index)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(index, entry))
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	payload, err := decodePayload(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Update(r.Context(), index, payload.English, payload.Japanese, payload.Example); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(index, payload.entry()))
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), index); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookupExample(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		s.writeError(w, fmt.Errorf("%w: dictionary disabled", entity.ErrLookupUnavailable))
		return
	}
	word := r.PathValue("word")
	res := s.lookup.Lookup(r.Context(), word)
	if res.Err != nil {
		s.writeError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{Word: res.Word, Example: res.Example, Found: res.Found})
}

func decodePayload(r *http.Request) (entryPayload, error) {
	var payload entryPayload
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return entryPayload{}, fmt.Errorf("%w: request body: %w", entity.ErrValidation, err)
	}
	return payload, nil
}

func pathIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, entity.NewValidationError("index", fmt.Sprintf("%q is not an integer", raw))
	}
	return index, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrLookupUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
