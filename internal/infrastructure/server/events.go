package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/eslsoft/wordbook/internal/entity"
)

// streamEvents pushes the full list as a server-sent event right away and again
// after every store mutation. A slow client only ever sees the latest list.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, fmt.Errorf("streaming unsupported"))
		return
	}

	var (
		mu     sync.Mutex
		latest []entity.Entry
	)
	signal := make(chan struct{}, 1)
	unsubscribe := s.store.Subscribe(func(entries []entity.Entry) {
		mu.Lock()
		latest = entries
		mu.Unlock()
		select {
		case signal <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, s.store.List()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.closing:
			return
		case <-signal:
			mu.Lock()
			entries := latest
			mu.Unlock()
			if err := writeEvent(w, entries); err != nil {
				s.logger.WithError(err).Debug("event stream closed")
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, entries []entity.Entry) error {
	resp := listResponse{Entries: make([]entryResponse, 0, len(entries)), Total: len(entries)}
	for i, e := range entries {
		resp.Entries = append(resp.Entries, toEntryResponse(i, e))
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: entries\ndata: %s\n\n", data)
	return err
}
