package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/outreachly/leadgen-crawler/internal/progress"
)

// streamEvents serves a job's progress feed over Server-Sent Events. The feed
// replays history and the current stats before switching to live delivery;
// the stream closes after the done event or when the client disconnects.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	j, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, detach := j.Feed().Attach()
	defer detach()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, open := <-events:
			if !open {
				return
			}
			if err := writeSSE(w, evt); err != nil {
				return
			}
			flusher.Flush()
			if evt.Type == progress.TypeDone {
				return
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, evt progress.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, payload)
	return err
}
