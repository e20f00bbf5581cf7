package gateway

import (
	"fmt"
	"net/http"

	"github.com/piyawatSritavong/cybersentinel/internal/store"
)

// handleStats serves aggregate counts from local state only.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondLocal(w, r, s.store.Stats())
}

// handleAlerts serves the local alert feed, newest first.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	s.respondLocal(w, r, s.store.Alerts())
}

// handleIngest forwards an alert to the analysis service and always
// records a local feed entry as a side effect: on success with the
// remote verdict and task id, on failure with an Error verdict carrying
// the failure reason. The feed is never silently missing a submitted
// alert.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)

	out, err := s.client.Post(r.Context(), "/v1/ingest", body)
	if err != nil {
		s.recordIngest(body, nil, err)
		s.respondFallback(w, r, err, http.StatusInternalServerError,
			APIError{Error: fmt.Sprintf("ingest failed: %v", err)})
		return
	}

	remote, _ := out.(map[string]any)
	s.recordIngest(body, remote, nil)
	s.respondRemote(w, r, out)
}

// recordIngest appends the local feed entry for one ingest attempt.
func (s *Server) recordIngest(body, remote map[string]any, remoteErr error) {
	entry := store.AlertEntry{
		AlertID: stringField(body, "alert_id"),
		Source:  stringField(body, "source"),
	}
	if remoteErr != nil {
		entry.Verdict = store.VerdictError
		entry.Summary = fmt.Sprintf("ingest failed: %v", remoteErr)
	} else {
		entry.Verdict = store.VerdictPending
		entry.TaskID = stringField(remote, "task_id")
		entry.Summary = stringField(remote, "message")
		if id := stringField(remote, "alert_id"); id != "" {
			entry.AlertID = id
		}
		if entry.Summary == "" {
			entry.Summary = "queued for analysis"
		}
	}
	s.store.AppendAlert(entry)
}
