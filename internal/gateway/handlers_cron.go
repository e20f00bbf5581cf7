package gateway

import (
	"net/http"

	"github.com/piyawatSritavong/cybersentinel/internal/store"
)

// Cron routes forward to the analysis service's scheduler and fall back
// to the local job snapshot. Store lookup misses are reported as a 200
// with an error body, matching the remote service's convention of always
// answering with a payload describing the outcome.

func (s *Server) handleCronList(w http.ResponseWriter, r *http.Request) {
	out, err := s.client.Get(r.Context(), "/v1/cron")
	if err != nil {
		s.respondFallback(w, r, err, http.StatusOK, s.store.Jobs())
		return
	}
	s.respondRemote(w, r, out)
}

func (s *Server) handleCronCreate(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)

	out, err := s.client.Post(r.Context(), "/v1/cron", body)
	if err != nil {
		// Bodies are forwarded unvalidated, but a job stored locally gets a
		// schedule the local scheduler understands.
		schedule := stringField(body, "schedule")
		if !store.ValidSchedule(schedule) {
			schedule = "every_1h"
		}
		job := s.store.AddJob(
			stringField(body, "name"),
			schedule,
			stringField(body, "squad"),
			stringField(body, "task"),
		)
		s.respondFallback(w, r, err, http.StatusOK, job)
		return
	}
	s.respondRemote(w, r, out)
}

func (s *Server) handleCronToggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	out, err := s.client.Do(r.Context(), http.MethodPatch, "/v1/cron/"+id+"/toggle", nil)
	if err != nil {
		job, ok := s.store.ToggleJob(id)
		if !ok {
			s.respondFallback(w, r, err, http.StatusOK, APIError{Error: "job not found"})
			return
		}
		s.respondFallback(w, r, err, http.StatusOK, job)
		return
	}
	s.respondRemote(w, r, out)
}

func (s *Server) handleCronDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	out, err := s.client.Do(r.Context(), http.MethodDelete, "/v1/cron/"+id, nil)
	if err != nil {
		if !s.store.RemoveJob(id) {
			s.respondFallback(w, r, err, http.StatusOK, APIError{Error: "job not found"})
			return
		}
		s.respondFallback(w, r, err, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	s.respondRemote(w, r, out)
}
