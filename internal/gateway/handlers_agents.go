package gateway

import "net/http"

// handleAgentsRun forwards a squad run. With the analysis service down
// there is no local substitute for agent execution, so the fallback is
// an error-shaped run result in the remote schema.
func (s *Server) handleAgentsRun(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)

	out, err := s.client.Post(r.Context(), "/v1/agents/run", body)
	if err != nil {
		squad := stringField(body, "squad")
		if squad == "" {
			squad = "blue"
		}
		s.respondFallback(w, r, err, http.StatusOK, map[string]any{
			"agent":  squad + "_team",
			"result": "Analysis service is offline. The request was not processed.",
			"status": "error",
		})
		return
	}
	s.respondRemote(w, r, out)
}

// handleSkills lists remote skills, falling back to an empty list.
func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	out, err := s.client.Get(r.Context(), "/v1/skills")
	if err != nil {
		s.respondFallback(w, r, err, http.StatusOK, []any{})
		return
	}
	s.respondRemote(w, r, out)
}

// handleSkillsGenerate forwards skill generation. There is no local
// generator, so a remote failure surfaces as a 500.
func (s *Server) handleSkillsGenerate(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)

	out, err := s.client.Post(r.Context(), "/v1/skills/generate", body)
	if err != nil {
		s.respondFallback(w, r, err, http.StatusInternalServerError,
			APIError{Error: err.Error()})
		return
	}
	s.respondRemote(w, r, out)
}
