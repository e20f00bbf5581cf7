package gateway

import "net/http"

// Provider catalog routes. The analysis service owns the live catalogs;
// the fallbacks are static stubs so the configuration pages still render
// while it is down.

func (s *Server) handleProviderModels(w http.ResponseWriter, r *http.Request) {
	out, err := s.client.Get(r.Context(), "/v1/providers/models")
	if err != nil {
		s.respondFallback(w, r, err, http.StatusOK, []map[string]any{
			{"id": "groq", "name": "Groq", "models": []string{"llama-3.3-70b-versatile"}, "status": "unknown"},
			{"id": "openai", "name": "OpenAI", "models": []string{"gpt-4o-mini"}, "status": "unknown"},
		})
		return
	}
	s.respondRemote(w, r, out)
}

func (s *Server) handleProviderIntegrations(w http.ResponseWriter, r *http.Request) {
	out, err := s.client.Get(r.Context(), "/v1/providers/integrations")
	if err != nil {
		s.respondFallback(w, r, err, http.StatusOK, []map[string]any{
			{"id": "jira", "name": "Jira", "category": "ticketing", "connected": false},
			{"id": "thehive", "name": "TheHive", "category": "ticketing", "connected": false},
			{"id": "splunk", "name": "Splunk", "category": "siem", "connected": false},
		})
		return
	}
	s.respondRemote(w, r, out)
}

func (s *Server) handleProviderSocial(w http.ResponseWriter, r *http.Request) {
	out, err := s.client.Get(r.Context(), "/v1/providers/social")
	if err != nil {
		s.respondFallback(w, r, err, http.StatusOK, []any{})
		return
	}
	s.respondRemote(w, r, out)
}

func (s *Server) handleIntegrationsTest(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)

	out, err := s.client.Post(r.Context(), "/v1/providers/integrations/test", body)
	if err != nil {
		s.respondFallback(w, r, err, http.StatusOK, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	s.respondRemote(w, r, out)
}
