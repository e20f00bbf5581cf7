package gateway

import "net/http"

// handleHealth proxies the analysis service's health report. Offline
// default mirrors the remote success schema with everything empty.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	out, err := s.client.Get(r.Context(), "/health")
	if err != nil {
		s.respondFallback(w, r, err, http.StatusOK, map[string]any{
			"status":        "offline",
			"version":       "unknown",
			"agents":        []string{},
			"tools":         []string{},
			"plugins":       []string{},
			"gateways":      map[string]any{},
			"learning_mode": false,
		})
		return
	}
	s.respondRemote(w, r, out)
}

// handleHealthPro proxies the detailed health report. The offline
// default folds in what the gateway does know locally: scheduler and
// notification channel counts from the store.
func (s *Server) handleHealthPro(w http.ResponseWriter, r *http.Request) {
	out, err := s.client.Get(r.Context(), "/v1/health/pro")
	if err != nil {
		st := s.store.Stats()
		s.respondFallback(w, r, err, http.StatusOK, map[string]any{
			"status":  "offline",
			"version": "unknown",
			"uptime":  "0d 0h 0m",
			"agents": map[string]any{
				"registered_tools": 0,
				"responsive":       false,
				"squads":           []string{"blue", "red", "purple"},
			},
			"scheduler": map[string]any{
				"active_jobs": st.ActiveJobs,
				"total_jobs":  st.TotalJobs,
			},
			"gateways": map[string]any{
				"connected": st.ConnectedGateways,
				"total":     st.TotalGateways,
			},
		})
		return
	}
	s.respondRemote(w, r, out)
}

// handleNodes serves the local sensor node list.
func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	s.respondLocal(w, r, s.store.Nodes())
}

// handleInfra proxies the infrastructure config, falling back to an
// unknown-provider stub.
func (s *Server) handleInfra(w http.ResponseWriter, r *http.Request) {
	out, err := s.client.Get(r.Context(), "/v1/infra/status")
	if err != nil {
		s.respondFallback(w, r, err, http.StatusOK, map[string]any{
			"provider": "unknown",
			"region":   "unknown",
			"status":   "offline",
		})
		return
	}
	s.respondRemote(w, r, out)
}
