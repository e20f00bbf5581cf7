package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routes binds every external path+method pair to exactly one handler.
// Routing never inspects the request body.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/health", s.timed(s.handleHealth))
	mux.HandleFunc("GET /api/health/pro", s.timed(s.handleHealthPro))
	mux.HandleFunc("GET /api/stats", s.timed(s.handleStats))

	mux.HandleFunc("GET /api/alerts", s.timed(s.handleAlerts))
	mux.HandleFunc("POST /api/ingest", s.timed(s.handleIngest))

	mux.HandleFunc("POST /api/agents/run", s.timed(s.handleAgentsRun))
	mux.HandleFunc("GET /api/skills", s.timed(s.handleSkills))
	mux.HandleFunc("POST /api/skills/generate", s.timed(s.handleSkillsGenerate))

	mux.HandleFunc("GET /api/cron", s.timed(s.handleCronList))
	mux.HandleFunc("POST /api/cron", s.timed(s.handleCronCreate))
	mux.HandleFunc("PATCH /api/cron/{id}/toggle", s.timed(s.handleCronToggle))
	mux.HandleFunc("DELETE /api/cron/{id}", s.timed(s.handleCronDelete))

	mux.HandleFunc("GET /api/nodes", s.timed(s.handleNodes))
	mux.HandleFunc("GET /api/infra", s.timed(s.handleInfra))

	mux.HandleFunc("GET /api/gateways", s.timed(s.handleGateways))
	mux.HandleFunc("POST /api/gateways/test", s.timed(s.handleGatewaysTest))

	mux.HandleFunc("GET /api/settings", s.timed(s.handleSettingsGet))
	mux.HandleFunc("POST /api/settings", s.timed(s.handleSettingsPut))
	mux.HandleFunc("GET /api/settings/onboarding", s.timed(s.handleOnboardingGet))
	mux.HandleFunc("POST /api/settings/onboarding/complete", s.timed(s.handleOnboardingComplete))
	mux.HandleFunc("POST /api/settings/api-key/rotate", s.timed(s.handleAPIKeyRotate))

	mux.HandleFunc("GET /api/providers/models", s.timed(s.handleProviderModels))
	mux.HandleFunc("GET /api/providers/integrations", s.timed(s.handleProviderIntegrations))
	mux.HandleFunc("GET /api/providers/social", s.timed(s.handleProviderSocial))
	mux.HandleFunc("POST /api/providers/integrations/test", s.timed(s.handleIntegrationsTest))

	mux.HandleFunc("POST /api/terminal", s.timed(s.handleTerminal))

	return mux
}
