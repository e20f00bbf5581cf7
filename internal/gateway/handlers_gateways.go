package gateway

import (
	"fmt"
	"net/http"
	"time"
)

// handleGateways proxies notification channel status, falling back to
// the local channel summary.
func (s *Server) handleGateways(w http.ResponseWriter, r *http.Request) {
	out, err := s.client.Get(r.Context(), "/v1/gateways/status")
	if err != nil {
		s.respondFallback(w, r, err, http.StatusOK, s.store.Gateways())
		return
	}
	s.respondRemote(w, r, out)
}

// handleGatewaysTest forwards a channel test. When the analysis service
// is down and the gateway itself has credentials for the requested
// channel, it delivers the test message locally and records the
// delivery; otherwise the failure is echoed in the remote shape.
func (s *Server) handleGatewaysTest(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	name := stringField(body, "gateway")
	if name == "" {
		name = "telegram"
	}

	out, err := s.client.Post(r.Context(), "/v1/gateways/test", body)
	if err == nil {
		s.respondRemote(w, r, out)
		return
	}

	ch, ok := s.channels[name]
	if !ok {
		s.respondFallback(w, r, err, http.StatusOK, map[string]any{
			"success": false,
			"gateway": name,
			"error":   fmt.Sprintf("gateway %q has no local credentials configured", name),
		})
		return
	}

	text := "CyberSentinel Gateway Test - " + time.Now().UTC().Format("2006-01-02 15:04:05 UTC")
	if sendErr := ch.Send(r.Context(), text); sendErr != nil {
		s.store.UpdateGatewayStatus(name, "disconnected")
		s.respondFallback(w, r, err, http.StatusOK, map[string]any{
			"success": false,
			"gateway": name,
			"error":   sendErr.Error(),
		})
		return
	}

	gw, _ := s.store.MarkGatewayMessage(name)
	s.respondFallback(w, r, err, http.StatusOK, map[string]any{
		"success": true,
		"gateway": name,
		"status":  gw,
	})
}
