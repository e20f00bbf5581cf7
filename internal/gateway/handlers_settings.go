package gateway

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/piyawatSritavong/cybersentinel/internal/onboarding"
)

// Settings routes forward to the analysis service first and fall back to
// the locally persisted settings record, so the configuration pages keep
// working offline.

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	out, err := s.client.Get(r.Context(), "/v1/settings")
	if err != nil {
		settings, getErr := s.settings.Get()
		if getErr != nil {
			s.respondFallback(w, r, err, http.StatusInternalServerError, APIError{Error: getErr.Error()})
			return
		}
		s.respondFallback(w, r, err, http.StatusOK, settings)
		return
	}
	s.respondRemote(w, r, out)
}

func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var incoming onboarding.Settings
	_ = json.NewDecoder(r.Body).Decode(&incoming)

	out, err := s.client.Post(r.Context(), "/v1/settings", incoming)
	if err != nil {
		if putErr := s.settings.Put(incoming); putErr != nil {
			s.respondFallback(w, r, err, http.StatusInternalServerError, APIError{Error: putErr.Error()})
			return
		}
		s.respondFallback(w, r, err, http.StatusOK, incoming)
		return
	}
	s.respondRemote(w, r, out)
}

func (s *Server) handleOnboardingGet(w http.ResponseWriter, r *http.Request) {
	out, err := s.client.Get(r.Context(), "/v1/settings/onboarding")
	if err != nil {
		settings, getErr := s.settings.Get()
		if getErr != nil {
			s.respondFallback(w, r, err, http.StatusInternalServerError, APIError{Error: getErr.Error()})
			return
		}
		s.respondFallback(w, r, err, http.StatusOK, map[string]any{
			"completed":    settings.Completed,
			"completed_at": settings.CompletedAt,
		})
		return
	}
	s.respondRemote(w, r, out)
}

func (s *Server) handleOnboardingComplete(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)

	out, err := s.client.Post(r.Context(), "/v1/settings/onboarding/complete", body)
	if err != nil {
		settings, completeErr := s.settings.Complete(
			stringField(body, "org_name"),
			stringField(body, "default_squad"),
		)
		if completeErr != nil {
			s.respondFallback(w, r, err, http.StatusInternalServerError, APIError{Error: completeErr.Error()})
			return
		}
		s.respondFallback(w, r, err, http.StatusOK, settings)
		return
	}
	s.respondRemote(w, r, out)
}

// handleAPIKeyRotate forwards a key rotation. On success the cached
// outbound credential is invalidated so the next call re-reads the
// refreshed value. There is no local rotation to fall back to.
func (s *Server) handleAPIKeyRotate(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)

	out, err := s.client.Post(r.Context(), "/v1/settings/api-key/rotate", body)
	if err != nil {
		s.respondFallback(w, r, err, http.StatusInternalServerError, APIError{Error: err.Error()})
		return
	}

	s.creds.Invalidate()
	s.log.Info("outbound credential invalidated after rotation", zap.String("route", routePattern(r)))
	s.respondRemote(w, r, out)
}
