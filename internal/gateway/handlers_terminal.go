package gateway

import (
	"fmt"
	"net/http"
	"strings"
)

const terminalHelp = `Available commands:
  /status            analysis service health
  /analyze <id>      submit an alert id for triage
  /scan <target>     red squad scan of a target
  /help              this text
Anything else is sent to the default squad as a free-text task.`

// handleTerminal dispatches terminal commands. The terminal UI expects a
// 200 with a textual output field in all cases, so remote failures are
// rendered as error lines, never as HTTP errors.
func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	body := decodeBody(r)
	command := strings.TrimSpace(stringField(body, "command"))

	var output string
	switch {
	case command == "" || command == "/help":
		output = terminalHelp
	case command == "/status":
		output = s.terminalStatus(r)
	case strings.HasPrefix(command, "/analyze "):
		output = s.terminalAnalyze(r, strings.TrimSpace(strings.TrimPrefix(command, "/analyze ")))
	case strings.HasPrefix(command, "/scan "):
		output = s.terminalRun(r, "red", "Scan target: "+strings.TrimSpace(strings.TrimPrefix(command, "/scan ")))
	default:
		output = s.terminalRun(r, s.defaultSquad(), command)
	}

	s.respondLocal(w, r, map[string]string{"output": output})
}

func (s *Server) defaultSquad() string {
	settings, err := s.settings.Get()
	if err != nil || settings.DefaultSquad == "" {
		return "blue"
	}
	return settings.DefaultSquad
}

func (s *Server) terminalStatus(r *http.Request) string {
	out, err := s.client.Get(r.Context(), "/health")
	if err != nil {
		s.recordRemoteFailure(err)
		return fmt.Sprintf("Sentinel Core: offline (%v)", err)
	}
	health, _ := out.(map[string]any)
	status := stringField(health, "status")
	version := stringField(health, "version")
	agents, _ := health["agents"].([]any)
	return fmt.Sprintf("Sentinel Core: %s (v%s), %d agents registered", status, version, len(agents))
}

func (s *Server) terminalAnalyze(r *http.Request, alertID string) string {
	body := map[string]any{
		"alert_id": alertID,
		"raw_data": "manual analysis request",
		"source":   "terminal",
	}
	out, err := s.client.Post(r.Context(), "/v1/ingest", body)
	if err != nil {
		s.recordIngest(body, nil, err)
		s.recordRemoteFailure(err)
		return fmt.Sprintf("analyze %s failed: %v", alertID, err)
	}
	remote, _ := out.(map[string]any)
	s.recordIngest(body, remote, nil)
	if taskID := stringField(remote, "task_id"); taskID != "" {
		return fmt.Sprintf("alert %s queued for triage (task %s)", alertID, taskID)
	}
	return fmt.Sprintf("alert %s queued for triage", alertID)
}

func (s *Server) terminalRun(r *http.Request, squad, task string) string {
	out, err := s.client.Post(r.Context(), "/v1/agents/run", map[string]string{
		"squad": squad,
		"task":  task,
	})
	if err != nil {
		s.recordRemoteFailure(err)
		return fmt.Sprintf("%s squad unavailable: %v", squad, err)
	}
	run, _ := out.(map[string]any)
	if result := stringField(run, "result"); result != "" {
		return result
	}
	return fmt.Sprintf("%s squad accepted the task", squad)
}
