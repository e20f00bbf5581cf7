package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/piyawatSritavong/cybersentinel/internal/config"
	"github.com/piyawatSritavong/cybersentinel/internal/metrics"
	"github.com/piyawatSritavong/cybersentinel/internal/notify"
	"github.com/piyawatSritavong/cybersentinel/internal/onboarding"
	"github.com/piyawatSritavong/cybersentinel/internal/sentinel"
	"github.com/piyawatSritavong/cybersentinel/internal/store"
)

// newTestServer builds a gateway wired to the analysis service at
// remoteURL. An unroutable remoteURL simulates the service being down.
func newTestServer(t *testing.T, remoteURL string) (*Server, *store.Store, *sentinel.Credentials) {
	t.Helper()
	st := store.New(nil)
	creds := sentinel.NewCredentials(func() string { return "test-key" })
	client := sentinel.NewClient(remoteURL, creds, nil)
	srv := New(config.Default(), nil, st, client, creds, onboarding.NewMemoryStore(), nil)
	return srv, st, creds
}

const downURL = "http://127.0.0.1:1"

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestIngestRemoteDownRecordsErrorEntry(t *testing.T) {
	srv, st, _ := newTestServer(t, downURL)
	h := srv.Handler()

	rec, out := doJSON(t, h, http.MethodPost, "/api/ingest",
		`{"alert_id":"A1","raw_data":"x","source":"custom"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if _, ok := out["error"]; !ok {
		t.Errorf("response missing error field: %v", out)
	}

	alerts := st.Alerts()
	if len(alerts) != 1 {
		t.Fatalf("alert count = %d, want 1", len(alerts))
	}
	if alerts[0].Verdict != store.VerdictError {
		t.Errorf("verdict = %q, want Error", alerts[0].Verdict)
	}
	if alerts[0].AlertID != "A1" {
		t.Errorf("alert_id = %q", alerts[0].AlertID)
	}
}

func TestIngestRemoteUpRecordsPendingEntry(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/ingest" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get(sentinel.HeaderAPIKey) != "test-key" {
			t.Errorf("missing API key header")
		}
		_, _ = w.Write([]byte(`{"alert_id":"A1","task_id":"T1","status":"queued","message":"queued for analysis"}`))
	}))
	defer remote.Close()

	srv, st, _ := newTestServer(t, remote.URL)
	rec, out := doJSON(t, srv.Handler(), http.MethodPost, "/api/ingest",
		`{"alert_id":"A1","raw_data":"x","source":"custom"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["task_id"] != "T1" {
		t.Errorf("response not echoed: %v", out)
	}

	alerts := st.Alerts()
	if len(alerts) != 1 {
		t.Fatalf("alert count = %d, want 1", len(alerts))
	}
	if alerts[0].Verdict != store.VerdictPending || alerts[0].TaskID != "T1" {
		t.Errorf("entry = %+v, want Pending verdict with task T1", alerts[0])
	}
}

func TestIngestAlwaysAddsExactlyOneEntry(t *testing.T) {
	srv, st, _ := newTestServer(t, downURL)
	h := srv.Handler()

	for i := 0; i < 3; i++ {
		before := len(st.Alerts())
		_, _ = doJSON(t, h, http.MethodPost, "/api/ingest", `{"alert_id":"A","source":"s"}`)
		if after := len(st.Alerts()); after != before+1 {
			t.Fatalf("alert count %d -> %d, want +1", before, after)
		}
	}
}

func TestCronFallbackLifecycle(t *testing.T) {
	srv, _, _ := newTestServer(t, downURL)
	h := srv.Handler()

	rec, job := doJSON(t, h, http.MethodPost, "/api/cron",
		`{"name":"sweep","schedule":"daily","squad":"blue","task":"patrol"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d", rec.Code)
	}
	if job["enabled"] != true {
		t.Errorf("job not enabled: %v", job)
	}
	nextRun, _ := time.Parse(time.RFC3339, job["next_run"].(string))
	lead := time.Until(nextRun)
	if lead < 55*time.Minute || lead > 65*time.Minute {
		t.Errorf("next_run lead = %v, want ~1h", lead)
	}
	id := job["id"].(string)
	if !strings.HasPrefix(id, "cron-") {
		t.Errorf("job id = %q", id)
	}

	// Listed.
	listReq := httptest.NewRequest(http.MethodGet, "/api/cron", nil)
	listRec := httptest.NewRecorder()
	h.ServeHTTP(listRec, listReq)
	var jobs []map[string]any
	_ = json.Unmarshal(listRec.Body.Bytes(), &jobs)
	if len(jobs) != 1 || jobs[0]["name"] != "sweep" {
		t.Fatalf("job list = %v", jobs)
	}

	// Toggle disables.
	_, toggled := doJSON(t, h, http.MethodPatch, "/api/cron/"+id+"/toggle", "")
	if toggled["enabled"] != false {
		t.Errorf("toggled job = %v, want enabled=false", toggled)
	}

	// Delete, then operations on the id report not found with a 200.
	rec, out := doJSON(t, h, http.MethodDelete, "/api/cron/"+id, "")
	if rec.Code != http.StatusOK || out["status"] != "deleted" {
		t.Fatalf("delete = %d %v", rec.Code, out)
	}
	rec, out = doJSON(t, h, http.MethodPatch, "/api/cron/"+id+"/toggle", "")
	if rec.Code != http.StatusOK || out["error"] != "job not found" {
		t.Errorf("toggle after delete = %d %v", rec.Code, out)
	}
	rec, out = doJSON(t, h, http.MethodDelete, "/api/cron/"+id, "")
	if rec.Code != http.StatusOK || out["error"] != "job not found" {
		t.Errorf("double delete = %d %v", rec.Code, out)
	}
}

func TestCronFallbackNormalizesUnknownSchedule(t *testing.T) {
	srv, st, _ := newTestServer(t, downURL)

	rec, job := doJSON(t, srv.Handler(), http.MethodPost, "/api/cron",
		`{"name":"sweep","schedule":"every_5m","squad":"blue","task":"patrol"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d", rec.Code)
	}
	if job["schedule"] != "every_1h" {
		t.Errorf("stored schedule = %v, want every_1h", job["schedule"])
	}
	jobs := st.Jobs()
	if len(jobs) != 1 || !store.ValidSchedule(jobs[0].Schedule) {
		t.Errorf("jobs = %+v, want one job with a runnable schedule", jobs)
	}
}

func TestDurationMetricUsesRoutePattern(t *testing.T) {
	srv, _, _ := newTestServer(t, downURL)
	h := srv.Handler()

	_, _ = doJSON(t, h, http.MethodPatch, "/api/cron/cron-aaaa1111/toggle", "")
	series := testutil.CollectAndCount(metrics.RequestDuration)

	// A second request with a different path parameter must land in the
	// same labelled series, not mint a new one.
	_, _ = doJSON(t, h, http.MethodPatch, "/api/cron/cron-bbbb2222/toggle", "")
	if got := testutil.CollectAndCount(metrics.RequestDuration); got != series {
		t.Errorf("duration series = %d after second id, want %d", got, series)
	}
}

func TestCronRemoteUpPassesThrough(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"cron-remote1","name":"remote job"}]`))
	}))
	defer remote.Close()

	srv, st, _ := newTestServer(t, remote.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/cron", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var jobs []map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &jobs)
	if len(jobs) != 1 || jobs[0]["id"] != "cron-remote1" {
		t.Fatalf("jobs = %v, want remote body", jobs)
	}
	if len(st.Jobs()) != 0 {
		t.Error("local store mutated by a pass-through read")
	}
}

func TestEvictionKeepsNewestFiveHundred(t *testing.T) {
	srv, st, _ := newTestServer(t, downURL)
	h := srv.Handler()

	for i := 0; i < store.MaxAlerts+1; i++ {
		_, _ = doJSON(t, h, http.MethodPost, "/api/ingest", `{"alert_id":"A","source":"s"}`)
	}

	stats := st.Stats()
	if stats.TotalAlerts != store.MaxAlerts {
		t.Fatalf("total_alerts = %d, want %d", stats.TotalAlerts, store.MaxAlerts)
	}
	alerts := st.Alerts()
	lowest := alerts[len(alerts)-1].ID
	if lowest != 2 {
		t.Errorf("lowest surviving id = %d, want 2 (first entry evicted)", lowest)
	}
}

func TestHealthFallbackShape(t *testing.T) {
	srv, _, _ := newTestServer(t, downURL)
	rec, out := doJSON(t, srv.Handler(), http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["status"] != "offline" {
		t.Errorf("status field = %v", out["status"])
	}
	if agents, ok := out["agents"].([]any); !ok || len(agents) != 0 {
		t.Errorf("agents = %v, want empty list", out["agents"])
	}
}

func TestSkillsFallbackIsEmptyList(t *testing.T) {
	srv, _, _ := newTestServer(t, downURL)
	req := httptest.NewRequest(http.MethodGet, "/api/skills", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestAgentsRunFallbackShape(t *testing.T) {
	srv, _, _ := newTestServer(t, downURL)
	rec, out := doJSON(t, srv.Handler(), http.MethodPost, "/api/agents/run",
		`{"squad":"purple","task":"audit"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["agent"] != "purple_team" || out["status"] != "error" {
		t.Errorf("fallback = %v", out)
	}
}

func TestGatewaysTestWithoutLocalCredentials(t *testing.T) {
	srv, _, _ := newTestServer(t, downURL)
	rec, out := doJSON(t, srv.Handler(), http.MethodPost, "/api/gateways/test",
		`{"gateway":"slack"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["success"] != false || out["gateway"] != "slack" {
		t.Errorf("fallback = %v", out)
	}
	if _, ok := out["error"]; !ok {
		t.Errorf("missing error field: %v", out)
	}
}

func TestGatewaysTestLocalDelivery(t *testing.T) {
	delivered := make(chan string, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		delivered <- payload["text"]
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	srv, st, _ := newTestServer(t, downURL)
	srv.channels = map[string]notify.Channel{
		"slack": &notify.SlackChannel{WebhookURL: hook.URL},
	}

	rec, out := doJSON(t, srv.Handler(), http.MethodPost, "/api/gateways/test",
		`{"gateway":"slack"}`)
	if rec.Code != http.StatusOK || out["success"] != true {
		t.Fatalf("response = %d %v", rec.Code, out)
	}

	select {
	case text := <-delivered:
		if !strings.Contains(text, "Gateway Test") {
			t.Errorf("delivered text = %q", text)
		}
	default:
		t.Fatal("no message delivered to the webhook")
	}

	for _, gw := range st.Gateways() {
		if gw.Type == "slack" {
			if gw.Status != "connected" || gw.MessagesSent != 1 {
				t.Errorf("slack channel state = %+v", gw)
			}
		}
	}
}

func TestGatewaysTestFailedDeliveryDisconnectsChannel(t *testing.T) {
	healthy := true
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			http.Error(w, "gone", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	srv, st, _ := newTestServer(t, downURL)
	srv.channels = map[string]notify.Channel{
		"discord": &notify.DiscordChannel{WebhookURL: hook.URL},
	}
	h := srv.Handler()

	// First delivery succeeds and connects the channel.
	rec, out := doJSON(t, h, http.MethodPost, "/api/gateways/test", `{"gateway":"discord"}`)
	if rec.Code != http.StatusOK || out["success"] != true {
		t.Fatalf("first test = %d %v", rec.Code, out)
	}

	healthy = false
	rec, out = doJSON(t, h, http.MethodPost, "/api/gateways/test", `{"gateway":"discord"}`)
	if rec.Code != http.StatusOK || out["success"] != false {
		t.Fatalf("second test = %d %v", rec.Code, out)
	}

	for _, gw := range st.Gateways() {
		if gw.Type == "discord" && gw.Status != "disconnected" {
			t.Errorf("discord status = %q, want disconnected after failed delivery", gw.Status)
		}
	}
}

func TestAPIKeyRotateInvalidatesCredential(t *testing.T) {
	keys := []string{"old-key", "new-key"}
	reads := 0
	creds := sentinel.NewCredentials(func() string {
		k := keys[reads]
		if reads < len(keys)-1 {
			reads++
		}
		return k
	})

	var seenKeys []string
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenKeys = append(seenKeys, r.Header.Get(sentinel.HeaderAPIKey))
		_, _ = w.Write([]byte(`{"status":"rotated"}`))
	}))
	defer remote.Close()

	st := store.New(nil)
	client := sentinel.NewClient(remote.URL, creds, nil)
	srv := New(config.Default(), nil, st, client, creds, onboarding.NewMemoryStore(), nil)
	h := srv.Handler()

	rec, _ := doJSON(t, h, http.MethodPost, "/api/settings/api-key/rotate", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("rotate status = %d", rec.Code)
	}
	// Any forwarded call after rotation must carry the refreshed key.
	_, _ = doJSON(t, h, http.MethodGet, "/api/health", "")

	if len(seenKeys) != 2 {
		t.Fatalf("outbound calls = %d, want 2", len(seenKeys))
	}
	if seenKeys[0] != "old-key" || seenKeys[1] != "new-key" {
		t.Errorf("keys used = %v", seenKeys)
	}
}

func TestSettingsFallbackPersistence(t *testing.T) {
	srv, _, _ := newTestServer(t, downURL)
	h := srv.Handler()

	rec, out := doJSON(t, h, http.MethodGet, "/api/settings", "")
	if rec.Code != http.StatusOK || out["default_squad"] != "blue" {
		t.Fatalf("settings = %d %v", rec.Code, out)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/api/settings/onboarding/complete",
		`{"org_name":"acme","default_squad":"purple"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d", rec.Code)
	}

	_, out = doJSON(t, h, http.MethodGet, "/api/settings/onboarding", "")
	if out["completed"] != true {
		t.Errorf("onboarding state = %v", out)
	}
	_, out = doJSON(t, h, http.MethodGet, "/api/settings", "")
	if out["org_name"] != "acme" || out["default_squad"] != "purple" {
		t.Errorf("settings after complete = %v", out)
	}
}

func TestTerminalAlwaysAnswers200(t *testing.T) {
	srv, st, _ := newTestServer(t, downURL)
	h := srv.Handler()

	for _, command := range []string{"/help", "/status", "/analyze A9", "/scan 10.0.0.1", "investigate login spike"} {
		rec, out := doJSON(t, h, http.MethodPost, "/api/terminal",
			`{"command":"`+command+`"}`)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", command, rec.Code)
		}
		if out["output"] == "" || out["output"] == nil {
			t.Errorf("%s: empty output", command)
		}
	}

	// /analyze dual-records even when the service is down.
	alerts := st.Alerts()
	if len(alerts) != 1 || alerts[0].Verdict != store.VerdictError || alerts[0].AlertID != "A9" {
		t.Errorf("alerts after /analyze = %+v", alerts)
	}
}

func TestTerminalStatusRemoteUp(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy","version":"1.0.0","agents":["analyst","judge"]}`))
	}))
	defer remote.Close()

	srv, _, _ := newTestServer(t, remote.URL)
	_, out := doJSON(t, srv.Handler(), http.MethodPost, "/api/terminal", `{"command":"/status"}`)
	output, _ := out["output"].(string)
	if !strings.Contains(output, "healthy") || !strings.Contains(output, "2 agents") {
		t.Errorf("output = %q", output)
	}
}

func TestStatsAndNodesAreLocal(t *testing.T) {
	srv, _, _ := newTestServer(t, downURL)
	h := srv.Handler()

	_, out := doJSON(t, h, http.MethodGet, "/api/stats", "")
	if out["total_nodes"] != float64(1) || out["total_gateways"] != float64(3) {
		t.Errorf("stats = %v", out)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/nodes", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var nodes []map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &nodes)
	if len(nodes) != 1 || nodes[0]["status"] != "online" {
		t.Errorf("nodes = %v", nodes)
	}
}

func TestProviderCatalogFallbacks(t *testing.T) {
	srv, _, _ := newTestServer(t, downURL)
	h := srv.Handler()

	for _, path := range []string{"/api/providers/models", "/api/providers/integrations"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		var list []map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) == 0 {
			t.Errorf("%s: body = %q", path, rec.Body.String())
		}
	}

	rec, out := doJSON(t, h, http.MethodPost, "/api/providers/integrations/test", `{"id":"jira"}`)
	if rec.Code != http.StatusOK || out["success"] != false {
		t.Errorf("integrations/test = %d %v", rec.Code, out)
	}
}
