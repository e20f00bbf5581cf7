// Package store holds the gateway's local domain state: the alert feed,
// scheduled cron jobs, sensor nodes, and notification gateway channels.
// It is the sole source of truth whenever the analysis service is down.
// One Store is constructed at startup and injected into every handler;
// state does not survive a restart.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxAlerts caps the alert feed. On overflow the oldest entries are evicted.
const MaxAlerts = 500

// fallbackJobLead is the next_run horizon given to jobs created while the
// analysis service is down. The real schedule takes over once the local
// scheduler first runs the job.
const fallbackJobLead = time.Hour

// Store is the mutex-guarded in-memory domain store.
type Store struct {
	mu          sync.RWMutex
	alerts      []AlertEntry
	nextAlertID int64
	jobs        []CronJob
	nodes       []Node
	gateways    []GatewayChannel
	log         *zap.Logger
}

// New creates a Store seeded with the default sensor node and the three
// known notification channels, all disconnected.
func New(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		alerts:      make([]AlertEntry, 0, 64),
		nextAlertID: 1,
		nodes: []Node{
			{
				ID:     "node-core",
				Name:   "sentinel-core",
				Type:   "analysis",
				Status: "online",
				IP:     "127.0.0.1",
			},
		},
		gateways: []GatewayChannel{
			{ID: "gw-telegram", Name: "Telegram", Type: "telegram", Status: "disconnected"},
			{ID: "gw-discord", Name: "Discord", Type: "discord", Status: "disconnected"},
			{ID: "gw-slack", Name: "Slack", Type: "slack", Status: "disconnected"},
		},
		log: log,
	}
}

// AppendAlert inserts an alert entry, assigning its id and timestamp.
// Always succeeds; evicts the oldest entries beyond MaxAlerts.
func (s *Store) AppendAlert(e AlertEntry) AlertEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextAlertID
	s.nextAlertID++
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if e.Verdict == "" {
		e.Verdict = VerdictUnknown
	}

	s.alerts = append(s.alerts, e)
	if len(s.alerts) > MaxAlerts {
		s.alerts = s.alerts[len(s.alerts)-MaxAlerts:]
	}
	return e
}

// Alerts returns a copy of the alert feed, newest first.
func (s *Store) Alerts() []AlertEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]AlertEntry, len(s.alerts))
	for i, a := range s.alerts {
		out[len(s.alerts)-1-i] = a
	}
	return out
}

// AddJob creates a cron job, enabled, with a next_run one hour out.
func (s *Store) AddJob(name, schedule, squad, task string) CronJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := time.Now().UTC().Add(fallbackJobLead)
	job := CronJob{
		ID:       "cron-" + uuid.NewString()[:8],
		Name:     name,
		Schedule: schedule,
		Task:     task,
		Squad:    squad,
		Enabled:  true,
		NextRun:  &next,
	}
	s.jobs = append(s.jobs, job)
	s.log.Info("cron job added", zap.String("id", job.ID), zap.String("name", name), zap.String("schedule", schedule))
	return job
}

// Jobs returns a copy of all cron jobs in insertion order.
func (s *Store) Jobs() []CronJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CronJob, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// ToggleJob flips a job's enabled flag. Returns false if the id is unknown.
func (s *Store) ToggleJob(id string) (CronJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.jobs {
		if s.jobs[i].ID == id {
			s.jobs[i].Enabled = !s.jobs[i].Enabled
			return s.jobs[i], true
		}
	}
	return CronJob{}, false
}

// RemoveJob deletes a job. Returns false if the id is unknown.
func (s *Store) RemoveJob(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.jobs {
		if s.jobs[i].ID == id {
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			return true
		}
	}
	return false
}

// StartDue stamps last_run/next_run on every enabled job whose next_run has
// passed and returns copies of the started jobs. Done in one critical section
// so a job is never handed to two scheduler ticks.
func (s *Store) StartDue(now time.Time) []CronJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []CronJob
	for i := range s.jobs {
		j := &s.jobs[i]
		if !j.Enabled || j.NextRun == nil || now.Before(*j.NextRun) {
			continue
		}
		started := now
		next := NextRunAfter(j.Schedule, now)
		j.LastRun = &started
		j.NextRun = &next
		due = append(due, *j)
	}
	return due
}

// Nodes returns a copy of the sensor node list.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Gateways returns a copy of the notification channel list.
func (s *Store) Gateways() []GatewayChannel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]GatewayChannel, len(s.gateways))
	copy(out, s.gateways)
	return out
}

// UpdateGatewayStatus sets a channel's status. Returns false for unknown ids.
func (s *Store) UpdateGatewayStatus(id, status string) (GatewayChannel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.gateways {
		if s.gateways[i].ID == id || s.gateways[i].Type == id {
			s.gateways[i].Status = status
			s.gateways[i].Enabled = status == "connected"
			return s.gateways[i], true
		}
	}
	return GatewayChannel{}, false
}

// MarkGatewayMessage records a successful local delivery on a channel.
func (s *Store) MarkGatewayMessage(id string) (GatewayChannel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.gateways {
		if s.gateways[i].ID == id || s.gateways[i].Type == id {
			now := time.Now().UTC()
			s.gateways[i].Status = "connected"
			s.gateways[i].Enabled = true
			s.gateways[i].LastMessage = &now
			s.gateways[i].MessagesSent++
			return s.gateways[i], true
		}
	}
	return GatewayChannel{}, false
}

// Stats recomputes aggregate counts over the current collections.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalAlerts:   len(s.alerts),
		Verdicts:      make(map[string]int),
		TotalJobs:     len(s.jobs),
		TotalNodes:    len(s.nodes),
		TotalGateways: len(s.gateways),
	}
	for _, a := range s.alerts {
		st.Verdicts[a.Verdict]++
	}
	for _, j := range s.jobs {
		if j.Enabled {
			st.ActiveJobs++
		}
	}
	for _, n := range s.nodes {
		if n.Status == "online" {
			st.OnlineNodes++
		}
	}
	for _, g := range s.gateways {
		if g.Status == "connected" {
			st.ConnectedGateways++
		}
	}
	return st
}
