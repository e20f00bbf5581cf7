package store

import "time"

// Alert verdicts as reported by the analysis service.
const (
	VerdictPending       = "Pending"
	VerdictUnknown       = "Unknown"
	VerdictTruePositive  = "True Positive"
	VerdictFalsePositive = "False Positive"
	VerdictError         = "Error"
)

// AlertEntry is one row of the local alert feed. Entries are append-only;
// the store assigns the id at insertion.
type AlertEntry struct {
	ID        int64  `json:"id"`
	AlertID   string `json:"alert_id"`
	Verdict   string `json:"verdict"`
	RiskLevel string `json:"risk_level"`
	Source    string `json:"source"`
	Summary   string `json:"summary"`
	Timestamp string `json:"timestamp"`
	TaskID    string `json:"task_id,omitempty"`
}

// CronJob is a scheduled recurring task for one agent squad.
type CronJob struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Schedule string     `json:"schedule"`
	Task     string     `json:"task"`
	Squad    string     `json:"squad"`
	Enabled  bool       `json:"enabled"`
	LastRun  *time.Time `json:"last_run"`
	NextRun  *time.Time `json:"next_run"`
}

// Node is a sensor node known to the gateway. Nodes are seeded at startup
// and read-only from the HTTP surface.
type Node struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	LastHeartbeat   *time.Time `json:"last_heartbeat"`
	AlertsProcessed int        `json:"alerts_processed"`
	IP              string     `json:"ip"`
}

// GatewayChannel is a configured outbound notification channel (Telegram,
// Discord, Slack), not to be confused with the gateway process itself.
type GatewayChannel struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	Enabled      bool       `json:"enabled"`
	LastMessage  *time.Time `json:"last_message"`
	MessagesSent int        `json:"messages_sent"`
}

// Stats are aggregate counts over the current collections, recomputed per call.
type Stats struct {
	TotalAlerts       int            `json:"total_alerts"`
	Verdicts          map[string]int `json:"verdicts"`
	ActiveJobs        int            `json:"active_jobs"`
	TotalJobs         int            `json:"total_jobs"`
	OnlineNodes       int            `json:"online_nodes"`
	TotalNodes        int            `json:"total_nodes"`
	ConnectedGateways int            `json:"connected_gateways"`
	TotalGateways     int            `json:"total_gateways"`
}
