package models

import "time"

// PortNotApplicable marks history entries that have no local port, such as the setup entry.
const PortNotApplicable = "N/A"

// Configuration is the account-level tunnel setup written by `cftpipe setup`.
type Configuration struct {
	Domain     string    `json:"domain"`
	ZoneID     string    `json:"zone_id"`
	TunnelID   string    `json:"tunnel_id"`
	TunnelName string    `json:"tunnel_name"`
	Token      string    `json:"token"`
	CreatedAt  time.Time `json:"created_at"`
}

// Complete reports whether every field needed to manage DNS records and the tunnel is set.
func (c Configuration) Complete() bool {
	return c.Domain != "" && c.ZoneID != "" && c.TunnelID != ""
}

// Hostname joins a subdomain label with the configured domain.
func (c Configuration) Hostname(label string) string {
	return label + "." + c.Domain
}

type HistoryEntry struct {
	Directory string `json:"directory"`
	Project   string `json:"project"`
	Hostname  string `json:"hostname"`
	Port      string `json:"port"`
	Timestamp string `json:"timestamp"`
}
