package tunnel

import (
	"encoding/json"
	"fmt"
	"github.com/hightouchio/cftpipe/pkg/models"
	"github.com/hightouchio/cftpipe/pkg/store"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"io"
	"strings"
	"time"
)

const (
	DefaultListLimit = 20

	FormatJSON = "json"
	FormatYAML = "yaml"

	maskedToken = "********"
)

// List prints the most recent history entries, oldest first.
func (s Service) List(w io.Writer, limit int) error {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	entries, err := s.History.ReadHistory(limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No history")
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintf(w, "%s | %s | https://%s | port %s\n", entry.Timestamp, entry.Project, entry.Hostname, entry.Port)
	}
	return nil
}

// Status prints the saved configuration. JSON output is the document exactly as stored.
func (s Service) Status(w io.Writer, format string, showToken bool) error {
	data, err := s.Config.Status()
	if errors.Is(err, store.ErrConfigNotFound) {
		fmt.Fprintln(w, "No config")
		return nil
	} else if err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case "", FormatJSON:
		_, err := w.Write(data)
		return err

	case FormatYAML:
		var config models.Configuration
		if err := json.Unmarshal(data, &config); err != nil {
			return errors.Wrap(err, "broken config")
		}
		if !showToken && config.Token != "" {
			config.Token = maskedToken
		}
		return yaml.NewEncoder(w).Encode(statusDocument{
			Domain:     config.Domain,
			ZoneID:     config.ZoneID,
			TunnelID:   config.TunnelID,
			TunnelName: config.TunnelName,
			Token:      config.Token,
			CreatedAt:  config.CreatedAt.UTC().Format(time.RFC3339),
		})

	default:
		return newUsageError("unknown output format %q: use json or yaml", format)
	}
}

type statusDocument struct {
	Domain     string `yaml:"domain"`
	ZoneID     string `yaml:"zone_id"`
	TunnelID   string `yaml:"tunnel_id"`
	TunnelName string `yaml:"tunnel_name"`
	Token      string `yaml:"token"`
	CreatedAt  string `yaml:"created_at"`
}

// Ports prints every candidate port and whether something listens on it.
func (s Service) Ports(w io.Writer) error {
	for _, result := range s.prober().Scan() {
		state := "-"
		if result.Listening {
			state = "listening"
		}
		fmt.Fprintf(w, "%5d  %s\n", result.Port, state)
	}
	fmt.Fprintf(w, "selected: %d\n", s.prober().Detect())
	return nil
}
