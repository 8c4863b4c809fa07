package tunnel

import (
	"context"
	"github.com/hightouchio/cftpipe/cloudflare"
	"github.com/hightouchio/cftpipe/log"
	"github.com/hightouchio/cftpipe/pkg/models"
	"github.com/hightouchio/cftpipe/pkg/ports"
	"github.com/hightouchio/cftpipe/pkg/store"
	"github.com/hightouchio/cftpipe/slug"
	"github.com/hightouchio/cftpipe/stats"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io"
	"strings"
	"time"
)

// Service implements the cftpipe commands on top of the Cloudflare API, the local state files and cloudflared.
type Service struct {
	// APIToken authenticates every Cloudflare API call.
	APIToken string
	// NewProvider builds the Cloudflare client for a token.
	NewProvider func(token string) Provider

	Config  store.Config
	History store.History
	Prober  Prober
	Prompt  Prompter
	Daemon  Daemon

	// Out receives user-facing output such as the zone list and the public URL.
	Out    io.Writer
	Logger logrus.FieldLogger
	Stats  stats.Stats

	Now      func() time.Time
	Generate func(prefix string) string
}

// Provider is the subset of the Cloudflare API used by the commands.
type Provider interface {
	ListActiveZones(ctx context.Context) ([]cloudflare.Zone, error)
	ZoneIDByName(ctx context.Context, name string) (string, error)
	CreateTunnel(ctx context.Context, accountID, name string) (cloudflare.Tunnel, error)
	DeleteTunnel(ctx context.Context, accountID, tunnelID string) error
	AccountIDFromZone(ctx context.Context, zoneID string) (string, error)
	FindCNAMERecord(ctx context.Context, zoneID, hostname string) (string, bool, error)
	CreateCNAME(ctx context.Context, zoneID, hostname, target string, proxied bool) error
	DeleteDNSRecord(ctx context.Context, zoneID, recordID string) error
}

type Prober interface {
	Detect() int
	Scan() []ports.Result
}

type Prompter interface {
	// Prompt shows label and returns the trimmed answer. EOF yields an empty answer.
	Prompt(label string) (string, error)
	// Confirm asks a y/N question. Anything other than y or yes declines.
	Confirm(label string) (bool, error)
}

func (s Service) provider(ctx context.Context) (Provider, error) {
	if strings.TrimSpace(s.APIToken) == "" {
		return nil, ErrMissingToken
	}
	newProvider := s.NewProvider
	if newProvider == nil {
		newProvider = func(token string) Provider {
			return cloudflare.NewClient(token, cloudflare.Options{Logger: s.logger(ctx)})
		}
	}
	return newProvider(strings.TrimSpace(s.APIToken)), nil
}

// loadConfig reads the configuration written by setup.
func (s Service) loadConfig() (models.Configuration, error) {
	config, err := s.Config.ReadConfig()
	if errors.Is(err, store.ErrConfigNotFound) {
		return models.Configuration{}, ErrNoConfig
	} else if err != nil {
		return models.Configuration{}, err
	}
	return config, nil
}

func (s Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s Service) generate(prefix string) string {
	if s.Generate == nil {
		return slug.Generate(prefix)
	}
	return s.Generate(prefix)
}

func (s Service) out() io.Writer {
	if s.Out == nil {
		return io.Discard
	}
	return s.Out
}

// logger falls back to the logger carried by ctx.
func (s Service) logger(ctx context.Context) logrus.FieldLogger {
	if s.Logger == nil {
		return log.GetLogger(ctx)
	}
	return s.Logger
}

func (s Service) stats(ctx context.Context) stats.Stats {
	if !s.Stats.Enabled() {
		return stats.GetStats(ctx)
	}
	return s.Stats
}

func (s Service) prober() Prober {
	if s.Prober == nil {
		return ports.NewProber()
	}
	return s.Prober
}

// timestamp formats history timestamps as UTC ISO-8601.
func (s Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
