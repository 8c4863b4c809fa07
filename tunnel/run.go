package tunnel

import (
	"context"
	"fmt"
	"github.com/hightouchio/cftpipe/cloudflare"
	"github.com/hightouchio/cftpipe/log"
	"github.com/hightouchio/cftpipe/pkg/models"
	"github.com/hightouchio/cftpipe/slug"
	"github.com/hightouchio/cftpipe/stats"
	"github.com/pkg/errors"
	"path/filepath"
	"strconv"
	"strings"
)

const maxPort = 65535

type RunRequest struct {
	// Port is the local port to expose. Zero means detect it.
	Port int
	// Name is an explicit subdomain label.
	Name string
	// Reuse picks the label last used from Directory.
	Reuse     bool
	Directory string
}

// Session is a resolved run, ready to hand to the daemon.
type Session struct {
	Hostname string
	Port     int
	// RecordCreated is false when an existing CNAME was reused.
	RecordCreated bool
}

func (s Session) URL() string {
	return "https://" + s.Hostname
}

// Run publishes a local port under a subdomain and keeps cloudflared in the foreground until it exits.
func (s Service) Run(ctx context.Context, request RunRequest) (err error) {
	session, config, err := s.Prepare(ctx, request)
	if err != nil {
		return err
	}

	lc := newLifecycle(s.stats(ctx), "session", s.now())
	defer func() { lc.Finish(s.now(), err) }()

	fmt.Fprintf(s.out(), "Forwarding %s -> http://localhost:%d\n", session.URL(), session.Port)

	tags := stats.Tags{"hostname": session.Hostname}
	if err := s.Daemon.Run(ctx, DaemonSpec{Token: config.Token, Port: session.Port}); err != nil {
		lc.Error("daemon_exit", err, tags)
		return errors.Wrap(err, "cloudflared")
	}
	lc.Event("daemon_exit", tags)
	return nil
}

// Prepare resolves the port and hostname, makes sure the CNAME exists and records the session in the history.
func (s Service) Prepare(ctx context.Context, request RunRequest) (session *Session, _ models.Configuration, err error) {
	lc := newLifecycle(s.stats(ctx), "run", s.now())
	defer func() {
		lc.Finish(s.now(), err)
		log.Request(s.logger(ctx), "run", request, session, err)
	}()

	if s.Daemon == nil {
		return nil, models.Configuration{}, ErrMissingDaemon
	}
	if err := s.Daemon.Check(); err != nil {
		return nil, models.Configuration{}, err
	}

	config, err := s.loadConfig()
	if err != nil {
		return nil, config, err
	}
	if strings.TrimSpace(config.Token) == "" {
		return nil, config, newPreconditionError("config has no tunnel token, run `cftpipe setup` again")
	}
	if config.Domain == "" || config.TunnelID == "" {
		return nil, config, ErrBrokenConfig
	}

	port, err := s.resolvePort(request.Port)
	if err != nil {
		return nil, config, err
	}

	label, err := s.resolveLabel(ctx, request, config)
	if err != nil {
		return nil, config, err
	}

	provider, err := s.provider(ctx)
	if err != nil {
		return nil, config, err
	}

	if config.ZoneID == "" {
		if config.ZoneID, err = provider.ZoneIDByName(ctx, config.Domain); err != nil {
			return nil, config, errors.Wrapf(err, "resolve zone %s", config.Domain)
		}
	}

	session = &Session{Hostname: config.Hostname(label), Port: port}
	logger := s.logger(ctx).WithField("hostname", session.Hostname)

	_, found, err := provider.FindCNAMERecord(ctx, config.ZoneID, session.Hostname)
	if err != nil {
		return nil, config, errors.Wrap(err, "look up CNAME record")
	}
	if found {
		logger.Debug("reusing existing CNAME record")
	} else {
		target := cloudflare.TunnelTarget(config.TunnelID)
		if err := provider.CreateCNAME(ctx, config.ZoneID, session.Hostname, target, true); err != nil {
			return nil, config, errors.Wrap(err, "create CNAME record")
		}
		session.RecordCreated = true
		lc.Event("dns_record_created", stats.Tags{"hostname": session.Hostname})
		s.stats(ctx).Incr(StatRecordsCreated, nil)
	}

	if err := s.History.AppendHistory(models.HistoryEntry{
		Directory: request.Directory,
		Project:   filepath.Base(request.Directory),
		Hostname:  session.Hostname,
		Port:      strconv.Itoa(port),
		Timestamp: s.timestamp(),
	}); err != nil {
		return nil, config, errors.Wrap(err, "record history")
	}

	return session, config, nil
}

func (s Service) resolvePort(port int) (int, error) {
	if port == 0 {
		port = s.prober().Detect()
	}
	if port < 1 || port > maxPort {
		return 0, newUsageError("invalid port %d: must be between 1 and %d", port, maxPort)
	}
	return port, nil
}

// resolveLabel picks the subdomain label: explicit name, then the label reused from history, then a generated one.
func (s Service) resolveLabel(ctx context.Context, request RunRequest, config models.Configuration) (string, error) {
	if request.Name != "" {
		label := slug.Sanitize(request.Name)
		if label == "" {
			return "", newUsageError("invalid name %q: use letters, digits and dashes", request.Name)
		}
		return label, nil
	}

	if request.Reuse {
		hostname, ok, err := s.History.FindLastByDirectory(request.Directory)
		if err != nil {
			return "", errors.Wrap(err, "read history")
		}
		if ok {
			if label := slug.Label(hostname, config.Domain); label != "" {
				return label, nil
			}
		}
		s.logger(ctx).WithField("directory", request.Directory).Info("no previous session for this directory, generating a new name")
	}

	return s.generate(filepath.Base(request.Directory)), nil
}
