package tunnel

import (
	"context"
	"fmt"
	"github.com/hightouchio/cftpipe/cloudflare"
	"github.com/hightouchio/cftpipe/log"
	"github.com/hightouchio/cftpipe/pkg/models"
	"github.com/hightouchio/cftpipe/stats"
	"github.com/pkg/errors"
	"path/filepath"
	"strconv"
	"strings"
)

// SetupHostLabel is the label of the history entry recorded by setup.
const SetupHostLabel = "setup"

type SetupRequest struct {
	// AccountID is prompted for when empty.
	AccountID string
	// Directory is the working directory recorded in the history.
	Directory string
}

type SetupResponse struct {
	Configuration models.Configuration
}

// Setup creates a tunnel on a chosen zone and saves the configuration every later command relies on.
func (s Service) Setup(ctx context.Context, request SetupRequest) (_ *SetupResponse, err error) {
	lc := newLifecycle(s.stats(ctx), "setup", s.now())
	defer func() {
		lc.Finish(s.now(), err)
		log.Request(s.logger(ctx), "setup", request, nil, err)
	}()

	provider, err := s.provider(ctx)
	if err != nil {
		return nil, err
	}

	accountID := strings.TrimSpace(request.AccountID)
	if accountID == "" && s.Prompt != nil {
		answer, err := s.Prompt.Prompt("Cloudflare account ID")
		if err != nil {
			return nil, errors.Wrap(err, "read account id")
		}
		accountID = strings.TrimSpace(answer)
	}
	if accountID == "" {
		return nil, ErrMissingAccountID
	}

	zones, err := provider.ListActiveZones(ctx)
	if errors.Is(err, cloudflare.ErrUnauthorized) {
		return nil, errors.Wrap(err, "invalid API token")
	} else if err != nil {
		return nil, errors.Wrap(err, "list zones")
	}
	if len(zones) == 0 {
		return nil, ErrNoZones
	}

	zone, err := s.selectZone(zones)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("cftpipe-%d", s.now().Unix())
	created, err := provider.CreateTunnel(ctx, accountID, name)
	if err != nil {
		return nil, errors.Wrap(err, "create tunnel")
	}
	lc.Event("tunnel_created", stats.Tags{"tunnel_id": created.ID})

	config := models.Configuration{
		Domain:     zone.Name,
		ZoneID:     zone.ID,
		TunnelID:   created.ID,
		TunnelName: created.Name,
		Token:      created.Token,
		CreatedAt:  s.now().UTC(),
	}
	if config.TunnelName == "" {
		config.TunnelName = name
	}
	if err := s.Config.WriteConfig(config); err != nil {
		return nil, errors.Wrapf(err, "save config (tunnel %s was created and must be deleted by hand)", created.ID)
	}

	if err := s.History.AppendHistory(models.HistoryEntry{
		Directory: request.Directory,
		Project:   filepath.Base(request.Directory),
		Hostname:  config.Hostname(SetupHostLabel),
		Port:      models.PortNotApplicable,
		Timestamp: s.timestamp(),
	}); err != nil {
		return nil, errors.Wrap(err, "record history")
	}

	fmt.Fprintf(s.out(), "Tunnel %s created for %s\n", config.TunnelName, config.Domain)
	return &SetupResponse{Configuration: config}, nil
}

// selectZone prints the zones as a 1-based list and reads the chosen index.
func (s Service) selectZone(zones []cloudflare.Zone) (cloudflare.Zone, error) {
	out := s.out()
	fmt.Fprintln(out, "Available zones:")
	for i, zone := range zones {
		fmt.Fprintf(out, "  %d) %s\n", i+1, zone.Name)
	}

	var answer string
	if s.Prompt != nil {
		var err error
		answer, err = s.Prompt.Prompt(fmt.Sprintf("Select a zone [1-%d]", len(zones)))
		if err != nil {
			return cloudflare.Zone{}, errors.Wrap(err, "read zone selection")
		}
	}

	return pick(zones, answer)
}

func pick(zones []cloudflare.Zone, answer string) (cloudflare.Zone, error) {
	answer = strings.TrimSpace(answer)
	index, err := strconv.Atoi(answer)
	if err != nil || index < 1 || index > len(zones) {
		return cloudflare.Zone{}, SelectionError{Input: answer, Max: len(zones)}
	}
	return zones[index-1], nil
}
