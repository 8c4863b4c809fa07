package tunnel

import (
	"context"
	"fmt"
	"github.com/hightouchio/cftpipe/log"
	"github.com/hightouchio/cftpipe/slug"
	"github.com/hightouchio/cftpipe/stats"
	"github.com/pkg/errors"
	"strings"
)

type DestroyRequest struct {
	// Slug is the subdomain label, or a full hostname under the configured domain.
	Slug string
}

type DestroyResponse struct {
	RecordDeleted bool
	TunnelDeleted bool
}

// Destroy removes the CNAME record for a slug and, once confirmed, the tunnel itself.
func (s Service) Destroy(ctx context.Context, request DestroyRequest) (response *DestroyResponse, err error) {
	lc := newLifecycle(s.stats(ctx), "destroy", s.now())
	defer func() {
		lc.Finish(s.now(), err)
		log.Request(s.logger(ctx), "destroy", request, response, err)
	}()

	config, err := s.loadConfig()
	if err != nil {
		return nil, err
	}

	label := slug.Sanitize(slug.Label(strings.TrimSpace(request.Slug), config.Domain))
	if label == "" {
		return nil, ErrMissingSlug
	}
	if !config.Complete() {
		return nil, ErrBrokenConfig
	}

	provider, err := s.provider(ctx)
	if err != nil {
		return nil, err
	}

	response = &DestroyResponse{}
	hostname := config.Hostname(label)
	logger := s.logger(ctx).WithField("hostname", hostname)

	recordID, found, err := provider.FindCNAMERecord(ctx, config.ZoneID, hostname)
	if err != nil {
		return nil, errors.Wrap(err, "look up CNAME record")
	}
	if found {
		if err := provider.DeleteDNSRecord(ctx, config.ZoneID, recordID); err != nil {
			return nil, errors.Wrapf(err, "delete CNAME record %s", hostname)
		}
		response.RecordDeleted = true
		lc.Event("dns_record_deleted", stats.Tags{"hostname": hostname})
		fmt.Fprintf(s.out(), "Deleted CNAME %s\n", hostname)
	} else {
		logger.Warn("CNAME record not found")
	}

	confirmed := false
	if s.Prompt != nil {
		confirmed, err = s.Prompt.Confirm(fmt.Sprintf("Delete the entire tunnel %s? [y/N]", config.TunnelName))
		if err != nil {
			return nil, errors.Wrap(err, "read confirmation")
		}
	}
	if !confirmed {
		return response, nil
	}

	accountID, err := provider.AccountIDFromZone(ctx, config.ZoneID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve account")
	}
	if err := provider.DeleteTunnel(ctx, accountID, config.TunnelID); err != nil {
		return nil, errors.Wrapf(err, "delete tunnel %s", config.TunnelID)
	}
	response.TunnelDeleted = true
	lc.Event("tunnel_deleted", stats.Tags{"tunnel_id": config.TunnelID})
	fmt.Fprintf(s.out(), "Deleted tunnel %s\n", config.TunnelName)

	return response, nil
}
