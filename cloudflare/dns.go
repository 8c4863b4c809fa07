package cloudflare

import (
	"context"
	"github.com/pkg/errors"
	"net/http"
	"net/url"
)

type dnsRecord struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"`
}

// FindCNAMERecord returns the id of the CNAME record for hostname. If the API returns
// more than one, the first is used.
func (c *Client) FindCNAMERecord(ctx context.Context, zoneID, hostname string) (string, bool, error) {
	query := url.Values{}
	query.Set("type", "CNAME")
	query.Set("name", hostname)

	resp, err := do[[]dnsRecord](ctx, c, http.MethodGet, recordsPath(zoneID)+"?"+query.Encode(), nil)
	if err != nil {
		return "", false, errors.Wrap(err, "find dns record")
	}
	if len(resp.Result) == 0 {
		return "", false, nil
	}
	return resp.Result[0].ID, true, nil
}

// CreateCNAME points hostname at target. A TTL of 1 lets Cloudflare pick it automatically.
func (c *Client) CreateCNAME(ctx context.Context, zoneID, hostname, target string, proxied bool) error {
	_, err := do[dnsRecord](ctx, c, http.MethodPost, recordsPath(zoneID), dnsRecord{
		Type:    "CNAME",
		Name:    hostname,
		Content: target,
		Proxied: proxied,
		TTL:     1,
	})
	return errors.Wrap(err, "create dns record")
}

func (c *Client) DeleteDNSRecord(ctx context.Context, zoneID, recordID string) error {
	_, err := do[dnsRecord](ctx, c, http.MethodDelete, recordsPath(zoneID)+"/"+url.PathEscape(recordID), nil)
	return errors.Wrap(err, "delete dns record")
}

func recordsPath(zoneID string) string {
	return "/zones/" + url.PathEscape(zoneID) + "/dns_records"
}
