package cloudflare

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	"net/http"
	"net/url"
	"sort"
)

const zonesPerPage = 50

type Zone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type zoneRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Account struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"account"`
}

// ListActiveZones returns every active zone visible to the token, sorted by name.
func (c *Client) ListActiveZones(ctx context.Context) ([]Zone, error) {
	var zones []Zone
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("status", "active")
		query.Set("per_page", fmt.Sprint(zonesPerPage))
		query.Set("page", fmt.Sprint(page))

		resp, err := do[[]zoneRecord](ctx, c, http.MethodGet, "/zones?"+query.Encode(), nil)
		if err != nil {
			return nil, errors.Wrap(err, "list zones")
		}
		for _, z := range resp.Result {
			zones = append(zones, Zone{ID: z.ID, Name: z.Name})
		}

		if resp.ResultInfo == nil || page >= resp.ResultInfo.TotalPages || len(resp.Result) == 0 {
			break
		}
	}

	sort.Slice(zones, func(i, j int) bool { return zones[i].Name < zones[j].Name })
	return zones, nil
}

// ZoneIDByName resolves an active zone's id from its name.
func (c *Client) ZoneIDByName(ctx context.Context, name string) (string, error) {
	zones, err := c.ListActiveZones(ctx)
	if err != nil {
		return "", err
	}
	for _, z := range zones {
		if z.Name == name {
			return z.ID, nil
		}
	}
	return "", errors.Wrap(ErrZoneNotFound, name)
}

// AccountIDFromZone returns the id of the account that owns the zone.
func (c *Client) AccountIDFromZone(ctx context.Context, zoneID string) (string, error) {
	resp, err := do[zoneRecord](ctx, c, http.MethodGet, "/zones/"+url.PathEscape(zoneID), nil)
	if err != nil {
		return "", errors.Wrap(err, "get zone")
	}
	if resp.Result.Account.ID == "" {
		return "", fmt.Errorf("zone %s has no account id", zoneID)
	}
	return resp.Result.Account.ID, nil
}
