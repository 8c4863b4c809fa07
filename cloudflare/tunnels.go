package cloudflare

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"github.com/pkg/errors"
	"net/http"
	"net/url"
)

type Tunnel struct {
	ID    string
	Name  string
	Token string
}

type tunnelRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// TunnelTarget is the CNAME target that routes a hostname to the tunnel.
func TunnelTarget(tunnelID string) string {
	return tunnelID + ".cfargotunnel.com"
}

// CreateTunnel creates a locally configured tunnel and returns its id and connector token.
func (c *Client) CreateTunnel(ctx context.Context, accountID, name string) (Tunnel, error) {
	secret, err := tunnelSecret()
	if err != nil {
		return Tunnel{}, errors.Wrap(err, "generate tunnel secret")
	}

	body := map[string]interface{}{
		"name":          name,
		"tunnel_secret": secret,
		"config_src":    "local",
	}
	resp, err := do[tunnelRecord](ctx, c, http.MethodPost, tunnelsPath(accountID), body)
	if err != nil {
		return Tunnel{}, errors.Wrap(err, "create tunnel")
	}

	tunnel := Tunnel{ID: resp.Result.ID, Name: resp.Result.Name, Token: resp.Result.Token}
	if tunnel.ID == "" {
		return Tunnel{}, fmt.Errorf("create tunnel %s: empty tunnel id in response", name)
	}

	if tunnel.Token == "" {
		token, err := c.TunnelToken(ctx, accountID, tunnel.ID)
		if err != nil {
			return tunnel, errors.Wrapf(err, "tunnel %s was created", tunnel.ID)
		}
		tunnel.Token = token
	}

	return tunnel, nil
}

// TunnelToken fetches the token cloudflared uses to run the tunnel.
func (c *Client) TunnelToken(ctx context.Context, accountID, tunnelID string) (string, error) {
	resp, err := do[string](ctx, c, http.MethodGet, tunnelsPath(accountID)+"/"+url.PathEscape(tunnelID)+"/token", nil)
	if err != nil {
		return "", errors.Wrap(err, "get tunnel token")
	}
	if resp.Result == "" {
		return "", errors.New("empty tunnel token returned")
	}
	return resp.Result, nil
}

func (c *Client) DeleteTunnel(ctx context.Context, accountID, tunnelID string) error {
	_, err := do[tunnelRecord](ctx, c, http.MethodDelete, tunnelsPath(accountID)+"/"+url.PathEscape(tunnelID), nil)
	return errors.Wrap(err, "delete tunnel")
}

func tunnelsPath(accountID string) string {
	return "/accounts/" + url.PathEscape(accountID) + "/cfd_tunnel"
}

func tunnelSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
