package cloudflare

import (
	"context"
	"fmt"
	"github.com/hightouchio/cftpipe/cloudflare/cloudflaretest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"testing"
)

const testToken = "test-token"

func newTestClient(t *testing.T) (*Client, *cloudflaretest.Server) {
	server := cloudflaretest.NewServer(testToken)
	t.Cleanup(server.Close)
	return NewClient(testToken, Options{BaseURL: server.URL}), server
}

func TestClient_ListActiveZones(t *testing.T) {
	client, server := newTestClient(t)
	server.AddZone("zone-c", "zeta.dev", "account-1")
	server.AddZone("zone-a", "example.com", "account-1")
	server.AddZone("zone-b", "alpha.io", "account-1")

	zones, err := client.ListActiveZones(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Zone{
		{ID: "zone-b", Name: "alpha.io"},
		{ID: "zone-a", Name: "example.com"},
		{ID: "zone-c", Name: "zeta.dev"},
	}, zones)
}

func TestClient_ListActiveZones_Paginated(t *testing.T) {
	client, server := newTestClient(t)
	for i := 0; i < zonesPerPage+7; i++ {
		server.AddZone(fmt.Sprintf("zone-%03d", i), fmt.Sprintf("domain-%03d.com", i), "account-1")
	}

	zones, err := client.ListActiveZones(context.Background())
	require.NoError(t, err)
	assert.Len(t, zones, zonesPerPage+7)
	assert.Equal(t, 2, server.CountCalls(http.MethodGet, "/zones"))
}

func TestClient_ListActiveZones_Empty(t *testing.T) {
	client, _ := newTestClient(t)

	zones, err := client.ListActiveZones(context.Background())
	require.NoError(t, err)
	assert.Empty(t, zones)
}

func TestClient_Unauthorized(t *testing.T) {
	server := cloudflaretest.NewServer(testToken)
	defer server.Close()
	server.AddZone("zone-a", "example.com", "account-1")

	client := NewClient("wrong-token", Options{BaseURL: server.URL})
	_, err := client.ListActiveZones(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized), "error %v", err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "Authentication error")
}

func TestClient_ServerError(t *testing.T) {
	client, server := newTestClient(t)
	server.FailPath = "/zones"

	_, err := client.ListActiveZones(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	// no retries by default
	assert.Equal(t, 1, server.CountCalls(http.MethodGet, "/zones"))
}

func TestClient_ZoneIDByName(t *testing.T) {
	client, server := newTestClient(t)
	server.AddZone("zone-a", "example.com", "account-1")

	id, err := client.ZoneIDByName(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "zone-a", id)

	_, err = client.ZoneIDByName(context.Background(), "missing.com")
	assert.True(t, errors.Is(err, ErrZoneNotFound))
}

func TestClient_AccountIDFromZone(t *testing.T) {
	client, server := newTestClient(t)
	server.AddZone("zone-a", "example.com", "account-42")

	account, err := client.AccountIDFromZone(context.Background(), "zone-a")
	require.NoError(t, err)
	assert.Equal(t, "account-42", account)

	_, err = client.AccountIDFromZone(context.Background(), "zone-missing")
	assert.Error(t, err)
}

func TestClient_CreateTunnel(t *testing.T) {
	for _, omitToken := range []bool{false, true} {
		t.Run(fmt.Sprintf("omit token %v", omitToken), func(t *testing.T) {
			client, server := newTestClient(t)
			server.OmitTunnelToken = omitToken

			tunnel, err := client.CreateTunnel(context.Background(), "account-1", "cftpipe-1714550400")
			require.NoError(t, err)
			assert.NotEmpty(t, tunnel.ID)
			assert.Equal(t, "cftpipe-1714550400", tunnel.Name)
			assert.Equal(t, "token-"+tunnel.ID, tunnel.Token)

			tunnels := server.Tunnels()
			require.Len(t, tunnels, 1)
			assert.Equal(t, "account-1", tunnels[0].AccountID)
			assert.Equal(t, "local", tunnels[0].ConfigSrc)
			assert.NotEmpty(t, tunnels[0].Secret)

			expectedTokenCalls := 0
			if omitToken {
				expectedTokenCalls = 1
			}
			assert.Equal(t, expectedTokenCalls, server.CountCalls(http.MethodGet, "/accounts/{account}/cfd_tunnel/{id}/token"))
		})
	}
}

func TestClient_DeleteTunnel(t *testing.T) {
	client, server := newTestClient(t)

	tunnel, err := client.CreateTunnel(context.Background(), "account-1", "cftpipe-1")
	require.NoError(t, err)

	require.NoError(t, client.DeleteTunnel(context.Background(), "account-1", tunnel.ID))
	assert.Empty(t, server.Tunnels())

	assert.Error(t, client.DeleteTunnel(context.Background(), "account-1", tunnel.ID))
}

func TestClient_DNSRecords(t *testing.T) {
	client, server := newTestClient(t)
	ctx := context.Background()

	_, found, err := client.FindCNAMERecord(ctx, "zone-a", "demo.example.com")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, client.CreateCNAME(ctx, "zone-a", "demo.example.com", TunnelTarget("tunnel-1"), true))

	records := server.Records("zone-a")
	require.Len(t, records, 1)
	assert.Equal(t, "CNAME", records[0].Type)
	assert.Equal(t, "demo.example.com", records[0].Name)
	assert.Equal(t, "tunnel-1.cfargotunnel.com", records[0].Content)
	assert.True(t, records[0].Proxied)

	id, found, err := client.FindCNAMERecord(ctx, "zone-a", "demo.example.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, records[0].ID, id)

	// a duplicate create is rejected by the API
	assert.Error(t, client.CreateCNAME(ctx, "zone-a", "demo.example.com", TunnelTarget("tunnel-1"), true))

	require.NoError(t, client.DeleteDNSRecord(ctx, "zone-a", id))
	assert.Empty(t, server.Records("zone-a"))
}

func TestClient_FindCNAMERecord_FirstMatchWins(t *testing.T) {
	client, server := newTestClient(t)
	server.AddRecord("zone-a", cloudflaretest.Record{ID: "first", Type: "CNAME", Name: "demo.example.com"})
	server.AddRecord("zone-a", cloudflaretest.Record{ID: "second", Type: "CNAME", Name: "demo.example.com"})
	server.AddRecord("zone-a", cloudflaretest.Record{ID: "a-record", Type: "A", Name: "other.example.com"})

	id, found, err := client.FindCNAMERecord(context.Background(), "zone-a", "demo.example.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "first", id)
}
