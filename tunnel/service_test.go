package tunnel

import (
	"bytes"
	"context"
	"github.com/hightouchio/cftpipe/cloudflare"
	"github.com/hightouchio/cftpipe/cloudflare/cloudflaretest"
	"github.com/hightouchio/cftpipe/pkg/models"
	"github.com/hightouchio/cftpipe/pkg/ports"
	"github.com/hightouchio/cftpipe/pkg/store"
	"github.com/hightouchio/cftpipe/slug"
	"github.com/hightouchio/cftpipe/stats"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
	"time"
)

const (
	testAPIToken  = "api-token"
	testAccountID = "account-1"
	testDirectory = "/home/dev/My Project"
)

var testNow = time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)

type harness struct {
	service Service
	server  *cloudflaretest.Server
	files   *store.Files
	out     *bytes.Buffer
	prompt  *fakePrompt
	daemon  *fakeDaemon
	logs    *test.Hook
}

func newHarness(t *testing.T) *harness {
	server := cloudflaretest.NewServer(testAPIToken)
	t.Cleanup(server.Close)

	files := store.NewFiles(afero.NewMemMapFs(), "/home/dev/.config/cftpipe")
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	h := &harness{
		server: server,
		files:  files,
		out:    &bytes.Buffer{},
		prompt: &fakePrompt{},
		daemon: &fakeDaemon{},
		logs:   hook,
	}
	h.service = Service{
		APIToken: testAPIToken,
		NewProvider: func(token string) Provider {
			return cloudflare.NewClient(token, cloudflare.Options{BaseURL: server.URL, Logger: logger})
		},
		Config:   files,
		History:  files,
		Prober:   ports.Prober{Check: func(int) bool { return false }},
		Prompt:   h.prompt,
		Daemon:   h.daemon,
		Out:      h.out,
		Logger:   logger,
		Stats:    stats.New(nil, logger),
		Now:      func() time.Time { return testNow },
		Generate: slug.Generator{
			Now:    func() time.Time { return testNow },
			Random: func() (string, error) { return "abcdef", nil },
		}.Generate,
	}
	return h
}

// withConfig stores a finished setup for example.com.
func (h *harness) withConfig(t *testing.T) models.Configuration {
	h.server.AddZone("zone-1", "example.com", testAccountID)
	h.server.AddTunnel(cloudflaretest.Tunnel{ID: "tunnel-1", AccountID: testAccountID, Name: "cftpipe-1714566645", Token: "token-tunnel-1"})

	config := models.Configuration{
		Domain:     "example.com",
		ZoneID:     "zone-1",
		TunnelID:   "tunnel-1",
		TunnelName: "cftpipe-1714566645",
		Token:      "token-tunnel-1",
		CreatedAt:  testNow,
	}
	require.NoError(t, h.files.WriteConfig(config))
	return config
}

type fakePrompt struct {
	answers  []string
	confirm  bool
	prompted []string
}

func (p *fakePrompt) Prompt(label string) (string, error) {
	p.prompted = append(p.prompted, label)
	if len(p.answers) == 0 {
		return "", nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return strings.TrimSpace(answer), nil
}

func (p *fakePrompt) Confirm(label string) (bool, error) {
	p.prompted = append(p.prompted, label)
	return p.confirm, nil
}

type fakeDaemon struct {
	specs    []DaemonSpec
	err      error
	checkErr error
}

func (d *fakeDaemon) Check() error {
	return d.checkErr
}

func (d *fakeDaemon) Run(ctx context.Context, spec DaemonSpec) error {
	d.specs = append(d.specs, spec)
	return d.err
}
