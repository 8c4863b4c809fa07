package tunnel

import (
	"bytes"
	"fmt"
	"github.com/hightouchio/cftpipe/pkg/models"
	"github.com/hightouchio/cftpipe/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestList_Empty(t *testing.T) {
	h := newHarness(t)

	var out bytes.Buffer
	require.NoError(t, h.service.List(&out, 0))
	assert.Equal(t, "No history\n", out.String())
}

func TestList_LastTwentyOldestFirst(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 25; i++ {
		require.NoError(t, h.files.AppendHistory(models.HistoryEntry{
			Directory: "/srv/app",
			Project:   "app",
			Hostname:  fmt.Sprintf("app-%02d.example.com", i),
			Port:      "3000",
			Timestamp: fmt.Sprintf("2024-05-01T12:00:%02dZ", i),
		}))
	}

	var out bytes.Buffer
	require.NoError(t, h.service.List(&out, DefaultListLimit))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 20)
	assert.Equal(t, "2024-05-01T12:00:05Z | app | https://app-05.example.com | port 3000", lines[0])
	assert.Equal(t, "2024-05-01T12:00:24Z | app | https://app-24.example.com | port 3000", lines[19])
}

func TestStatus(t *testing.T) {
	t.Run("no config", func(t *testing.T) {
		h := newHarness(t)

		var out bytes.Buffer
		require.NoError(t, h.service.Status(&out, FormatJSON, false))
		assert.Equal(t, "No config\n", out.String())
	})

	t.Run("json is the stored document", func(t *testing.T) {
		h := newHarness(t)
		h.withConfig(t)
		stored, err := h.files.Status()
		require.NoError(t, err)

		var out bytes.Buffer
		require.NoError(t, h.service.Status(&out, "", false))
		assert.Equal(t, string(stored), out.String())
		assert.Contains(t, out.String(), `"token": "token-tunnel-1"`)
	})

	t.Run("yaml masks the token", func(t *testing.T) {
		h := newHarness(t)
		h.withConfig(t)

		var out bytes.Buffer
		require.NoError(t, h.service.Status(&out, FormatYAML, false))
		assert.Contains(t, out.String(), "domain: example.com\n")
		assert.Contains(t, out.String(), "tunnel_name: cftpipe-1714566645\n")
		assert.Contains(t, out.String(), "2024-05-01T12:30:45Z")
		assert.Contains(t, out.String(), maskedToken)
		assert.NotContains(t, out.String(), "token-tunnel-1")

		out.Reset()
		require.NoError(t, h.service.Status(&out, FormatYAML, true))
		assert.Contains(t, out.String(), "token: token-tunnel-1\n")
	})

	t.Run("unknown format", func(t *testing.T) {
		h := newHarness(t)
		h.withConfig(t)

		err := h.service.Status(&bytes.Buffer{}, "xml", false)
		assert.IsType(t, UsageError{}, err)
	})
}

func TestPorts(t *testing.T) {
	h := newHarness(t)
	h.service.Prober = ports.Prober{
		Candidates: []int{3000, 5173},
		Check:      func(port int) bool { return port == 5173 },
	}

	var out bytes.Buffer
	require.NoError(t, h.service.Ports(&out))
	assert.Equal(t, " 3000  -\n 5173  listening\nselected: 5173\n", out.String())
}
