package prompt

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"strings"
	"testing"
)

func newTerminal(input string, out *bytes.Buffer) *Prompter {
	p := New(strings.NewReader(input), out)
	p.Interactive = func() bool { return true }
	return p
}

func TestPrompter_Prompt(t *testing.T) {
	var out bytes.Buffer
	p := newTerminal(" abc123 \n2\n", &out)

	answer, err := p.Prompt("Cloudflare account ID")
	require.NoError(t, err)
	assert.Equal(t, "abc123", answer)

	answer, err = p.Prompt("Select a zone [1-3]")
	require.NoError(t, err)
	assert.Equal(t, "2", answer)

	// input exhausted
	answer, err = p.Prompt("Select a zone [1-3]")
	require.NoError(t, err)
	assert.Equal(t, "", answer)

	assert.True(t, strings.HasPrefix(out.String(), "Cloudflare account ID: Select a zone [1-3]: "))
}

func TestPrompter_PromptWithoutNewline(t *testing.T) {
	p := newTerminal("42", &bytes.Buffer{})

	answer, err := p.Prompt("Select a zone")
	require.NoError(t, err)
	assert.Equal(t, "42", answer)
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{" YES \n", true},
		{"n\n", false},
		{"\n", false},
		{"yep\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			p := newTerminal(tt.input, &out)

			confirmed, err := p.Confirm("Delete the entire tunnel cftpipe-1? [y/N]")
			require.NoError(t, err)
			assert.Equal(t, tt.want, confirmed)
			assert.Equal(t, "Delete the entire tunnel cftpipe-1? [y/N] ", out.String())
		})
	}
}

func TestPrompter_PipedInput(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("1\ny\n"), &out)
	assert.False(t, p.Interactive())

	answer, err := p.Prompt("Select a zone [1-2]")
	require.NoError(t, err)
	assert.Equal(t, "1", answer)

	confirmed, err := p.Confirm("Delete the entire tunnel cftpipe-1? [y/N]")
	require.NoError(t, err)
	assert.True(t, confirmed)

	// nothing left to read
	answer, err = p.Prompt("Cloudflare account ID")
	require.NoError(t, err)
	assert.Equal(t, "", answer)

	confirmed, err = p.Confirm("Delete the entire tunnel cftpipe-1? [y/N]")
	require.NoError(t, err)
	assert.False(t, confirmed)

	assert.Empty(t, out.String(), "questions are not printed without a terminal")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(strings.NewReader("")))

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f))
}
