package ports

import (
	"github.com/phayes/freeport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"strconv"
	"testing"
)

func listen(t *testing.T) int {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)

	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	return port
}

func closedPort(t *testing.T) int {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)
	return port
}

func TestProber_Detect(t *testing.T) {
	listening := map[int]bool{}
	prober := Prober{
		Candidates: DefaultCandidates,
		Check:      func(port int) bool { return listening[port] },
	}

	t.Run("nothing listening", func(t *testing.T) {
		assert.Equal(t, DefaultPort, prober.Detect())
	})

	t.Run("single listener", func(t *testing.T) {
		listening = map[int]bool{5173: true}
		assert.Equal(t, 5173, prober.Detect())
	})

	t.Run("priority order", func(t *testing.T) {
		listening = map[int]bool{5173: true, 3000: true, 9001: true}
		assert.Equal(t, 3000, prober.Detect())
	})

	t.Run("ports outside the candidate list are ignored", func(t *testing.T) {
		listening = map[int]bool{12345: true}
		assert.Equal(t, DefaultPort, prober.Detect())
	})
}

func TestProber_DetectRealListener(t *testing.T) {
	open := listen(t)
	closed := closedPort(t)

	prober := Prober{Candidates: []int{closed, open}, Check: IsListening}
	assert.Equal(t, open, prober.Detect())

	prober = Prober{Candidates: []int{closed}, Check: IsListening}
	assert.Equal(t, DefaultPort, prober.Detect())
}

func TestProber_Scan(t *testing.T) {
	open := listen(t)
	closed := closedPort(t)

	results := Prober{Candidates: []int{closed, open}}.Scan()
	assert.Equal(t, []Result{
		{Port: closed, Listening: false},
		{Port: open, Listening: true},
	}, results)
}

func TestIsListening_InvalidPort(t *testing.T) {
	assert.False(t, IsListening(0))
	assert.False(t, IsListening(-1))
	assert.False(t, IsListening(70000))
}
