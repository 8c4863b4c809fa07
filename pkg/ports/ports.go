package ports

import (
	"net"
	"strconv"
	"time"
)

// DefaultPort is returned by Detect when no candidate is listening.
const DefaultPort = 3000

const dialTimeout = 150 * time.Millisecond

// DefaultCandidates are common development server ports, in priority order.
var DefaultCandidates = []int{
	3000, 3001, 3002, 3003,
	8000, 8080, 5000,
	5173, 5174, // vite
	4321, 4322, // astro
	24678, 4173, 6006,
	7000, 9000, 9001,
}

type CheckFunc func(port int) bool

// Prober looks for the first candidate port with a listener on the loopback interface.
type Prober struct {
	Candidates []int
	Check      CheckFunc
}

func NewProber() Prober {
	return Prober{Candidates: DefaultCandidates, Check: IsListening}
}

type Result struct {
	Port      int
	Listening bool
}

// Detect returns the first listening candidate, or DefaultPort.
func (p Prober) Detect() int {
	for _, port := range p.candidates() {
		if p.check(port) {
			return port
		}
	}
	return DefaultPort
}

// Scan reports the listening state of every candidate.
func (p Prober) Scan() []Result {
	candidates := p.candidates()
	results := make([]Result, len(candidates))
	for i, port := range candidates {
		results[i] = Result{Port: port, Listening: p.check(port)}
	}
	return results
}

func (p Prober) candidates() []int {
	if len(p.Candidates) == 0 {
		return DefaultCandidates
	}
	return p.Candidates
}

func (p Prober) check(port int) bool {
	if p.Check == nil {
		return IsListening(port)
	}
	return p.Check(port)
}

// IsListening reports whether a TCP connection to 127.0.0.1:port succeeds.
func IsListening(port int) bool {
	if port <= 0 || port > 65535 {
		return false
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), dialTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
