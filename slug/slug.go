package slug

import (
	"encoding/hex"
	"fmt"
	"github.com/google/uuid"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// DefaultPrefix is used when a prefix sanitizes to nothing.
const DefaultPrefix = "app"

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	dashRuns     = regexp.MustCompile(`-{2,}`)
)

// Generator produces subdomain labels. The zero value uses the wall clock and a random UUID.
type Generator struct {
	Now    func() time.Time
	Random func() (string, error)
}

// Generate returns "<prefix>-<HHMMSS>-<random>" restricted to [a-z0-9-].
func Generate(prefix string) string {
	return Generator{}.Generate(prefix)
}

func (g Generator) Generate(prefix string) string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	random := randomHex
	if g.Random != nil {
		random = g.Random
	}

	p := Sanitize(prefix)
	if p == "" {
		p = DefaultPrefix
	}

	suffix, err := random()
	if err != nil || Sanitize(suffix) == "" {
		suffix = fmt.Sprintf("%d", rand.Intn(1000000))
	}

	return clean(fmt.Sprintf("%s-%s-%s", p, now().Format("150405"), suffix))
}

// Sanitize lower-cases s, drops characters outside [a-z0-9-], collapses dash runs
// and trims dashes at both ends.
func Sanitize(s string) string {
	s = clean(s)
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Label strips the ".domain" suffix from hostname, leaving the subdomain label.
// A hostname under another domain yields its first DNS label.
func Label(hostname, domain string) string {
	if domain != "" && strings.HasSuffix(hostname, "."+domain) {
		return strings.TrimSuffix(hostname, "."+domain)
	}
	label, _, _ := strings.Cut(hostname, ".")
	return label
}

func clean(s string) string {
	return invalidChars.ReplaceAllString(strings.ToLower(s), "")
}

func randomHex() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(id[:3]), nil
}
