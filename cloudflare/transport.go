package cloudflare

import (
	"github.com/sirupsen/logrus"
	"net/http"
	"time"
)

// loggingTransport logs every outgoing API request and its duration.
type loggingTransport struct {
	next   http.RoundTripper
	logger logrus.FieldLogger
}

func (t loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	start := time.Now()
	resp, err := next.RoundTrip(req)

	logger := t.logger.WithFields(logrus.Fields{
		"method":   req.Method,
		"path":     req.URL.EscapedPath(),
		"duration": time.Since(start),
	})
	if err != nil {
		logger.WithError(err).Debug("cloudflare request failed")
		return nil, err
	}

	logger.WithField("status", resp.StatusCode).Debug("cloudflare request")
	return resp, nil
}
