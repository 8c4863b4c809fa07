package stats

import (
	"fmt"
	"github.com/DataDog/datadog-go/statsd"
	"github.com/sirupsen/logrus"
	"sort"
	"strings"
	"time"
)

// Stats reports command metrics and events to statsd and mirrors events to the logger.
type Stats struct {
	client statsd.ClientInterface
	logger logrus.FieldLogger

	prefix string
	tags   Tags
}

type Tags map[string]any

func New(client statsd.ClientInterface, logger logrus.FieldLogger) Stats {
	if client == nil {
		client = &statsd.NoOpClient{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return Stats{
		client: client,
		logger: logger,
		tags:   Tags{},
	}
}

// Noop discards metrics and logs events to the standard logger.
func Noop() Stats {
	return New(&statsd.NoOpClient{}, nil)
}

// Enabled reports whether s was built with New, as opposed to the zero Stats.
func (s Stats) Enabled() bool {
	return s.client != nil
}

func (s Stats) WithPrefix(new string) Stats {
	s.prefix = joinPrefixes(s.prefix, new)
	return s
}

func (s Stats) WithTags(tags Tags) Stats {
	s.tags = mergeTags([]Tags{s.tags, tags})
	return s
}

func (s Stats) Incr(name string, tags Tags) {
	_ = s.statsd().Incr(joinPrefixes(s.prefix, name), convertTags(mergeTags([]Tags{s.tags, tags})), 1)
}

func (s Stats) Timing(name string, value time.Duration, tags Tags) {
	_ = s.statsd().Timing(joinPrefixes(s.prefix, name), value, convertTags(mergeTags([]Tags{s.tags, tags})), 1)
}

func (s Stats) SimpleEvent(title string, tags Tags) {
	s.event(statsd.Event{Title: title, AlertType: statsd.Info}, tags)
}

func (s Stats) ErrorEvent(title string, err error, tags Tags) {
	s.event(statsd.Event{Title: title, Text: err.Error(), AlertType: statsd.Error}, tags)
}

func (s Stats) event(event statsd.Event, tags Tags) {
	merged := mergeTags([]Tags{s.tags, tags})

	event.Title = joinPrefixes(s.prefix, event.Title)
	event.Tags = convertTags(merged)
	_ = s.statsd().Event(&event)

	fields := logrus.Fields(merged)
	level := logrus.DebugLevel
	if event.AlertType == statsd.Error {
		fields["error"] = event.Text
		level = logrus.WarnLevel
	}

	logger := s.logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(fields).Log(level, event.Title)
}

// statsd returns the client, treating the zero Stats as a no-op.
func (s Stats) statsd() statsd.ClientInterface {
	if s.client == nil {
		return &statsd.NoOpClient{}
	}
	return s.client
}

func joinPrefixes(prefixes ...string) string {
	newPrefixes := []string{}
	for _, v := range prefixes {
		if v != "" {
			newPrefixes = append(newPrefixes, v)
		}
	}
	return strings.Join(newPrefixes, ".")
}

func mergeTags(tags []Tags) Tags {
	mergedTags := make(Tags)
	for _, tagGroup := range tags {
		for k, v := range tagGroup {
			if v == nil {
				continue
			}
			mergedTags[k] = v
		}
	}
	return mergedTags
}

func convertTags(tags Tags) []string {
	newTags := make([]string, 0, len(tags))
	for k, v := range tags {
		newTags = append(newTags, fmt.Sprintf("%s:%v", k, v))
	}
	sort.Strings(newTags)
	return newTags
}
