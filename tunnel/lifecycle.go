package tunnel

import (
	"github.com/hightouchio/cftpipe/stats"
	"time"
)

const (
	StatCommandDuration = "command.duration"
	StatRecordsCreated  = "dns.records_created"
)

// lifecycle reports the progress of a single command through stats.
type lifecycle struct {
	st      stats.Stats
	started time.Time
}

func newLifecycle(st stats.Stats, command string, now time.Time) lifecycle {
	l := lifecycle{
		st:      st.WithPrefix(command).WithTags(stats.Tags{"command": command}),
		started: now,
	}
	l.st.SimpleEvent("start", nil)
	return l
}

// Event is called for the notable steps of a command, such as creating a record or a tunnel.
func (l lifecycle) Event(event string, tags stats.Tags) {
	l.st.SimpleEvent(event, tags)
}

func (l lifecycle) Error(event string, err error, tags stats.Tags) {
	l.st.ErrorEvent(event, err, tags)
}

// Finish records the command duration and its outcome.
func (l lifecycle) Finish(now time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	l.st.Incr(outcome, nil)
	l.st.Timing(StatCommandDuration, now.Sub(l.started), stats.Tags{"outcome": outcome})
}
