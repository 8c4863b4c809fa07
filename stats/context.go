package stats

import (
	"context"
)

type contextKey string

const contextStatsKey contextKey = "_stats"

func InjectContext(ctx context.Context, stats Stats) context.Context {
	return context.WithValue(ctx, contextStatsKey, stats)
}

// GetStats returns the Stats carried by ctx, or a no-op Stats.
func GetStats(ctx context.Context) Stats {
	entry, ok := ctx.Value(contextStatsKey).(Stats)
	if !ok {
		return Noop()
	}
	return entry
}
