package obs

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type ctxQueryKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

// PGXTracer implements pgx.QueryTracer, logging statements and durations
// through zerolog. Slow statements are raised to warn.
type PGXTracer struct {
	Logger        zerolog.Logger
	SlowThreshold time.Duration
}

func (t PGXTracer) slow() time.Duration {
	if t.SlowThreshold > 0 {
		return t.SlowThreshold
	}
	return 200 * time.Millisecond
}

// TraceQueryStart records the statement and start time on the context.
func (t PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, ctxQueryKey{}, queryStart{sql: truncateSQL(data.SQL), at: time.Now()})
}

// TraceQueryEnd logs the completed statement.
func (t PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(ctxQueryKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := time.Since(start.at)
	evt := t.Logger.Debug()
	if data.Err != nil {
		evt = t.Logger.Warn().Err(data.Err)
	} else if elapsed >= t.slow() {
		evt = t.Logger.Warn()
	}
	evt.Str("sql", start.sql).Dur("elapsed", elapsed).Msg("pgx query")
}

func truncateSQL(sql string) string {
	trimmed := strings.TrimSpace(sql)
	if len(trimmed) > 300 {
		return trimmed[:300] + "..."
	}
	return trimmed
}
