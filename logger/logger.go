package logger

import "context"

// Logger is the structured logger shared by the pipeline, the providers and
// the HTTP servers. Fields are merged over any fields bound with WithField.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, fields map[string]interface{})

	// WithField returns a logger that adds key to every entry.
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

type runIDKey struct{}

// RunIDField is the field name under which a generation run id is logged.
const RunIDField = "run_id"

// WithRunID returns a context carrying a generation run id. Loggers add it
// to every entry written with that context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run id stored by WithRunID, if any.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}
