package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every log record written with a context that
// carries them.
type LogFields struct {
	UserID      string
	WorkspaceID string
	ChannelID   string
	Component   string
}

// WithLogFields merges fields into the ones already on ctx. Non-empty values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := GetLogFields(ctx)
	if fields.UserID != "" {
		merged.UserID = fields.UserID
	}
	if fields.WorkspaceID != "" {
		merged.WorkspaceID = fields.WorkspaceID
	}
	if fields.ChannelID != "" {
		merged.ChannelID = fields.ChannelID
	}
	if fields.Component != "" {
		merged.Component = fields.Component
	}
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}
