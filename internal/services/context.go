package services

import "context"

type contextKey string

const (
	sessionIDKey  contextKey = "session_id"
	slideIndexKey contextKey = "slide_index"
	stageKey      contextKey = "stage"
)

// WithSessionID annotates context with the stream session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the stream session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSlideIndex annotates context with the zero-based dataset index of the
// slide currently in flight.
func WithSlideIndex(ctx context.Context, idx int) context.Context {
	return context.WithValue(ctx, slideIndexKey, idx)
}

// SlideIndexFromContext extracts the slide index if present.
func SlideIndexFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(slideIndexKey).(int); ok {
		return v, true
	}
	return 0, false
}

// WithStage annotates context with the driver state name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the driver state name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
