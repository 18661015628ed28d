package model

import (
	"context"
	"time"
)

type ctxLocationKey struct{}

// ContextWithLocation records the caller's time zone; "today" is computed in it
func ContextWithLocation(ctx context.Context, loc *time.Location) context.Context {
	return context.WithValue(ctx, ctxLocationKey{}, loc)
}

// LocationFromContext returns the caller's time zone or fallback
func LocationFromContext(ctx context.Context, fallback *time.Location) *time.Location {
	if loc, ok := ctx.Value(ctxLocationKey{}).(*time.Location); ok && loc != nil {
		return loc
	}
	if fallback != nil {
		return fallback
	}
	return time.UTC
}
