package bodyparser

import (
	"context"
	"encoding/json"
)

type payloadKey struct{}

// WithPayload stores a parsed body in the context.
func WithPayload(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, payloadKey{}, v)
}

// FromContext returns the parsed body: map[string]any or []any for JSON,
// map[string]any for urlencoded forms.
func FromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(payloadKey{})
	return v, v != nil
}

// Bind copies the parsed body into v using JSON field rules.
// Form values stay strings, so v's fields should be strings or slices
// of strings for urlencoded bodies.
func Bind(ctx context.Context, v any) error {
	payload, ok := FromContext(ctx)
	if !ok {
		return ErrNoPayload
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
