package tracing

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/referralhub/pkg/apperror"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

var blockedAttributeKeys = map[attribute.Key]struct{}{
	"email":        {},
	"senha":        {},
	"password":     {},
	"token":        {},
	"tokenconvite": {},
	"x-admin-key":  {},
}

// SafeAttributes drops attributes that could carry credentials or personal data.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, blocked := blockedAttributeKeys[attribute.Key(strings.ToLower(string(attr.Key)))]; blocked {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// SafeError reduces err to its code so span events never carry raw store
// messages or user input.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := apperror.As(err); ok {
		return errors.New(appErr.Code)
	}
	return errors.New("internal_error")
}

// ExtractContext reads propagated trace headers into ctx.
func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
