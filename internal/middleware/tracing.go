package middleware

import (
	"fmt"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns the tracing chain: otelfiber opens the server span, then
// TraceContext exposes its IDs to logs and clients.
func Tracing() []fiber.Handler {
	return []fiber.Handler{otelfiber.Middleware(), TraceContext()}
}

// TraceContext copies the active span's IDs into Fiber locals and the X-Trace-ID header.
func TraceContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		span := trace.SpanFromContext(c.UserContext())
		sc := span.SpanContext()
		if sc.HasTraceID() {
			c.Locals("traceID", sc.TraceID().String())
			c.Locals("spanID", sc.SpanID().String())
			c.Set("X-Trace-ID", sc.TraceID().String())
		}

		if requestID := c.Locals("requestid"); requestID != nil {
			span.SetAttributes(attribute.String("request.id", fmt.Sprintf("%v", requestID)))
		}

		err := c.Next()

		if userID := c.Locals("userID"); userID != nil {
			span.SetAttributes(attribute.String("user.id", fmt.Sprintf("%v", userID)))
		}
		if err != nil {
			span.RecordError(err)
		}
		return err
	}
}
