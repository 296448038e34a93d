package telemetry

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Config controls the tracing middleware.
type Config struct {
	ServiceName string
	// SkipPaths are exact request paths that are neither traced nor
	// counted. Probe endpoints stay out of the telemetry stream.
	SkipPaths []string
	// Attributes are appended to every request span, e.g. a
	// deployment environment tag.
	Attributes []attribute.KeyValue
}

// DefaultConfig skips the health probes and the scrape endpoint.
func DefaultConfig() Config {
	return Config{
		ServiceName: "brandradar-api",
		SkipPaths:   []string{"/healthz", "/v1/healthz", "/v1/liveness", "/metrics"},
	}
}

// New returns a Fiber middleware that opens one server span per
// request, propagates incoming trace context, and records the HTTP
// request metrics.
func New(config ...Config) fiber.Handler {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()
		if _, ok := skip[path]; ok {
			return c.Next()
		}

		method := c.Method()
		start := time.Now()

		if HTTPActiveRequests != nil {
			active := metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
			)
			HTTPActiveRequests.Add(c.Context(), 1, active)
			defer HTTPActiveRequests.Add(c.Context(), -1, active)
		}

		tr := otel.GetTracerProvider().Tracer(cfg.ServiceName)
		ctx := otel.GetTextMapPropagator().Extract(c.Context(), propagation.HeaderCarrier(c.GetReqHeaders()))

		attrs := append([]attribute.KeyValue{
			semconv.HTTPMethodKey.String(method),
			semconv.HTTPTargetKey.String(path),
			semconv.HTTPURLKey.String(c.OriginalURL()),
			semconv.NetHostNameKey.String(c.Hostname()),
			attribute.String("http.client_ip", c.IP()),
		}, cfg.Attributes...)

		ctx, span := tr.Start(ctx, method+" "+path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		c.Locals("otel-span", span)
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		route := c.Route().Path
		if route == "" {
			route = path
		}

		span.SetAttributes(
			semconv.HTTPStatusCodeKey.Int(status),
			semconv.HTTPRouteKey.String(route),
			attribute.Int("http.response_size", len(c.Response().Body())),
		)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("error", true))
		}

		recordRequest(c, method, route, status, time.Since(start))

		return err
	}
}

// recordRequest labels the counters by route pattern rather than raw
// path so parameterized URLs do not explode the cardinality.
func recordRequest(c *fiber.Ctx, method, route string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", route),
		attribute.String("status", strconv.Itoa(status)),
	)

	if HTTPRequestsTotal != nil {
		HTTPRequestsTotal.Add(c.Context(), 1, attrs)
	}
	if HTTPRequestDuration != nil {
		HTTPRequestDuration.Record(c.Context(), elapsed.Seconds(), attrs)
	}
}

// SpanFromContext gets the current request span from fiber context
func SpanFromContext(c *fiber.Ctx) trace.Span {
	span, ok := c.Locals("otel-span").(trace.Span)
	if !ok {
		return nil
	}
	return span
}
