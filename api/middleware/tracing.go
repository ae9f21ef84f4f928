package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go/log"

	"github.com/testlify/tenderstack/internal/tracing"
)

// TracingMiddleware opens a server span per request and records the outcome status.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(
			c.Request.Context(),
			c.Request.Method+" "+c.FullPath(),
			c.Request.Header,
		)
		defer span.Finish()

		tracing.TagComponentRest(span)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.url", c.Request.URL.Path)

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		span.SetTag("http.status_code", c.Writer.Status())
		if len(c.Errors) > 0 {
			span.SetTag("error", true)
			span.LogFields(log.String("gin.errors", c.Errors.String()))
		}
	}
}
