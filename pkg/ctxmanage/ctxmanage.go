package ctxmanage

import (
	"github.com/gin-gonic/gin"
)

// TraceIDKey is the gin context key under which the middleware stores the
// per-request trace id.
const TraceIDKey = "trace_id"

// GetTraceIdOfRequest returns the trace id the logging middleware attached to
// the request, or "unknown" if the middleware did not run.
func GetTraceIdOfRequest(c *gin.Context) string {
	traceId, ok := c.Value(TraceIDKey).(string)
	if !ok {
		return "unknown"
	}
	return traceId
}
