package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

type RequestObserver interface {
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// RequestLogger logs every request through the logger port and feeds the
// request metrics when an observer is given.
func RequestLogger(logger out.LoggerPort, observer RequestObserver) gin.HandlerFunc {
	logger = logger.WithModule("HttpServer")

	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := ctx.Writer.Status()
		latency := time.Since(start)

		fields := out.LogFields{
			"method":    ctx.Request.Method,
			"path":      ctx.Request.URL.Path,
			"route":     route,
			"status":    status,
			"latencyMs": latency.Milliseconds(),
			"remoteIp":  ctx.ClientIP(),
		}
		switch {
		case status >= 500:
			logger.Error("http.request", fields)
		case status >= 400:
			logger.Warn("http.request", fields)
		default:
			logger.Info("http.request", fields)
		}

		if observer != nil {
			observer.ObserveHTTPRequest(ctx.Request.Method, route, status, latency)
		}
	}
}
