package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"inboxd/internal/platform/logger"
	"inboxd/internal/platform/net/middleware"
)

// CommonStack returns the baseline middleware for the versioned API.
// Access lines go to log, or the root logger when nil. No origins allows any
func CommonStack(log *logger.Logger, origins ...string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond, Base: log}),

		middleware.CORS(middleware.CORSOptions{AllowedOrigins: origins}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}
