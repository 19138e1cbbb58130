package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	perr "inboxd/internal/platform/errors"
	"inboxd/internal/platform/logger"
	pnet "inboxd/internal/platform/net"
)

// RecoverJSON converts a handler panic into the JSON error envelope and logs the stack
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			err := perr.Recovered(v, r.Method+" "+r.URL.Path)
			logger.C(r.Context()).Error().
				Err(err).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			status, body := pnet.Error(perr.PanicErrf("internal error"), pnet.RequestID(r.Context()))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(body)
		}()
		next.ServeHTTP(w, r)
	})
}
