// Package swaggerkit serves Swagger UI and an OpenAPI document assembled from the
// operations modules describe while mounting
package swaggerkit

import (
	"net/http"

	phttp "inboxd/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Mount serves the UI under /api/docs/ and the document at /api/docs/doc.json
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON)
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("inboxd"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
