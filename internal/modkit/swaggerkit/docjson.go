package swaggerkit

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"

	"inboxd/internal/core/version"
)

// Operation describes one endpoint relative to /api/v1
type Operation struct {
	Method  string
	Path    string
	Tag     string
	Summary string
}

var (
	mu  sync.RWMutex
	ops = map[string]Operation{}
)

// Describe records operations for the served document; re-describing a method+path replaces it
func Describe(list ...Operation) {
	mu.Lock()
	defer mu.Unlock()
	for _, op := range list {
		op.Method = strings.ToLower(op.Method)
		ops[op.Method+" "+op.Path] = op
	}
}

// Reset forgets all operations, for tests
func Reset() {
	mu.Lock()
	ops = map[string]Operation{}
	mu.Unlock()
}

// Document renders the recorded operations as an OpenAPI 3.0 document
func Document() map[string]any {
	mu.RLock()
	keys := make([]string, 0, len(ops))
	for k := range ops {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	paths := map[string]any{}
	for _, k := range keys {
		op := ops[k]
		item, _ := paths[op.Path].(map[string]any)
		if item == nil {
			item = map[string]any{}
			paths[op.Path] = item
		}
		item[op.Method] = map[string]any{
			"tags":    []string{op.Tag},
			"summary": op.Summary,
			"responses": map[string]any{
				"200":     map[string]any{"description": "ok", "content": envelopeContent()},
				"default": map[string]any{"description": "error", "content": envelopeContent()},
			},
		}
	}
	mu.RUnlock()

	return map[string]any{
		"openapi": "3.0.3",
		"info":    map[string]any{"title": "inboxd API", "version": version.Info().Version},
		"servers": []any{map[string]any{"url": "/api/v1"}},
		"paths":   paths,
		"components": map[string]any{
			"schemas": map[string]any{
				"Envelope": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"status_code": map[string]any{"type": "integer"},
						"status":      map[string]any{"type": "string"},
						"code":        map[string]any{"type": "integer"},
						"error":       map[string]any{"type": "string"},
						"request_id":  map[string]any{"type": "string"},
						"data":        map[string]any{},
					},
				},
			},
		},
	}
}

func envelopeContent() map[string]any {
	return map[string]any{
		"application/json": map[string]any{
			"schema": map[string]any{"$ref": "#/components/schemas/Envelope"},
		},
	}
}

func serveDocJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(Document())
}
