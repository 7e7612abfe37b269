// Package registryserver exposes a local registry tree over HTTP with the
// same contract the HTTP source consumes: GET /index.json for the component
// index and GET /{component}/component.json (plus payload files) per
// component. Intended for component development and testing.
package registryserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sygaldry-ai/sygaldry/internal/registry"
)

// New returns an HTTP handler serving the registry tree at root.
func New(root string) (http.Handler, error) {
	src, err := registry.NewLocalSource(root)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/index.json", func(w http.ResponseWriter, req *http.Request) {
		index, err := src.List(req.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if index == nil {
			index = []registry.IndexEntry{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(index); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	r.Get("/{component}/*", func(w http.ResponseWriter, req *http.Request) {
		component := chi.URLParam(req, "component")
		path := chi.URLParam(req, "*")

		data, err := src.FetchFile(req.Context(), component, path)
		if err != nil {
			http.NotFound(w, req)
			return
		}
		if path == "component.json" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.Write(data)
	})

	return r, nil
}
