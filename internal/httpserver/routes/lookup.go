package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/hindsightlabs/hindsight/internal/httpserver/deps"
	"github.com/hindsightlabs/hindsight/internal/httpserver/handlers"
)

func init() { Register(registerLookup) }

func registerLookup(r chi.Router, d deps.Deps) {
	r.Get("/lookup", handlers.Lookup(d))
}
