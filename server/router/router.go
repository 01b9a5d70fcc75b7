// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"codeberg.org/plae/plae/server/middleware"
)

// Router is the handler of the web server: a ServeMux behind the middleware
// chain. The chain is assembled on the first request, so every Use call must
// happen before the router starts serving.
type Router struct {
	mux         *http.ServeMux
	middlewares []middleware.Middleware
	patterns    []string

	once    sync.Once
	handler http.Handler
}

// NewRouter returns a Router without routes or middleware.
func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

// New returns a Router with the middleware chain and every route installed.
func New() *Router {
	router := NewRouter()
	router.RegisterMiddleware()
	router.DefineRoutes()

	log.Debug().
		Strs("routes", router.Patterns()).
		Int("middlewares", len(router.middlewares)).
		Msg("Router ready")

	return router
}

// Use appends m to the chain. The first middleware added runs outermost.
func (router *Router) Use(m middleware.Middleware) {
	if router.handler != nil {
		panic("router: Use called after the router started serving")
	}

	router.middlewares = append(router.middlewares, m)
}

// Handle registers handler for pattern, as http.ServeMux.Handle does.
func (router *Router) Handle(pattern string, handler http.Handler) {
	router.mux.Handle(pattern, handler)
	router.patterns = append(router.patterns, pattern)
}

// HandleFunc registers handler for pattern, as http.ServeMux.HandleFunc does.
func (router *Router) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	router.Handle(pattern, http.HandlerFunc(handler))
}

// Patterns lists the registered patterns in registration order.
func (router *Router) Patterns() []string {
	return slices.Clone(router.patterns)
}

func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.once.Do(func() {
		var handler http.Handler = router.mux

		for _, m := range slices.Backward(router.middlewares) {
			handler = middleware.Wrap(m, handler)
		}

		router.handler = handler
	})

	router.handler.ServeHTTP(w, r)
}
