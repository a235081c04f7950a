package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// EchoHandler mounts the router inside an Echo instance, for deployments that
// already standardise on Echo.
func (r *Router) EchoHandler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	h := echo.WrapHandler(r.Handler())
	base := r.basePath
	if base == "" {
		e.Any("/*", h)
	} else {
		e.Any(base, h)
		e.Any(base+"/*", h)
	}
	e.Any("/metrics", h)
	return e
}

// HandlerFor returns the gin handler, or the Echo-mounted one when engine is "echo".
func (r *Router) HandlerFor(engine string) http.Handler {
	if engine == "echo" {
		return r.EchoHandler()
	}
	return r.Handler()
}
