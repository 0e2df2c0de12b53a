package internal

import "net/http"

// Handler declares routes on a router.
//
// Example:
//
//	type PagesHandler struct{}
//
//	func (h *PagesHandler) Routes(r origami.Router) {
//	    r.GET("/", h.index)
//	    r.GET("/purge", nil, purger.Middleware())
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// It receives a Context and returns an error.
// Returning a non-nil error hands the request to the error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect/modify the request, short-circuit processing,
// or fail the request by returning an error.
//
// Example:
//
//	func RequireSource(next origami.HandlerFunc) origami.HandlerFunc {
//	    return func(c origami.Context) error {
//	        if c.Query("source") == "" {
//	            return c.Error(http.StatusBadRequest, "source is required")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers and middleware.
// It is the terminal stage of every failed request.
type ErrorHandler func(Context, error) error

// Chain applies mw around h, the first middleware being outermost.
func Chain(h HandlerFunc, mw ...Middleware) HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// terminal ends a middleware-only route: a filter that never calls next
// owns the response, one that does gets an empty 200.
func terminal(c Context) error {
	return c.NoContent(http.StatusOK)
}
