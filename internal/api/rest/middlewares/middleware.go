package middlewares

import "net/http"

// Middleware wraps an http.Handler with additional behaviour
type Middleware interface {
	Handle(next http.Handler) http.Handler
}

// MiddlewareFunc adapts a plain function to the Middleware interface
type MiddlewareFunc func(next http.Handler) http.Handler

func (f MiddlewareFunc) Handle(next http.Handler) http.Handler {
	return f(next)
}

// Chain applies middlewares so that the first one is the outermost
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i].Handle(h)
	}
	return h
}
