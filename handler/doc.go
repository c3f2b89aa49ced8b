// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request value populated by the
// configured binders, and returns a Response that renders itself:
//
//	type checkoutForm struct {
//		Name  string `form:"nome"`
//		Email string `form:"email"`
//	}
//
//	r.Post("/", handler.Wrap(func(ctx handler.Context, req checkoutForm) handler.Response {
//		return handler.Redirect(url)
//	}, handler.WithBinders[checkoutForm](binder.Form())))
//
// Binding and rendering errors go to the ErrorHandler, which by default
// answers with the status carried by an HTTPError or 500.
package handler
