// Package clientip resolves the address of the client that sent a request.
//
// By default only the TCP peer (RemoteAddr) is trusted. When the service runs
// behind a reverse proxy, list the headers the proxy sets with WithHeaders;
// they are checked in order and the first valid address wins. For
// X-Forwarded-For the left-most valid entry is used.
//
//	r := clientip.New(clientip.WithHeaders("X-Forwarded-For", "X-Real-IP"))
//	router.Use(r.Middleware)
//	...
//	ip := clientip.FromContext(ctx)
package clientip
