// Package reqlog exposes the router's request id to callers so they can
// correlate their requests with the access log.
package reqlog

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// HeaderRequestID is read from the client by chi's RequestID middleware
// and echoed on the response.
const HeaderRequestID = "X-Request-Id"

// EchoRequestID writes the request id already in the context to the
// response header. It must run after middleware.RequestID.
func EchoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(HeaderRequestID, id)
		}
		next.ServeHTTP(w, r)
	})
}
