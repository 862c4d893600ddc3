package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	applog "patisserie/internal/log"
)

const requestIDHeader = "X-Request-ID"

// withRequestID tags every request with an id, reusing a well-formed id sent
// by the client, and attaches it to the request's log records.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := applog.WithAttrs(r.Context(), "request_id", id)
		applog.Debug(ctx, "request received", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
