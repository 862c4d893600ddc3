package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"patisserie/internal/handlers"
	applog "patisserie/internal/log"
	"patisserie/internal/metrics"
)

func newRouter(withMetrics bool) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	applog.Debug(context.Background(), "route registered", "path", "/healthz")
	if withMetrics {
		mux.Handle("/metrics", metrics.Handler())
		applog.Debug(context.Background(), "route registered", "path", "/metrics")
	}
	mux.HandleFunc("/login", handlers.Login)
	applog.Debug(context.Background(), "route registered", "path", "/login")
	mux.HandleFunc("/logout", handlers.Logout)
	applog.Debug(context.Background(), "route registered", "path", "/logout")

	protected := map[string]http.HandlerFunc{
		"/app/api/units":       handlers.UnitResource,
		"/app/api/ingredients": handlers.IngredientResource,
		"/app/api/recipes":     handlers.RecipeResource,
	}
	for path, handler := range protected {
		mux.Handle(path, handlers.RequireAuthentication(handler))
		mux.Handle(path+"/", handlers.RequireAuthentication(handler))
		applog.Debug(context.Background(), "route registered", "path", path, "protected", true)
	}
	return mux
}

// instrument counts requests per route template.
func instrument(next http.Handler) http.Handler {
	return metrics.Middleware(routeLabel, next)
}

const otherRoute = "other"

var (
	exactRoutes = map[string]bool{"/healthz": true, "/metrics": true, "/login": true, "/logout": true}
	apiPrefixes = map[string]bool{"units": true, "ingredients": true, "recipes": true}
	apiActions  = map[string]bool{"path": true, "compatible": true, "copy": true, "valuation": true, "records": true}
)

// routeLabel maps a request onto a bounded set of route labels. Numeric
// segments become ":id"; paths outside the served routes share otherRoute.
func routeLabel(r *http.Request) string {
	path := "/" + strings.Trim(r.URL.Path, "/")
	if exactRoutes[path] {
		return path
	}

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segments) < 3 || segments[0] != "app" || segments[1] != "api" || !apiPrefixes[segments[2]] {
		return otherRoute
	}
	for i := 3; i < len(segments); i++ {
		switch {
		case apiActions[segments[i]]:
		case isID(segments[i]):
			segments[i] = ":id"
		default:
			return otherRoute
		}
	}
	return "/" + strings.Join(segments, "/")
}

func isID(segment string) bool {
	_, err := strconv.ParseUint(segment, 10, 64)
	return err == nil
}
