package api

import (
	"crypto/subtle"
	"math"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gamevault.dev/mint-go/internal/apierror"
	"gamevault.dev/mint-go/internal/node/handler"
	"gamevault.dev/mint-go/internal/rate-limit"
	"gamevault.dev/mint-go/pkg/types"
	"sigsum.org/sigsum-go/pkg/log"
)

// Access configures the checks applied to public requests.
type Access struct {
	// Required in the X-API-Key header, unless empty.
	APISecret      string
	Limiter        rateLimit.Limiter
	TrustProxy     bool
	AllowedOrigins []string
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(types.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(types.RequestIDHeader, id)
		}
		w.Header().Set(types.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		h.Set("Content-Security-Policy", "default-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// requireAPIKey rejects requests without the shared secret, except for
// the paths in exempt.
func requireAPIKey(secret string, exempt ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range exempt {
				if r.URL.Path == path {
					next.ServeHTTP(w, r)
					return
				}
			}
			key := r.Header.Get(types.APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				log.Debug("rejected request for %q from %s: bad api key", r.URL.Path, r.RemoteAddr)
				handler.WriteError(w, http.StatusUnauthorized,
					apierror.New(apierror.Unauthorized, "Invalid or missing API key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func limitRequests(limiter rateLimit.Limiter, trustProxy bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := limiter.AccessAllowed(rateLimit.ClientAddress(r, trustProxy))
			if !ok {
				seconds := int(math.Ceil(wait.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				handler.WriteError(w, http.StatusTooManyRequests,
					apierror.RateLimit(seconds, "Too many requests from this IP, please try again later."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	handler.WriteJSON(w, http.StatusNotFound, types.Envelope{
		Success: false,
		Error:   "Endpoint not found",
		Code:    string(apierror.NotFound),
		Path:    r.URL.Path,
	})
}

// PublicHTTPHandler returns the router for the public endpoints, with
// request ids, security headers and CORS on all paths, and the rate limit
// and API key checks under the prefix.
func (n *Node) PublicHTTPHandler(access Access) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)

	root := handler.Handler{Config: n.Config.Config, Fun: n.root, Method: http.MethodGet}
	router.Handle("/", root)

	api := router
	if n.Prefix != "" {
		api = router.PathPrefix("/" + n.Prefix).Subrouter()
	}
	if access.Limiter != nil {
		api.Use(limitRequests(access.Limiter, access.TrustProxy))
	}
	health := handler.Handler{Endpoint: types.EndpointHealth}.Path(n.Prefix)
	if access.APISecret != "" {
		api.Use(requireAPIKey(access.APISecret, health, "/"))
	}
	// Paths on the subrouter are relative to the prefix.
	for _, h := range n.PublicHTTPHandlers() {
		log.Debug("adding external handler: %s", h.Path(n.Prefix))
		api.Handle(h.Path(""), h)
	}

	return requestID(securityHeaders(cors.Handler(cors.Options{
		AllowedOrigins: access.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", types.APIKeyHeader, types.RequestIDHeader},
		ExposedHeaders: []string{types.RequestIDHeader, "Retry-After"},
		MaxAge:         300,
	})(router)))
}

// InternalHTTPHandler returns the router for the operator endpoints. If
// metrics is non-nil, it is served on /metrics.
func (n *Node) InternalHTTPHandler(metrics http.Handler) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	for _, h := range n.InternalHTTPHandlers() {
		log.Debug("adding internal handler: %s", h.Path(""))
		h.Register(router, "")
	}
	if metrics != nil {
		log.Debug("adding prometheus handler to internal mux, on path: /metrics")
		router.Handle("/"+string(types.EndpointMetrics), metrics)
	}
	return router
}
