package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"gamevault.dev/mint-go/internal/apierror"
	"gamevault.dev/mint-go/pkg/types"
	"sigsum.org/sigsum-go/pkg/log"
)

type Metrics interface {
	OnRequest(endpoint string)
	OnResponse(endpoint string, statusCode int, latency time.Duration)
}

type Config struct {
	Metrics Metrics
	Timeout time.Duration
	// Include stack traces of recovered panics in responses.
	Debug bool
}

// Handler implements the http.Handler interface
type Handler struct {
	Config
	// Must always return a valid HTTP status code, for both nil and
	// non-nil error. On success, Fun writes the response itself; on
	// error, the error is written as a JSON envelope.
	Fun      func(context.Context, http.ResponseWriter, *http.Request) (int, error)
	Endpoint types.Endpoint
	Method   string
}

// Path returns a path that should be configured for this handler
func (h Handler) Path(prefix string) string {
	if prefix == "" {
		return "/" + string(h.Endpoint)
	}
	return "/" + h.Endpoint.Path(prefix)
}

func (h Handler) Register(r *mux.Router, prefix string) {
	r.Handle(h.Path(prefix), h)
}

// ServeHTTP is part of the http.Handler interface
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	code := 0
	defer func() {
		if h.Metrics != nil {
			h.Metrics.OnResponse(string(h.Endpoint), code, time.Since(start))
		}
	}()
	if h.Metrics != nil {
		h.Metrics.OnRequest(string(h.Endpoint))
	}
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			code = h.recovered(w, r, rec)
		}
	}()

	if code = h.verifyMethod(w, r); code != 0 {
		return
	}
	code = h.handle(w, r)
}

// verifyMethod checks that an appropriate HTTP method is used.  Error
// handling is based on RFC 7231, see Sections 6.5.5 (Status 405) and
// 6.5.1 (Status 400).  Returns 0 if the method is ok, otherwise the
// status code of the written error response.
func (h Handler) verifyMethod(w http.ResponseWriter, r *http.Request) int {
	if h.Method == r.Method {
		return 0
	}

	code := http.StatusBadRequest
	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		w.Header().Set("Allow", h.Method)
		code = http.StatusMethodNotAllowed
	}
	WriteJSON(w, code, types.Envelope{Success: false, Error: http.StatusText(code)})
	return code
}

// handle handles an HTTP request for which the HTTP method is already verified
func (h Handler) handle(w http.ResponseWriter, r *http.Request) int {
	ctx := r.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	code, err := h.Fun(ctx, w, r)
	// Log all internal server errors.
	if code == http.StatusInternalServerError {
		log.Error("Internal server error for %s (%q): %v", h.Endpoint, r.URL.Path, err)
	}
	if err != nil {
		if code != http.StatusInternalServerError {
			log.Debug("%s (%q): status %d, %v", h.Endpoint, r.URL.Path, code, err)
		}
		WriteError(w, code, err)
	}
	return code
}

func (h Handler) recovered(w http.ResponseWriter, r *http.Request, rec any) int {
	log.Error("Panic for %s (%q): %v", h.Endpoint, r.URL.Path, rec)
	env := types.Envelope{
		Success: false,
		Error:   "Internal server error",
		Details: fmt.Sprint(rec),
		Code:    string(apierror.Internal),
	}
	if h.Debug {
		env.Stack = string(debug.Stack())
	}
	WriteJSON(w, http.StatusInternalServerError, env)
	return http.StatusInternalServerError
}

// Fail returns the status code for err, for use as the return value of a
// handler function.
func Fail(err error) (int, error) {
	return apierror.From(err).Kind.Status(), err
}

// WriteError writes err as a JSON envelope.
func WriteError(w http.ResponseWriter, code int, err error) {
	e := apierror.From(err)
	env := types.Envelope{
		Success: false,
		Error:   e.Message,
		Details: e.Details(),
		Code:    string(e.Kind),
		Data:    e.Data,
	}
	if e.RetryAfter > 0 {
		env.RetryAfter = e.RetryAfter
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfter))
	}
	WriteJSON(w, code, env)
}

// WriteJSON writes v as the response body. Returns code and a nil error,
// for use as the return value of a handler function.
func WriteJSON(w http.ResponseWriter, code int, v any) (int, error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Too late to report to the client.
		log.Debug("writing response failed: %v", err)
	}
	return code, nil
}
