package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/domain/types"
)

// LoggingMiddleware returns a middleware that logs HTTP requests and puts
// the request scoped logger into the request context
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := ctxlog.From(ctx).With("request_id", middleware.GetReqID(r.Context()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(ctxlog.With(r.Context(), logger)))
		})
	}
}

// LoopbackOnly rejects requests whose Host is not a loopback name, or whose
// Origin, when present, is not a loopback origin. Web pages on other origins
// and DNS rebinding attacks both fail one of the two checks. extraHosts are
// accepted in addition to loopback names.
func LoopbackOnly(extraHosts ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(extraHosts))
	for _, host := range extraHosts {
		allowed[strings.ToLower(host)] = struct{}{}
	}

	isAllowed := func(host string) bool {
		host = strings.ToLower(host)
		if _, ok := allowed[host]; ok {
			return true
		}
		if host == "localhost" {
			return true
		}
		ip := net.ParseIP(host)
		return ip != nil && ip.IsLoopback()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isAllowed(hostname(r.Host)) {
				writeError(w, r, goerr.New("host is not allowed",
					goerr.T(types.ErrTagForbidden), goerr.V("host", r.Host)))
				return
			}

			if origin := r.Header.Get("Origin"); origin != "" {
				u, err := url.Parse(origin)
				if err != nil || u.Host == "" || !isAllowed(u.Hostname()) {
					writeError(w, r, goerr.New("origin is not allowed",
						goerr.T(types.ErrTagForbidden), goerr.V("origin", origin)))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// hostname strips the port from a Host header value, including bracketed IPv6
func hostname(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return strings.Trim(hostport, "[]")
}

// errorStatus maps error tags to an HTTP status code
func errorStatus(err error) int {
	switch {
	case goerr.HasTag(err, types.ErrTagInvalidRequest):
		return http.StatusBadRequest
	case goerr.HasTag(err, types.ErrTagForbidden):
		return http.StatusForbidden
	case goerr.HasTag(err, types.ErrTagNetwork), goerr.HasTag(err, types.ErrTagHTTPStatus):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes it as {"error": "..."}
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	logger := ctxlog.From(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "error", err, "status", status)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
	} else {
		logger.Warn("Request rejected", "error", err, "status", status)
	}

	writeJSON(w, r, status, map[string]string{
		"error": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}
