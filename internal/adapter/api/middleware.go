package api

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/sm8ta/patient_records/internal/core/ports"
)

// Middleware decorates every request the client sends.
type Middleware func(http.RoundTripper) http.RoundTripper

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain wraps base so the first middleware sees the request first.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// BearerAuth attaches the current session token, if any.
func BearerAuth(sessions ports.SessionStore) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			token := sessions.Current().Token
			if token == "" {
				return next.RoundTrip(r)
			}
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(r)
		})
	}
}

// InvalidateOnUnauthorized runs invalidate before a 401 response reaches
// the caller.
func InvalidateOnUnauthorized(invalidate func(context.Context) error, logger ports.LoggerPort) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(r)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			logger.Warn("Session rejected by patient API, logging out", map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			if ierr := invalidate(context.WithoutCancel(r.Context())); ierr != nil {
				logger.Error("Failed to invalidate session", map[string]interface{}{
					"error": ierr.Error(),
				})
			}
			return resp, nil
		})
	}
}

var idSegment = regexp.MustCompile(`/patients/[^/]+$`)

// routeLabel keeps metric cardinality bounded by hiding record ids. Any
// prefix from the base URL is kept.
func routeLabel(path string) string {
	return idSegment.ReplaceAllString(path, "/patients/{id}")
}

// Instrument logs each exchange and records it in metrics.
func Instrument(logger ports.LoggerPort, metrics ports.MetricsPort) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			route := routeLabel(r.URL.Path)

			resp, err := next.RoundTrip(r)
			if err != nil {
				metrics.RecordRequest(r.Method, route, 0, start)
				logger.Debug("Patient API request failed", map[string]interface{}{
					"method": r.Method,
					"path":   r.URL.Path,
					"error":  err.Error(),
				})
				return nil, err
			}

			metrics.RecordRequest(r.Method, route, resp.StatusCode, start)
			logger.Debug("Patient API request", map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   resp.StatusCode,
				"duration": time.Since(start).String(),
			})
			return resp, nil
		})
	}
}
