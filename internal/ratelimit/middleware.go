package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"distconv/internal/logging"
)

// KeyFunc identifies the client of a request
type KeyFunc func(r *http.Request) string

// Options configures Middleware
type Options struct {
	Store               *Store
	Stats               StatsStore
	KeyFn               KeyFunc
	TrustXForwardedFor  bool
	RetryAfter          time.Duration
	AddRateLimitHeaders bool

	// OnReject writes the 429 response; Retry-After is already set.
	// Defaults to a plain-text body.
	OnReject func(w http.ResponseWriter, r *http.Request)
}

// ClientKey returns the first X-Forwarded-For address when trusted,
// otherwise the remote host.
func ClientKey(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// Middleware rejects requests over the per-client rate with 429 and a
// Retry-After header. A nil Store disables limiting.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = ClientKey(opts.TrustXForwardedFor)
	}
	if opts.OnReject == nil {
		opts.OnReject = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}
	log := logging.Named("ratelimit")

	return func(next http.Handler) http.Handler {
		if opts.Store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-RPS", strconv.FormatFloat(opts.Store.RPS(), 'f', -1, 64))
				w.Header().Set("X-RateLimit-Burst", strconv.Itoa(opts.Store.Burst()))
			}

			allowed := opts.Store.Allow(key)
			if opts.Stats != nil {
				ev := Event{Key: key, Allowed: allowed, Method: r.Method, Path: r.URL.Path, At: time.Now()}
				if err := opts.Stats.Record(r.Context(), ev); err != nil {
					log.Warn("failed to record rate limit stats", zap.Error(err))
				}
			}

			if !allowed {
				log.Debug("request throttled", zap.String("client", key), zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", strconv.Itoa(int(opts.RetryAfter.Seconds())))
				opts.OnReject(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
