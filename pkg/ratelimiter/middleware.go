package ratelimiter

import (
	"hash/fnv"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const maxKeyLength = 64

// KeyFunc derives the bucket key of a request. An empty key skips the limit.
type KeyFunc func(r *http.Request) string

// ByClientIP keys on RemoteAddr. Put chi's RealIP middleware in front when
// the service runs behind a proxy.
func ByClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ByHost keys on the request host, which carries the studio subdomain.
func ByHost(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}

// Composite joins the non-empty keys of fns with ":" and hashes results
// longer than 64 bytes with FNV-1a.
func Composite(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		if len(parts) == 0 {
			return ""
		}
		key := strings.Join(parts, ":")
		if len(key) > maxKeyLength {
			h := fnv.New64a()
			_, _ = h.Write([]byte(key))
			return strconv.FormatUint(h.Sum64(), 36)
		}
		return key
	}
}

// ErrorHandler writes the response for a denied or failed check. err is
// ErrLimitExceeded on denial, or the store error.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware charges one token per request under scope + ":" + key and sets
// the X-RateLimit-* headers. Denied requests get a Retry-After header and are
// passed to onError with ErrLimitExceeded.
func Middleware(b *Bucket, scope string, key KeyFunc, onError ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := b.Allow(r.Context(), scope+":"+k)
			if err != nil {
				onError(w, r, err)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, res.Remaining)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				secs := int((res.RetryAfter(time.Now()) + time.Second - 1) / time.Second)
				h.Set("Retry-After", strconv.Itoa(max(1, secs)))
				onError(w, r, ErrLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
