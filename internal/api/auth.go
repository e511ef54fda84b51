package api

import (
	"crypto/subtle"
	"net"
	"net/http"

	"umrahdesk/internal/config"
)

// HTTPAuth validates API keys and applies a per-client rate limit. When auth
// is disabled requests pass through but are still rate limited by remote
// host.
type HTTPAuth struct {
	cfg     config.APIConfig
	limiter *clientLimiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	return &HTTPAuth{
		cfg:     cfg,
		limiter: newClientLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// healthz остаётся открытым для проб
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		clientName, ok := a.checkAuth(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}

		if !a.limiter.Allow(a.clientKey(r, clientName)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) checkAuth(r *http.Request) (string, bool) {
	if !a.cfg.Auth.Enabled {
		return "", true
	}

	presented := r.Header.Get(a.cfg.Auth.HeaderAPIKey)
	if presented == "" {
		return "", false
	}

	for _, client := range a.cfg.Auth.APIKeys {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(client.Key)) == 1 {
			return client.Name, true
		}
	}
	return "", false
}

// clientKey picks the rate-limit bucket: the named API client when known,
// otherwise the remote host.
func (a *HTTPAuth) clientKey(r *http.Request, clientName string) string {
	if clientName != "" {
		return clientName
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
