package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jacksonlee411/approvals/pkg/configuration"
	"github.com/jacksonlee411/approvals/pkg/routing"
)

type opsGuard struct {
	conf     *configuration.Configuration
	prefixes []string
}

// OpsGuard hides everything under the given operational prefixes in production unless
// the caller presents OPS_GUARD_TOKEN. Guarded paths answer 404 so their existence is
// not revealed.
func OpsGuard(conf *configuration.Configuration, prefixes ...string) mux.MiddlewareFunc {
	if conf == nil {
		conf = configuration.Use()
	}
	return (&opsGuard{conf: conf, prefixes: prefixes}).middleware
}

func (g *opsGuard) guarded(path string) bool {
	for _, p := range g.prefixes {
		if routing.HasPathPrefixOnBoundary(path, p) {
			return true
		}
	}
	return false
}

func (g *opsGuard) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.conf.GoAppEnvironment != configuration.Production {
			next.ServeHTTP(w, r)
			return
		}
		if !g.guarded(r.URL.Path) || g.authorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

func (g *opsGuard) authorized(r *http.Request) bool {
	token := strings.TrimSpace(g.conf.OpsGuardToken)
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(tokenFromRequest(r)), []byte(token)) == 1
}

func tokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if t := strings.TrimSpace(r.Header.Get("X-Ops-Token")); t != "" {
		return t
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return ""
}

func realIP(r *http.Request, header string) (string, bool) {
	if r == nil {
		return "", false
	}
	if header != "" {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			// X-Forwarded-For style: take the first item
			if i := strings.IndexByte(v, ','); i >= 0 {
				v = strings.TrimSpace(v[:i])
			}
			return stripPort(v)
		}
	}
	return stripPort(r.RemoteAddr)
}

func stripPort(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		return host, true
	}
	return s, true
}
