package transport

import (
	"net/http"
	"net/url"
	"strings"
)

// originChecker validates the Origin header against an allow-list of hosts.
// An empty allow-list accepts everything, which suits local development and
// non-browser clients that send no Origin at all.
type originChecker struct {
	allowed map[string]struct{}
}

func newOriginChecker(allowedHosts []string) *originChecker {
	allowed := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			allowed[h] = struct{}{}
		}
	}
	return &originChecker{allowed: allowed}
}

func (c *originChecker) check(r *http.Request) bool {
	if len(c.allowed) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin means a non-browser client; the allow-list targets
		// cross-site browser requests only.
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	_, ok := c.allowed[strings.ToLower(u.Host)]
	return ok
}
