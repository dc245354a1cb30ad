package gateway

import (
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"sync"

	"kernelgate/internal/settings"
	"kernelgate/internal/supervisor"
)

// StateSource reports the endpoint of the running kernel, if any. Implemented
// by the supervisor.
type StateSource interface {
	Active() (supervisor.Endpoint, bool)
}

// Gateway forwards HTTP and WebSocket traffic to the running kernel. It never
// waits for a start in flight: requests against a stopped kernel fail
// immediately.
type Gateway struct {
	state StateSource
	cfg   settings.ProxySettings
	log   *slog.Logger

	mu     sync.Mutex
	proxy  *httputil.ReverseProxy
	target supervisor.Endpoint
}

func New(state StateSource, cfg settings.ProxySettings, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{state: state, cfg: cfg, log: log}
}

// HandleRequest proxies one HTTP request to the kernel. A nil server state
// here is a sequencing bug in the caller, answered defensively with 500.
func (g *Gateway) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ep, ok := g.state.Active()
	if !ok {
		g.log.Error("proxy request with no kernel running", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "kernel not running", http.StatusInternalServerError)
		return
	}
	g.proxyFor(g.resolveTarget(ep)).ServeHTTP(w, r)
}

// resolveTarget applies the configured proxy override: an intermediary host
// or port takes precedence over the spawn address.
func (g *Gateway) resolveTarget(ep supervisor.Endpoint) supervisor.Endpoint {
	if g.cfg.TargetHost != "" {
		ep.Host = g.cfg.TargetHost
	}
	if g.cfg.TargetPort > 0 {
		ep.Port = g.cfg.TargetPort
	}
	return ep
}

// proxyFor returns the reverse proxy bound to target, rebuilding it only when
// the target changes (a restart may come up on a different port).
func (g *Gateway) proxyFor(target supervisor.Endpoint) *httputil.ReverseProxy {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.proxy != nil && g.target == target {
		return g.proxy
	}
	u := &url.URL{Scheme: "http", Host: net.JoinHostPort(target.Host, strconv.Itoa(target.Port))}
	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ModifyResponse = func(resp *http.Response) error {
		origin := ""
		if resp.Request != nil {
			origin = resp.Request.Header.Get("Origin")
		}
		rewriteCORS(resp.Header, origin, g.cfg.AllowedOrigins)
		return nil
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		g.log.Error("proxy request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		http.Error(w, "kernel request failed", http.StatusInternalServerError)
	}
	g.proxy = proxy
	g.target = target
	return proxy
}
