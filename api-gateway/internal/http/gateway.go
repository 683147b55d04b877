package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/fjod/ecomart/pkg/auth"
	"github.com/fjod/ecomart/pkg/circuitbreaker"
	"github.com/fjod/ecomart/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Upstream is one backend reachable under Prefix. The full request path is
// forwarded, so the backend serves the same prefix.
type Upstream struct {
	Name   string
	Prefix string
	Target string
	// Protected routes are rejected at the edge without a valid token.
	Protected bool
}

type route struct {
	upstream Upstream
	breaker  *circuitbreaker.Transport
	proxy    *httputil.ReverseProxy
}

type Gateway struct {
	routes   []route
	verifier *auth.Verifier
	log      zerolog.Logger
}

// NewGateway builds one proxy per upstream. verifier may be nil, in which
// case tokens are checked only by the services.
func NewGateway(upstreams []Upstream, verifier *auth.Verifier, next http.RoundTripper, log zerolog.Logger) (*Gateway, error) {
	if next == nil {
		next = http.DefaultTransport
	}
	g := &Gateway{verifier: verifier, log: log}
	for _, u := range upstreams {
		target, err := url.Parse(u.Target)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("upstream %s: invalid target %q", u.Name, u.Target)
		}
		breaker := circuitbreaker.NewTransport(otelhttp.NewTransport(next), circuitbreaker.DefaultSettings(u.Name), log)
		g.routes = append(g.routes, route{
			upstream: u,
			breaker:  breaker,
			proxy: &httputil.ReverseProxy{
				Rewrite: func(pr *httputil.ProxyRequest) {
					pr.SetURL(target)
					pr.SetXForwarded()
					if id := middleware.GetReqID(pr.In.Context()); id != "" {
						pr.Out.Header.Set(middleware.RequestIDHeader, id)
					}
				},
				Transport:    breaker,
				ErrorHandler: g.proxyError(u.Name),
			},
		})
	}
	return g, nil
}

// Routes mounts every upstream under its prefix.
func (g *Gateway) Routes(r chi.Router) {
	for _, rt := range g.routes {
		r.Route(rt.upstream.Prefix, func(r chi.Router) {
			if rt.upstream.Protected && g.verifier != nil {
				r.Use(auth.Middleware(g.verifier))
			}
			r.Handle("/*", rt.proxy)
			r.Handle("/", rt.proxy)
		})
	}
	r.Get("/health/upstreams", g.Health)
}

type upstreamHealth struct {
	Name    string `json:"name"`
	Prefix  string `json:"prefix"`
	Breaker string `json:"breaker"`
}

// Health reports breaker states without calling the upstreams.
func (g *Gateway) Health(w http.ResponseWriter, r *http.Request) {
	out := make([]upstreamHealth, len(g.routes))
	status := http.StatusOK
	for i, rt := range g.routes {
		st := rt.breaker.State()
		if st == gobreaker.StateOpen {
			status = http.StatusServiceUnavailable
		}
		out[i] = upstreamHealth{Name: rt.upstream.Name, Prefix: rt.upstream.Prefix, Breaker: st.String()}
	}
	httpx.RespondJSON(w, r, status, out)
}

func (g *Gateway) proxyError(name string) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		var srvErr *circuitbreaker.ServerError
		log := zerolog.Ctx(r.Context())
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			httpx.RespondError(w, r, http.StatusServiceUnavailable, "service_unavailable", name+" is unavailable")
		case errors.As(err, &srvErr):
			log.Warn().Str("upstream", name).Int("status", srvErr.StatusCode).Msg("upstream server error")
			httpx.RespondError(w, r, http.StatusBadGateway, "upstream_error", name+" failed to handle the request")
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			httpx.RespondError(w, r, http.StatusGatewayTimeout, "timeout", "request timed out")
		default:
			log.Error().Err(err).Str("upstream", name).Msg("proxy request failed")
			httpx.RespondError(w, r, http.StatusBadGateway, "upstream_error", name+" is unreachable")
		}
	}
}
