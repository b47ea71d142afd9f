package web

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/rs/zerolog/log"
)

// AdminProxy forwards the CMS prefix to the administrative interface's own
// server. The interface itself is never served from here.
type AdminProxy struct {
	proxy *httputil.ReverseProxy
}

var _ domain.AdminGateway = (*AdminProxy)(nil)

// NewAdminGateway proxies to upstream, or answers 503 for every request when
// upstream is empty.
func NewAdminGateway(upstream string) (domain.AdminGateway, error) {
	if upstream == "" {
		return unavailableGateway{}, nil
	}
	target, err := url.Parse(upstream)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid cms upstream %q", upstream)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("CMS upstream unreachable")
			http.Error(w, "CMS unavailable", http.StatusBadGateway)
		},
	}
	return &AdminProxy{proxy: proxy}, nil
}

func (p *AdminProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.proxy.ServeHTTP(w, r)
}

func (p *AdminProxy) Available() bool {
	return true
}

type unavailableGateway struct{}

func (unavailableGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "CMS unavailable", http.StatusServiceUnavailable)
}

func (unavailableGateway) Available() bool {
	return false
}
