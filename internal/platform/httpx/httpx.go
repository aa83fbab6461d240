package httpx

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultDialTimeout   = 10 * time.Second
	defaultHeaderTimeout = 30 * time.Second
	maxRedirects         = 10
)

// Transport stamps the impersonation headers on every request before
// handing it to Base. It never retries: a failed relay is retried by the
// client in full.
type Transport struct {
	Base    http.RoundTripper
	Headers HeaderSet
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}
	// A RoundTripper must not modify the caller's request.
	r := req.Clone(req.Context())
	t.Headers.Apply(r)
	return t.Base.RoundTrip(r)
}

type Options struct {
	Headers HeaderSet
	// ProxyURL routes every outbound request through a proxy when set.
	ProxyURL string
	// HeaderTimeout bounds the wait for origin response headers.
	HeaderTimeout time.Duration
}

// NewClient builds the shared outbound client. It has no overall timeout
// so long media bodies are not cut off; dial and header waits are bounded.
func NewClient(opts Options) (*http.Client, error) {
	headerTimeout := opts.HeaderTimeout
	if headerTimeout <= 0 {
		headerTimeout = defaultHeaderTimeout
	}

	base := &http.Transport{
		Proxy: nil,
		DialContext: (&net.Dialer{
			Timeout:   defaultDialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: headerTimeout,
	}

	if p := strings.TrimSpace(opts.ProxyURL); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy url must include scheme and host")
		}
		base.Proxy = http.ProxyURL(u)
	}

	return &http.Client{
		Transport:     &Transport{Base: base, Headers: opts.Headers},
		CheckRedirect: keepReferer(opts.Headers.Referer),
	}, nil
}

// keepReferer stops net/http from replacing the Referer with the previous
// hop on redirects. The caller's own Referer wins over the configured one.
func keepReferer(referer string) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return errors.New("stopped after 10 redirects")
		}
		ref := referer
		if orig := via[0].Header.Get("Referer"); orig != "" {
			ref = orig
		}
		if ref != "" {
			req.Header.Set("Referer", ref)
		}
		return nil
	}
}
