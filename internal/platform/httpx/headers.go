package httpx

import "net/http"

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	DefaultReferer   = "https://www.youtube.com/"
)

// HeaderSet is the browser impersonation header set sent with every
// outbound request. Site-specific values such as Referer come from config.
type HeaderSet struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
	Referer        string
}

// BrowserHeaders returns the desktop-browser header set. Empty arguments
// fall back to the defaults.
func BrowserHeaders(userAgent, referer string) HeaderSet {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if referer == "" {
		referer = DefaultReferer
	}
	return HeaderSet{
		UserAgent:      userAgent,
		Accept:         "*/*",
		AcceptLanguage: "en-US,en;q=0.9",
		Referer:        referer,
	}
}

// Apply sets every header of the set that r does not already carry.
func (h HeaderSet) Apply(r *http.Request) {
	setDefault(r.Header, "User-Agent", h.UserAgent)
	setDefault(r.Header, "Accept", h.Accept)
	setDefault(r.Header, "Accept-Language", h.AcceptLanguage)
	setDefault(r.Header, "Referer", h.Referer)
}

func setDefault(hdr http.Header, key, value string) {
	if value == "" || hdr.Get(key) != "" {
		return
	}
	hdr.Set(key, value)
}
