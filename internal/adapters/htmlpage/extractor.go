package htmlpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"vidrelay/internal/core/domain"
	"vidrelay/internal/core/ports"
)

const maxPageSize = 5 << 20 // 5MB

// Candidate selectors in preference order. Each yields an attribute value.
var videoSelectors = []struct {
	sel  string
	attr string
}{
	{`meta[property="og:video:secure_url"]`, "content"},
	{`meta[property="og:video:url"]`, "content"},
	{`meta[property="og:video"]`, "content"},
	{`meta[name="twitter:player:stream"]`, "content"},
	{`video[src]`, "src"},
	{`video source[src]`, "src"},
}

// pageExtractor reads Open Graph tags and <video> elements from plain
// HTML pages. It only fetches the page itself, never the media.
type pageExtractor struct {
	client *http.Client
}

func NewPageExtractor(client *http.Client) ports.Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &pageExtractor{client: client}
}

func (p *pageExtractor) Name() string { return "html" }

func (p *pageExtractor) Supports(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (p *pageExtractor) Extract(ctx context.Context, rawURL string, _ domain.ExtractOptions) (*domain.Extraction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.NewError(domain.ExtractionDenied, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch page: %w", ctx.Err())
		}
		return nil, domain.NewError(domain.ExtractionDenied, fmt.Errorf("fetch page: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewError(domain.ExtractionDenied, fmt.Errorf("page status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, domain.NewError(domain.MalformedData, fmt.Errorf("parse page: %w", err))
	}

	base := resp.Request.URL
	return &domain.Extraction{
		Title: pageTitle(doc),
		URL:   pickVideo(doc, base),
	}, nil
}

func pageTitle(doc *goquery.Document) string {
	if t, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// pickVideo returns the first mp4 candidate, or the first candidate of
// any kind when no mp4 is present.
func pickVideo(doc *goquery.Document, base *url.URL) string {
	var candidates []string
	seen := make(map[string]bool)
	for _, vs := range videoSelectors {
		doc.Find(vs.sel).Each(func(_ int, s *goquery.Selection) {
			v, ok := s.Attr(vs.attr)
			if !ok {
				return
			}
			abs := resolve(base, v)
			if abs == "" || seen[abs] {
				return
			}
			seen[abs] = true
			candidates = append(candidates, abs)
		})
	}
	if len(candidates) == 0 {
		return ""
	}

	for _, c := range candidates {
		if isMP4(c) {
			return c
		}
	}
	return candidates[0]
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "blob:") || strings.HasPrefix(ref, "data:") {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func isMP4(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".mp4")
}
