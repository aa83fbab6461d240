package youtube

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/kkdai/youtube/v2"

	"vidrelay/internal/core/domain"
	"vidrelay/internal/core/ports"
)

var youtubeHosts = []string{
	"youtube.com",
	"youtu.be",
	"youtube-nocookie.com",
}

// youtubeRepo extracts YouTube metadata natively, without yt-dlp.
// It always resolves a single video; playlist parameters are ignored.
type youtubeRepo struct {
	client *youtube.Client
}

func NewYouTubeRepository(httpClient *http.Client) ports.Extractor {
	return &youtubeRepo{
		client: &youtube.Client{HTTPClient: httpClient},
	}
}

func (r *youtubeRepo) Name() string { return "youtube" }

func (r *youtubeRepo) Supports(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range youtubeHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func (r *youtubeRepo) Extract(ctx context.Context, rawURL string, _ domain.ExtractOptions) (*domain.Extraction, error) {
	video, err := r.client.GetVideoContext(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("youtube: %w", ctx.Err())
		}
		return nil, domain.NewError(domain.ExtractionDenied, fmt.Errorf("youtube: %w", err))
	}

	ex := &domain.Extraction{
		Title:   video.Title,
		Formats: make([]domain.Format, 0, len(video.Formats)),
	}
	picked := -1
	for i := range video.Formats {
		f := toFormat(&video.Formats[i])
		if picked < 0 && f.Combined() {
			picked = i
		}
		ex.Formats = append(ex.Formats, f)
	}
	if picked < 0 {
		return ex, nil
	}

	// Ciphered formats carry no URL until the signature is solved.
	streamURL, err := r.client.GetStreamURLContext(ctx, video, &video.Formats[picked])
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("youtube stream url: %w", ctx.Err())
		}
		return nil, domain.NewError(domain.ExtractionDenied, fmt.Errorf("youtube stream url: %w", err))
	}
	ex.Formats[picked].URL = streamURL
	return ex, nil
}

// toFormat maps a MIME type like `video/mp4; codecs="avc1.42001E, mp4a.40.2"`.
func toFormat(f *youtube.Format) domain.Format {
	out := domain.Format{
		ID:     fmt.Sprint(f.ItagNo),
		ACodec: "none",
		VCodec: "none",
		URL:    f.URL,
	}

	mediaType, params, err := mime.ParseMediaType(f.MimeType)
	if err != nil {
		return out
	}
	kind, sub, _ := strings.Cut(mediaType, "/")
	out.Ext = sub
	if kind == "audio" && sub == "mp4" {
		out.Ext = "m4a"
	}

	var codecs []string
	for _, c := range strings.Split(params["codecs"], ",") {
		if c = strings.TrimSpace(c); c != "" {
			codecs = append(codecs, c)
		}
	}

	switch kind {
	case "video":
		if len(codecs) > 0 {
			out.VCodec = codecs[0]
		} else {
			out.VCodec = "unknown"
		}
		if f.AudioChannels > 0 {
			out.ACodec = "unknown"
			if len(codecs) > 1 {
				out.ACodec = codecs[1]
			}
		}
	case "audio":
		out.ACodec = "unknown"
		if len(codecs) > 0 {
			out.ACodec = codecs[0]
		}
	}
	return out
}
