package ports

import (
	"context"

	"vidrelay/internal/core/domain"
)

// InfoResolver turns a page URL into a playable URL and title.
type InfoResolver interface {
	Resolve(ctx context.Context, rawURL string) (*domain.VideoInfo, error)
}

// StreamRelay opens an origin media URL for relaying to the client.
type StreamRelay interface {
	Open(ctx context.Context, req domain.StreamRequest) (*domain.RelayStream, error)
}

// Extractor is a video-extraction backend. Extract must not download media.
type Extractor interface {
	Name() string
	Supports(rawURL string) bool
	Extract(ctx context.Context, rawURL string, opts domain.ExtractOptions) (*domain.Extraction, error)
}

// MediaOrigin issues the outbound GET for a media URL.
// The returned stream's Body is open for any status and must be closed.
type MediaOrigin interface {
	Open(ctx context.Context, mediaURL string) (*domain.MediaStream, error)
}
