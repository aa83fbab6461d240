package origin

import (
	"context"
	"fmt"
	"net/http"

	"vidrelay/internal/core/domain"
	"vidrelay/internal/core/ports"
)

type httpOrigin struct {
	client *http.Client
}

// NewHTTPOrigin wraps the shared outbound client; impersonation headers
// are applied by its transport.
func NewHTTPOrigin(client *http.Client) ports.MediaOrigin {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpOrigin{client: client}
}

func (o *httpOrigin) Open(ctx context.Context, mediaURL string) (*domain.MediaStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return &domain.MediaStream{
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Body:          resp.Body,
	}, nil
}
