package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"vidrelay/internal/core/domain"
	"vidrelay/internal/core/ports"
)

type relayService struct {
	origin ports.MediaOrigin
}

func NewRelayService(origin ports.MediaOrigin) ports.StreamRelay {
	return &relayService{origin: origin}
}

func (s *relayService) Open(ctx context.Context, req domain.StreamRequest) (*domain.RelayStream, error) {
	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		return nil, domain.NewError(domain.MissingInput, nil)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, domain.NewError(domain.MissingInput, fmt.Errorf("invalid media url %q", raw)).
			WithMessage("Invalid URL")
	}

	media, err := s.origin.Open(ctx, u.String())
	if err != nil {
		return nil, domain.NewError(domain.StreamingError, err)
	}
	if media == nil || media.Body == nil {
		return nil, domain.NewError(domain.StreamingError, errors.New("origin returned no body"))
	}

	switch {
	case media.StatusCode == http.StatusForbidden:
		media.Body.Close()
		return nil, domain.NewError(domain.OriginForbidden, fmt.Errorf("origin status %d", media.StatusCode))
	case media.StatusCode != http.StatusOK:
		media.Body.Close()
		e := domain.OriginStatusError(media.StatusCode)
		e.Err = fmt.Errorf("origin status %d", media.StatusCode)
		return nil, e
	}

	contentType := strings.TrimSpace(media.ContentType)
	if contentType == "" {
		contentType = domain.DefaultContentType
	}

	return &domain.RelayStream{
		Filename:      domain.AttachmentFilename(req.Title),
		ContentType:   contentType,
		ContentLength: media.ContentLength,
		Body:          media.Body,
	}, nil
}
