package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vidrelay/internal/core/domain"
	"vidrelay/internal/core/ports"
)

type resolverService struct {
	extractor ports.Extractor
	opts      domain.ExtractOptions
	timeout   time.Duration
	log       *slog.Logger
}

// NewResolverService builds the info resolver. A zero timeout leaves
// extraction bounded only by the request context.
func NewResolverService(ex ports.Extractor, opts domain.ExtractOptions, timeout time.Duration, log *slog.Logger) ports.InfoResolver {
	if opts.PreferredFormat == "" {
		opts.PreferredFormat = domain.DefaultFormat
	}
	if log == nil {
		log = slog.Default()
	}
	return &resolverService{
		extractor: ex,
		opts:      opts,
		timeout:   timeout,
		log:       log,
	}
}

func (s *resolverService) Resolve(ctx context.Context, rawURL string) (*domain.VideoInfo, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, domain.NewError(domain.MissingInput, nil)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	ex, err := s.extractor.Extract(ctx, rawURL, s.opts)
	if err != nil {
		return nil, classifyExtractError(ctx, err)
	}
	if ex == nil {
		return nil, domain.NewError(domain.MalformedData, errors.New("extractor returned no data"))
	}

	videoURL, err := domain.SelectPlayableURL(ex)
	if err != nil {
		return nil, err
	}

	s.log.Debug("Resolved video",
		"extractor", s.extractor.Name(),
		"formats", len(ex.Formats),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return &domain.VideoInfo{
		Title:    domain.CleanTitle(ex.Title),
		VideoURL: videoURL,
	}, nil
}

func classifyExtractError(ctx context.Context, err error) error {
	var e *domain.Error
	if errors.As(err, &e) {
		if e.Details == "" && e.Kind != domain.InternalError {
			e.Details = detailOf(e)
		}
		return e
	}
	if ctx.Err() != nil {
		return domain.NewError(domain.InternalError, fmt.Errorf("extraction timed out: %w", err)).
			WithDetails(ctx.Err().Error())
	}
	return domain.NewError(domain.InternalError, err).WithDetails(err.Error())
}

func detailOf(e *domain.Error) string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
