package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"vidrelay/internal/core/domain"
	"vidrelay/internal/core/ports"
)

type Options struct {
	// Executable overrides the yt-dlp binary looked up on PATH.
	Executable    string
	Cookies       string
	ProxyURL      string
	SocketTimeout time.Duration
}

type ytDlpAdapter struct {
	opts Options
}

func NewYtDlpAdapter(opts Options) ports.Extractor {
	return &ytDlpAdapter{opts: opts}
}

// Internal struct to match yt-dlp JSON output
type ytDlpJSON struct {
	Type    string        `json:"_type"`
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	URL     string        `json:"url"`
	Ext     string        `json:"ext"`
	Formats []ytDlpFormat `json:"formats"`
	Entries []ytDlpJSON   `json:"entries"`
}

type ytDlpFormat struct {
	FormatID string `json:"format_id"`
	Ext      string `json:"ext"`
	VCodec   string `json:"vcodec"`
	ACodec   string `json:"acodec"`
	URL      string `json:"url"`
}

func (a *ytDlpAdapter) Name() string { return "ytdlp" }

func (a *ytDlpAdapter) Supports(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// command builds the yt-dlp invocation. --dump-single-json implies
// --skip-download, so nothing is written locally.
func (a *ytDlpAdapter) command(opts domain.ExtractOptions) *ytdlp.Command {
	cmd := ytdlp.New().
		DumpSingleJSON().
		Format(opts.PreferredFormat)

	if !opts.AllowPlaylist {
		cmd = cmd.NoPlaylist()
	}
	if opts.SuppressWarnings {
		cmd = cmd.IgnoreErrors().NoWarnings()
	}
	if a.opts.Executable != "" {
		cmd = cmd.SetExecutable(a.opts.Executable)
	}
	if a.opts.Cookies != "" {
		cmd = cmd.Cookies(a.opts.Cookies)
	}
	if a.opts.ProxyURL != "" {
		cmd = cmd.Proxy(a.opts.ProxyURL)
	}
	if a.opts.SocketTimeout > 0 {
		cmd = cmd.SocketTimeout(a.opts.SocketTimeout.Seconds())
	}
	return cmd
}

func (a *ytDlpAdapter) Extract(ctx context.Context, rawURL string, opts domain.ExtractOptions) (*domain.Extraction, error) {
	res, err := a.command(opts).Run(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("yt-dlp: %w", ctx.Err())
		}
		if notStarted(res, err) {
			return nil, domain.NewError(domain.InternalError, fmt.Errorf("yt-dlp executable: %w", err))
		}
		return nil, domain.NewError(domain.ExtractionDenied, fmt.Errorf("yt-dlp: %w", err)).
			WithDetails(failureDetail(res, err))
	}

	stdout := ""
	if res != nil {
		stdout = res.Stdout
	}
	if strings.TrimSpace(stdout) == "" {
		// --ignore-errors turns hard failures into empty output.
		return nil, domain.NewError(domain.ExtractionDenied, errors.New("yt-dlp produced no metadata")).
			WithDetails(failureDetail(res, nil))
	}
	return decode([]byte(stdout))
}

// notStarted reports failures where yt-dlp never ran. go-ytdlp flattens the
// exec error chain, so a process that never started shows up as exit code -1.
func notStarted(res *ytdlp.Result, err error) bool {
	if res == nil || res.ExitCode < 0 {
		return true
	}
	return ytdlp.IsMisconfigError(err) || errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

func decode(data []byte) (*domain.Extraction, error) {
	var info ytDlpJSON
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, domain.NewError(domain.MalformedData, fmt.Errorf("decode yt-dlp output: %w", err))
	}

	// Only reachable with playlists allowed: take the single target item.
	if info.Type == "playlist" {
		if len(info.Entries) == 0 {
			return nil, domain.NewError(domain.MalformedData, errors.New("playlist without entries"))
		}
		info = info.Entries[0]
	}

	ex := &domain.Extraction{
		Title:   info.Title,
		URL:     info.URL,
		Formats: make([]domain.Format, 0, len(info.Formats)),
	}
	for _, f := range info.Formats {
		ex.Formats = append(ex.Formats, domain.Format{
			ID:     f.FormatID,
			Ext:    f.Ext,
			ACodec: f.ACodec,
			VCodec: f.VCodec,
			URL:    f.URL,
		})
	}
	return ex, nil
}

// failureDetail prefers the last ERROR line yt-dlp printed.
func failureDetail(res *ytdlp.Result, err error) string {
	if res != nil {
		lines := strings.Split(strings.TrimSpace(res.Stderr), "\n")
		for i := len(lines) - 1; i >= 0; i-- {
			if l := strings.TrimSpace(lines[i]); strings.HasPrefix(l, "ERROR:") {
				return l
			}
		}
		if l := strings.TrimSpace(lines[len(lines)-1]); l != "" {
			return l
		}
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Install fetches a yt-dlp binary when none is available.
func Install(ctx context.Context) error {
	_, err := ytdlp.Install(ctx, nil)
	return err
}
