package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/lrstanley/go-ytdlp"

	"vidrelay/internal/core/domain"
)

func TestDecode_Video(t *testing.T) {
	data := []byte(`{
		"id": "abc",
		"title": "Demo clip",
		"formats": [
			{"format_id": "251", "ext": "webm", "acodec": "opus", "vcodec": "none", "url": "A"},
			{"format_id": "18", "ext": "mp4", "acodec": "mp4a.40.2", "vcodec": "avc1.42001E", "url": "X"}
		]
	}`)

	ex, err := decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.Title != "Demo clip" || ex.URL != "" {
		t.Fatalf("unexpected extraction %+v", ex)
	}
	if len(ex.Formats) != 2 || ex.Formats[1].ID != "18" || !ex.Formats[1].Combined() {
		t.Fatalf("unexpected formats %+v", ex.Formats)
	}
	u, err := domain.SelectPlayableURL(ex)
	if err != nil || u != "X" {
		t.Fatalf("expected X, got %q (%v)", u, err)
	}
}

func TestDecode_TopLevelURL(t *testing.T) {
	ex, err := decode([]byte(`{"title":"t","url":"https://cdn/v.mp4","ext":"mp4"}`))
	if err != nil {
		t.Fatal(err)
	}
	if ex.URL != "https://cdn/v.mp4" {
		t.Fatalf("unexpected url %q", ex.URL)
	}
}

func TestDecode_PlaylistTakesFirstEntry(t *testing.T) {
	ex, err := decode([]byte(`{"_type":"playlist","title":"list","entries":[{"title":"first","url":"U1"},{"title":"second","url":"U2"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if ex.Title != "first" || ex.URL != "U1" {
		t.Fatalf("unexpected entry %+v", ex)
	}

	_, err = decode([]byte(`{"_type":"playlist","entries":[]}`))
	if domain.KindOf(err) != domain.MalformedData {
		t.Fatalf("expected MalformedData, got %v", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := decode([]byte(`{"title": `))
	if domain.KindOf(err) != domain.MalformedData {
		t.Fatalf("expected MalformedData, got %v", err)
	}
}

func TestFailureDetail(t *testing.T) {
	res := &ytdlp.Result{Stderr: "WARNING: something\nERROR: [youtube] abc: Private video\n"}
	if got := failureDetail(res, nil); got != "ERROR: [youtube] abc: Private video" {
		t.Fatalf("unexpected detail %q", got)
	}
	if got := failureDetail(nil, errors.New("exit status 1")); got != "exit status 1" {
		t.Fatalf("unexpected detail %q", got)
	}
}

func TestSupports(t *testing.T) {
	a := NewYtDlpAdapter(Options{})
	if !a.Supports("https://vimeo.com/1") || a.Supports("file:///etc/passwd") || a.Supports("not a url") {
		t.Fatal("unexpected Supports result")
	}
}

// fakeYtDlp writes a shell script standing in for yt-dlp. It records its
// arguments one per line and replies with stdout, stderr and exit code.
func fakeYtDlp(t *testing.T, stdout, stderr string, code int) (exe, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script executable")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	exe = filepath.Join(dir, "yt-dlp")
	script := "#!/bin/sh\n" +
		"for a in \"$@\"; do printf '%s\\n' \"$a\"; done > '" + argsFile + "'\n" +
		"cat <<'EOF_OUT'\n" + stdout + "\nEOF_OUT\n" +
		"cat >&2 <<'EOF_ERR'\n" + stderr + "\nEOF_ERR\n" +
		"exit " + strconv.Itoa(code) + "\n"
	if err := os.WriteFile(exe, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return exe, argsFile
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("yt-dlp was not invoked: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(b)), "\n")
}

func TestExtract_Invocation(t *testing.T) {
	exe, argsFile := fakeYtDlp(t, `{"title":"Clip","formats":[{"format_id":"18","ext":"mp4","acodec":"mp4a","vcodec":"avc1","url":"X"}]}`, "", 0)
	a := NewYtDlpAdapter(Options{Executable: exe})

	ex, err := a.Extract(context.Background(), "https://example.com/watch?v=1", domain.DefaultExtractOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.Title != "Clip" || len(ex.Formats) != 1 || ex.Formats[0].URL != "X" {
		t.Fatalf("unexpected extraction %+v", ex)
	}

	args := readArgs(t, argsFile)
	for _, want := range []string{"--dump-single-json", "--no-playlist", "--ignore-errors", "--no-warnings"} {
		if !slices.Contains(args, want) {
			t.Errorf("missing flag %s in %q", want, args)
		}
	}
	i := slices.Index(args, "--format")
	if i < 0 || i+1 >= len(args) || args[i+1] != domain.DefaultFormat {
		t.Errorf("expected --format %s in %q", domain.DefaultFormat, args)
	}
	if args[len(args)-1] != "https://example.com/watch?v=1" {
		t.Errorf("expected url as last argument, got %q", args)
	}
}

func TestExtract_PlaylistAllowed(t *testing.T) {
	exe, argsFile := fakeYtDlp(t, `{"title":"t","url":"U"}`, "", 0)
	opts := domain.DefaultExtractOptions()
	opts.AllowPlaylist = true
	opts.SuppressWarnings = false

	if _, err := NewYtDlpAdapter(Options{Executable: exe}).Extract(context.Background(), "https://example.com/v", opts); err != nil {
		t.Fatal(err)
	}
	args := readArgs(t, argsFile)
	for _, unwanted := range []string{"--no-playlist", "--ignore-errors", "--no-warnings"} {
		if slices.Contains(args, unwanted) {
			t.Errorf("unexpected flag %s in %q", unwanted, args)
		}
	}
}

func TestExtract_Failures(t *testing.T) {
	cases := []struct {
		name    string
		stdout  string
		stderr  string
		code    int
		kind    domain.Kind
		details string
	}{
		{
			name:    "process failure",
			stderr:  "ERROR: [generic] Unsupported URL",
			code:    1,
			kind:    domain.ExtractionDenied,
			details: "ERROR: [generic] Unsupported URL",
		},
		{
			name:    "empty output",
			stderr:  "WARNING: skipped",
			kind:    domain.ExtractionDenied,
			details: "WARNING: skipped",
		},
		{
			name:   "bad json",
			stdout: `{"title": `,
			kind:   domain.MalformedData,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exe, _ := fakeYtDlp(t, tc.stdout, tc.stderr, tc.code)
			_, err := NewYtDlpAdapter(Options{Executable: exe}).Extract(context.Background(), "https://example.com/v", domain.DefaultExtractOptions())
			e := domain.AsError(err)
			if e.Kind != tc.kind {
				t.Fatalf("expected %s, got %v", tc.kind, err)
			}
			if tc.details != "" && e.Details != tc.details {
				t.Fatalf("expected details %q, got %q", tc.details, e.Details)
			}
		})
	}
}

func TestExtract_MissingExecutable(t *testing.T) {
	a := NewYtDlpAdapter(Options{Executable: "/nonexistent/yt-dlp"})
	_, err := a.Extract(context.Background(), "https://example.com/v", domain.DefaultExtractOptions())
	if domain.KindOf(err) != domain.InternalError {
		t.Fatalf("expected InternalError, got %v", err)
	}
}

func TestNotStarted(t *testing.T) {
	if !notStarted(nil, errors.New("exec: no command")) {
		t.Fatal("nil result means the process never ran")
	}
	if !notStarted(&ytdlp.Result{ExitCode: -1}, errors.New("fork/exec")) {
		t.Fatal("negative exit code means the process never ran")
	}
	if notStarted(&ytdlp.Result{ExitCode: 1}, errors.New("exit status 1")) {
		t.Fatal("a non-zero exit is a yt-dlp failure")
	}
}
