package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSelectPlayableURL(t *testing.T) {
	cases := []struct {
		name string
		ex   *Extraction
		want string
		kind Kind
	}{
		{
			name: "top-level url wins",
			ex: &Extraction{
				URL:     "https://cdn.example/top.mp4",
				Formats: []Format{{Ext: "mp4", ACodec: "aac", VCodec: "h264", URL: "X"}},
			},
			want: "https://cdn.example/top.mp4",
		},
		{
			name: "first combined mp4",
			ex: &Extraction{Formats: []Format{
				{Ext: "webm", ACodec: "opus", VCodec: "vp9", URL: "W"},
				{Ext: "mp4", ACodec: "aac", VCodec: "h264", URL: "X"},
				{Ext: "mp4", ACodec: "aac", VCodec: "h264", URL: "Y"},
			}},
			want: "X",
		},
		{
			name: "audio-only and video-only are skipped",
			ex: &Extraction{Formats: []Format{
				{Ext: "mp4", ACodec: "none", VCodec: "h264", URL: "V"},
				{Ext: "m4a", ACodec: "aac", VCodec: "none", URL: "A"},
				{Ext: "mp4", ACodec: "", VCodec: "h264", URL: "E"},
			}},
			kind: NoSuitableFormat,
		},
		{
			name: "combined without url is skipped",
			ex: &Extraction{Formats: []Format{
				{Ext: "mp4", ACodec: "aac", VCodec: "h264"},
			}},
			kind: NoSuitableFormat,
		},
		{
			name: "no formats",
			ex:   &Extraction{},
			kind: NoSuitableFormat,
		},
		{
			name: "nil extraction",
			kind: MalformedData,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SelectPlayableURL(tc.ex)
			if tc.kind != "" {
				if KindOf(err) != tc.kind {
					t.Fatalf("expected %s, got %v", tc.kind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCleanTitle(t *testing.T) {
	if got := CleanTitle(""); got != DefaultTitle {
		t.Fatalf("expected default title, got %q", got)
	}
	if got := CleanTitle("  AC/DC / Live  "); got != "AC_DC _ Live" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestAttachmentFilename(t *testing.T) {
	titles := []string{
		"",
		"short",
		strings.Repeat("a/b", 40),
		"../../etc/passwd",
		`quote"inject` + "\r\nX-Evil: 1",
		strings.Repeat("é/", 60),
		strings.Repeat("/", 80),
	}
	for _, title := range titles {
		name := AttachmentFilename(title)
		if !strings.HasSuffix(name, ".mp4") {
			t.Errorf("%q: missing .mp4 suffix in %q", title, name)
		}
		if n := utf8.RuneCountInString(name); n > MaxFilenameTitle+len(".mp4") {
			t.Errorf("%q: filename has %d runes", title, n)
		}
		if strings.ContainsAny(name, "/\\\"\r\n") {
			t.Errorf("%q: unsafe characters left in %q", title, name)
		}
	}

	if got := AttachmentFilename(""); got != "video.mp4" {
		t.Fatalf("expected video.mp4, got %q", got)
	}
	if got := AttachmentFilename("My Clip"); got != "My Clip.mp4" {
		t.Fatalf("expected My Clip.mp4, got %q", got)
	}
}
