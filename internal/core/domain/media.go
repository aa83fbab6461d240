package domain

import (
	"strings"
	"unicode"
)

// MaxFilenameTitle caps the title part of an attachment filename, in runes.
const MaxFilenameTitle = 50

// Combined reports whether f is a single mp4 file with both tracks.
func (f Format) Combined() bool {
	return strings.EqualFold(strings.TrimSpace(f.Ext), "mp4") && hasCodec(f.ACodec) && hasCodec(f.VCodec)
}

func hasCodec(codec string) bool {
	codec = strings.TrimSpace(codec)
	return codec != "" && !strings.EqualFold(codec, "none")
}

// SelectPlayableURL picks the URL the client should stream.
// A URL already chosen by the backend wins; otherwise the first combined
// mp4 format with a URL is used.
func SelectPlayableURL(ex *Extraction) (string, error) {
	if ex == nil {
		return "", NewError(MalformedData, nil)
	}
	if u := strings.TrimSpace(ex.URL); u != "" {
		return u, nil
	}
	for _, f := range ex.Formats {
		if !f.Combined() {
			continue
		}
		if u := strings.TrimSpace(f.URL); u != "" {
			return u, nil
		}
	}
	return "", NewError(NoSuitableFormat, nil)
}

// CleanTitle makes an extracted title safe to echo back as JSON and to
// reuse later as a filename.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	return strings.ReplaceAll(title, "/", "_")
}

// AttachmentFilename builds the filename for Content-Disposition.
func AttachmentFilename(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == '"':
			return '_'
		case unicode.IsControl(r):
			return '_'
		}
		return r
	}, title)
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > MaxFilenameTitle {
		name = strings.TrimSpace(string(runes[:MaxFilenameTitle]))
	}
	if name == "" {
		name = DefaultTitle
	}
	return name + ".mp4"
}
