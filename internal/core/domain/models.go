package domain

import "io"

// DefaultTitle is used whenever a title is missing or sanitizes to nothing.
const DefaultTitle = "video"

// DefaultFormat asks for a single combined mp4 file, then any mp4, then anything.
const DefaultFormat = "best[ext=mp4][acodec!=none][vcodec!=none]/best[ext=mp4]/best"

// DefaultContentType is sent when the origin does not report one.
const DefaultContentType = "video/mp4"

type InfoRequest struct {
	URL string `json:"url"`
}

type VideoInfo struct {
	Title    string `json:"title"`
	VideoURL string `json:"video_url"`
}

type StreamRequest struct {
	URL   string
	Title string
}

// ExtractOptions is the set of knobs handed to an extraction backend.
type ExtractOptions struct {
	PreferredFormat  string
	AllowPlaylist    bool
	SuppressWarnings bool
}

// DefaultExtractOptions returns the options used by the info endpoint.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		PreferredFormat:  DefaultFormat,
		AllowPlaylist:    false,
		SuppressWarnings: true,
	}
}

// Extraction is the metadata a backend returns for a page URL.
// URL is set only when the backend already picked a single playable file.
type Extraction struct {
	Title   string
	URL     string
	Formats []Format
}

type Format struct {
	ID     string
	Ext    string
	ACodec string
	VCodec string
	URL    string
}

// MediaStream is an open origin response.
type MediaStream struct {
	StatusCode    int
	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
}

// RelayStream is what the stream endpoint writes back to the client.
type RelayStream struct {
	Filename      string
	ContentType   string
	ContentLength int64
	Body          io.ReadCloser
}
