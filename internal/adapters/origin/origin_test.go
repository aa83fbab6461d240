package origin

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidrelay/internal/platform/httpx"
)

func TestOpen_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/media", http.StatusFound)
	})
	mux.HandleFunc("/media", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/webm")
		_, _ = io.WriteString(w, "bytes")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ms, err := NewHTTPOrigin(srv.Client()).Open(context.Background(), srv.URL+"/start")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer ms.Body.Close()

	if ms.StatusCode != http.StatusOK || ms.ContentType != "video/webm" {
		t.Fatalf("unexpected stream %+v", ms)
	}
	b, _ := io.ReadAll(ms.Body)
	if string(b) != "bytes" {
		t.Fatalf("unexpected body %q", b)
	}
}

func TestOpen_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	if _, err := NewHTTPOrigin(nil).Open(context.Background(), addr); err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestOpen_RedirectKeepsBrowserReferer(t *testing.T) {
	var mediaReferer string
	mux := http.NewServeMux()
	mux.HandleFunc("/signed", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/cdn/v.mp4", http.StatusFound)
	})
	mux.HandleFunc("/cdn/v.mp4", func(w http.ResponseWriter, r *http.Request) {
		mediaReferer = r.Referer()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := httpx.NewClient(httpx.Options{Headers: httpx.BrowserHeaders("", "https://www.youtube.com/")})
	if err != nil {
		t.Fatal(err)
	}
	ms, err := NewHTTPOrigin(client).Open(context.Background(), srv.URL+"/signed?sig=secret")
	if err != nil {
		t.Fatal(err)
	}
	ms.Body.Close()

	if mediaReferer != "https://www.youtube.com/" {
		t.Fatalf("unexpected Referer on redirected hop %q", mediaReferer)
	}
}
