package cli

import (
	"bytes"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgtext"
)

const testSVG = `<svg width="20" height="10">
	<rect width="10" height="10" fill="red"/>
	<rect id="b" x="10" width="10" height="10" fill="blue"/>
</svg>`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(newRouter(cfg, svgtext.NewShaper(), svgdoc.NopLogger()))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, query, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/render"+query, "image/svg+xml", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestServeRender(t *testing.T) {
	ts := newTestServer(t, defaultConfig())

	resp, data := post(t, ts, "", testSVG)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("unexpected content type %q", ct)
	}
	if _, err := uuid.Parse(resp.Header.Get(requestIDHeader)); err != nil {
		t.Errorf("invalid request id: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("unexpected bounds %v", b)
	}

	resp, data = post(t, ts, "?id=b&width=30", testSVG)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, data)
	}
	img, err = png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 30 {
		t.Errorf("unexpected bounds %v", b)
	}
	if r, g, b, a := img.At(15, 15).RGBA(); r != 0 || g != 0 || b != 0xFFFF || a != 0xFFFF {
		t.Errorf("expected blue, got %d %d %d %d", r, g, b, a)
	}

	resp, data = post(t, ts, "?format=pdf", testSVG)
	if resp.StatusCode != http.StatusOK || !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("unexpected PDF response %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestServeErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.MaxBodyBytes = 64
	ts := newTestServer(t, cfg)

	tests := []struct {
		name  string
		query string
		body  string
		want  int
	}{
		{"not svg", "", "<html/>", http.StatusBadRequest},
		{"malformed", "", "<svg><g></svg>", http.StatusBadRequest},
		{"bad format", "?format=gif", "<svg/>", http.StatusBadRequest},
		{"bad width", "?width=abc", "<svg/>", http.StatusBadRequest},
		{"unknown id", "?id=missing", `<svg width="1" height="1"/>`, http.StatusNotFound},
		{"too large", "", "<svg>" + strings.Repeat(" ", 100) + "</svg>", http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := post(t, ts, tt.query, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("unexpected health status %d", resp.StatusCode)
	}
}
