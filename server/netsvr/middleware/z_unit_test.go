// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"
)

func TestAccessLogRecordsStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/wheels/x", nil))

	out := buf.String()
	for _, want := range []string{"http.access", "status=404", "bytes=4", "request_id=", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("request id header not set")
	}
}

func TestAccessLogKeepsWebsocketUpgrade(t *testing.T) {
	up := websocket.Upgrader{}
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	srv := httptest.NewServer(Compression(DefaultCompressConfig())(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.WriteMessage(websocket.TextMessage, []byte("hello"))
	}))))
	defer srv.Close()

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	_, msg, err := c.ReadMessage()
	if err != nil || string(msg) != "hello" {
		t.Fatalf("msg=%q err=%v", msg, err)
	}
}

func TestRecoverWritesJSON500(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("wheel fell off")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != 500 || !strings.Contains(rec.Body.String(), "internal server error") {
		t.Fatalf("code=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(buf.String(), "http.panic") {
		t.Fatalf("log=%s", buf.String())
	}
}

func TestCompressionGzip(t *testing.T) {
	body := strings.Repeat("<path d=\"M 200 200\"/>", 100)
	h := Compression(DefaultCompressConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = io.WriteString(w, body)
	}))
	req := httptest.NewRequest(http.MethodGet, "/icon.svg", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("encoding=%q", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(zr)
	if string(got) != body {
		t.Fatal("round trip mismatch")
	}
}

func TestCompressionSkipsNoContent(t *testing.T) {
	h := Compression(DefaultCompressConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodDelete, "/v1/wheels/x", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 204 || rec.Body.Len() != 0 || rec.Header().Get("Content-Encoding") != "" || rec.Header().Get("Vary") != "" {
		t.Fatalf("code=%d len=%d enc=%q", rec.Code, rec.Body.Len(), rec.Header().Get("Content-Encoding"))
	}
}

func serveCompressed(cfg CompressConfig, path, accept, body string) *httptest.ResponseRecorder {
	h := Compression(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = io.WriteString(w, body)
	}))
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept-Encoding", accept)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCompressionZstd(t *testing.T) {
	body := strings.Repeat("wheel ", 500)
	rec := serveCompressed(DefaultCompressConfig(), "/v1/wheels/x/wheel.svg", "gzip, zstd", body)
	if rec.Header().Get("Content-Encoding") != "zstd" || rec.Header().Get("Content-Length") != "" {
		t.Fatalf("headers=%v", rec.Header())
	}
	zr, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	got, _ := io.ReadAll(zr)
	if string(got) != body {
		t.Fatal("round trip mismatch")
	}
}

func TestCompressionSmallAndSkippedBodies(t *testing.T) {
	cfg := DefaultCompressConfig()
	rec := serveCompressed(cfg, "/en", "gzip", "ok")
	if rec.Header().Get("Content-Encoding") != "" || rec.Body.String() != "ok" || rec.Header().Get("Content-Length") != "2" {
		t.Fatalf("small body: enc=%q body=%q", rec.Header().Get("Content-Encoding"), rec.Body.String())
	}

	big := strings.Repeat("x", 4*DefaultMinSize)
	for _, path := range []string{"/healthz", "/api/vitals"} {
		rec := serveCompressed(cfg, path, "gzip, zstd", big)
		if rec.Header().Get("Content-Encoding") != "" || rec.Body.String() != big {
			t.Fatalf("%s should skip compression: enc=%q", path, rec.Header().Get("Content-Encoding"))
		}
	}

	cfg.MinSize = -1
	rec = serveCompressed(cfg, "/en", "gzip", "ok")
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("negative min size should always compress: %v", rec.Header())
	}
}

func TestCompressionZstdFallback(t *testing.T) {
	cfg := DefaultCompressConfig()
	cfg.ZstdLevel = zstd.EncoderLevel(99)
	body := strings.Repeat("segment ", 200)

	rec := serveCompressed(cfg, "/v1/wheels", "zstd, gzip", body)
	if rec.Code != 200 || rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("want gzip fallback, got code=%d enc=%q", rec.Code, rec.Header().Get("Content-Encoding"))
	}

	rec = serveCompressed(cfg, "/v1/wheels", "zstd", body)
	if rec.Code != 200 || rec.Header().Get("Content-Encoding") != "" || rec.Body.String() != body {
		t.Fatalf("want identity fallback, got code=%d enc=%q", rec.Code, rec.Header().Get("Content-Encoding"))
	}
}

func TestAcceptsEncoding(t *testing.T) {
	cases := []struct {
		header, name string
		want         bool
	}{
		{"gzip, deflate, br, zstd", "zstd", true},
		{"gzip;q=0.5", "gzip", true},
		{"gzip;q=0", "gzip", false},
		{"GZIP", "gzip", true},
		{"x-gzip", "gzip", false},
		{"", "gzip", false},
	}
	for _, c := range cases {
		if got := acceptsEncoding(c.header, c.name); got != c.want {
			t.Errorf("acceptsEncoding(%q, %q)=%v", c.header, c.name, got)
		}
	}
}

func TestStaticCacheAndSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(StaticCache(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/icon.svg", nil))
	if !strings.Contains(rec.Header().Get("Cache-Control"), "immutable") {
		t.Fatalf("cache=%q", rec.Header().Get("Cache-Control"))
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing nosniff")
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/wheels/x/wheel.svg", nil))
	if rec.Header().Get("Cache-Control") != "" {
		t.Fatal("dynamic wheel image must not be cached")
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/v1/geometry", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://example.com" {
		t.Fatalf("acao=%q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}
