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
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const DefaultMinSize = 512

// CompressConfig 設定回應壓縮。零值欄位在 Compression 內換成預設值。
//
//   - MinSize 小於此大小的回應直接原樣送出，負值代表一律壓縮
//   - SkipPaths 完全不經壓縮的路徑（精確比對或其子路徑）
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
	MinSize   int
	SkipPaths []string
}

// DefaultCompressConfig 回傳預設壓縮設定。
// /healthz 與 /api/vitals 回應極小或沒有內容，壓縮只會多花 CPU。
func DefaultCompressConfig() CompressConfig {
	return CompressConfig{
		GzipLevel: gzip.DefaultCompression,
		ZstdLevel: zstd.SpeedFastest,
		MinSize:   DefaultMinSize,
		SkipPaths: []string{"/healthz", "/api/vitals"},
	}
}

func (c CompressConfig) withDefaults() CompressConfig {
	d := DefaultCompressConfig()
	if c.GzipLevel == 0 {
		c.GzipLevel = d.GzipLevel
	}
	if c.ZstdLevel == 0 {
		c.ZstdLevel = d.ZstdLevel
	}
	if c.MinSize == 0 {
		c.MinSize = d.MinSize
	} else if c.MinSize < 0 {
		c.MinSize = 0
	}
	if c.SkipPaths == nil {
		c.SkipPaths = d.SkipPaths
	}
	return c
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

func isNoBodyStatus(code int) bool {
	// 204 No Content, 304 Not Modified, 1xx Informational
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

// acceptsEncoding 判斷 Accept-Encoding 是否接受 name，q=0 視為拒絕。
func acceptsEncoding(header, name string) bool {
	for _, part := range strings.Split(header, ",") {
		token, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(token), name) {
			continue
		}
		q := strings.ReplaceAll(strings.TrimSpace(params), " ", "")
		return q != "q=0" && q != "q=0.0" && q != "q=0.00" && q != "q=0.000"
	}
	return false
}

// encoder 是 gzip.Writer 與 zstd.Encoder 的共同行為。
type encoder interface {
	io.Writer
	Flush() error
	Close() error
	Reset(io.Writer)
}

// compressor 持有設定與編碼器池；每個 Compression 實例各自一份。
type compressor struct {
	cfg      CompressConfig
	gzipPool sync.Pool
	zstdPool sync.Pool
}

func (c *compressor) skip(path string) bool {
	for _, p := range c.cfg.SkipPaths {
		if path == p || strings.HasPrefix(path, strings.TrimRight(p, "/")+"/") {
			return true
		}
	}
	return false
}

func (c *compressor) zstdWriter(w io.Writer) (*zstd.Encoder, error) {
	if v := c.zstdPool.Get(); v != nil {
		zw := v.(*zstd.Encoder)
		zw.Reset(w)
		return zw, nil
	}
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(c.cfg.ZstdLevel),
		zstd.WithEncoderConcurrency(1),
	)
}

func (c *compressor) gzipWriter(w io.Writer) (*gzip.Writer, error) {
	if v := c.gzipPool.Get(); v != nil {
		gw := v.(*gzip.Writer)
		gw.Reset(w)
		return gw, nil
	}
	return gzip.NewWriterLevel(w, c.cfg.GzipLevel)
}

// acquire 依 zstd → gzip 的順序取得編碼器。
// 編碼器建立失敗時退到下一個，兩者都不可用就回傳空字串（原樣輸出）。
func (c *compressor) acquire(accept string, w io.Writer) (string, encoder, func()) {
	if acceptsEncoding(accept, "zstd") {
		if zw, err := c.zstdWriter(w); err == nil {
			return "zstd", zw, func() {
				_ = zw.Close()
				zw.Reset(io.Discard)
				c.zstdPool.Put(zw)
			}
		}
	}
	if acceptsEncoding(accept, "gzip") {
		if gw, err := c.gzipWriter(w); err == nil {
			return "gzip", gw, func() {
				_ = gw.Close()
				gw.Reset(io.Discard)
				c.gzipPool.Put(gw)
			}
		}
	}
	return "", nil, nil
}

// --- ResponseWriter Wrapper ---

// compressResponseWriter 先緩衝前 MinSize 個位元組，足夠大才決定壓縮。
type compressResponseWriter struct {
	http.ResponseWriter
	c       *compressor
	accept  string
	buf     []byte
	code    int
	decided bool
	enc     encoder // nil 代表原樣輸出
	release func()
}

func (cw *compressResponseWriter) WriteHeader(code int) {
	if cw.decided || cw.code != 0 {
		return
	}
	// 1xx（除 101 外）可以出現多次，直接轉送
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		cw.ResponseWriter.WriteHeader(code)
		return
	}
	cw.code = code
	if isNoBodyStatus(code) || cw.Header().Get("Content-Encoding") != "" {
		cw.start(false)
	}
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	if !cw.decided {
		if cw.code == 0 {
			cw.code = http.StatusOK
		}
		if cw.Header().Get("Content-Type") == "" {
			cw.Header().Set("Content-Type", http.DetectContentType(append(cw.buf, b...)))
		}
		if cw.Header().Get("Content-Encoding") != "" {
			cw.start(false)
		} else {
			cw.buf = append(cw.buf, b...)
			if len(cw.buf) < cw.c.cfg.MinSize {
				return len(b), nil
			}
			if err := cw.start(true); err != nil {
				return 0, err
			}
			return len(b), nil
		}
	}
	if cw.enc != nil {
		return cw.enc.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

// start 送出 header 並寫出緩衝內容；之後所有寫入直接進編碼器或底層。
func (cw *compressResponseWriter) start(compress bool) error {
	cw.decided = true
	if cw.code == 0 {
		cw.code = http.StatusOK
	}
	if compress {
		var name string
		name, cw.enc, cw.release = cw.c.acquire(cw.accept, cw.ResponseWriter)
		if cw.enc != nil {
			cw.Header().Del("Content-Length")
			cw.Header().Set("Content-Encoding", name)
			cw.Header().Add("Vary", "Accept-Encoding")
		}
	}
	cw.ResponseWriter.WriteHeader(cw.code)
	if len(cw.buf) == 0 {
		return nil
	}
	buf := cw.buf
	cw.buf = nil
	if cw.enc != nil {
		_, err := cw.enc.Write(buf)
		return err
	}
	_, err := cw.ResponseWriter.Write(buf)
	return err
}

// finish 在 handler 結束後寫出剩餘緩衝並歸還編碼器。
func (cw *compressResponseWriter) finish() {
	if !cw.decided {
		if cw.code == 0 && len(cw.buf) == 0 {
			return
		}
		_ = cw.start(false)
	}
	if cw.release != nil {
		cw.release()
		cw.release = nil
	}
}

func (cw *compressResponseWriter) Flush() {
	// 串流回應在第一次 Flush 時就決定壓縮
	if !cw.decided {
		_ = cw.start(true)
	}
	if cw.enc != nil {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

func (cw *compressResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// --- Middleware 入口 ---

// Compression 依 Accept-Encoding 以 zstd 或 gzip 壓縮回應。
// HEAD、websocket 升級、SkipPaths 與小於 MinSize 的回應不壓縮。
func Compression(cfg CompressConfig) func(http.Handler) http.Handler {
	c := &compressor{cfg: cfg.withDefaults()}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || isWebSocketUpgrade(r) || c.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			// 避免二次壓縮
			if w.Header().Get("Content-Encoding") != "" {
				next.ServeHTTP(w, r)
				return
			}
			accept := r.Header.Get("Accept-Encoding")
			if !acceptsEncoding(accept, "zstd") && !acceptsEncoding(accept, "gzip") {
				next.ServeHTTP(w, r)
				return
			}
			cw := &compressResponseWriter{ResponseWriter: w, c: c, accept: accept}
			next.ServeHTTP(cw, r)
			cw.finish()
		})
	}
}
