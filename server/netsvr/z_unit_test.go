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


package netsvr

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSetTimeouts(t *testing.T) {
	c := NewChiServer(":0")
	write, idle := c.server.WriteTimeout, c.server.IdleTimeout
	c.SetTimeouts(3*time.Second, 0, -1)
	if c.server.ReadTimeout != 3*time.Second {
		t.Fatalf("read=%v", c.server.ReadTimeout)
	}
	if c.server.WriteTimeout != write || c.server.IdleTimeout != idle {
		t.Fatalf("non-positive values should keep defaults: %v %v", c.server.WriteTimeout, c.server.IdleTimeout)
	}
	if !c.Ready() {
		t.Fatal("adapter should stay ready")
	}
}

func TestNotFoundAndGroup(t *testing.T) {
	c := NewChiServer(":0")
	c.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	c.Group("/v1", func(r NetRouter) {
		r.Get("/ping/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(URLParam(r, "id")))
		})
	})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping/7", nil))
	if rec.Code != 200 || rec.Body.String() != "7" {
		t.Fatalf("group route: %d %q", rec.Code, rec.Body.String())
	}
	rec = httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope/deeper", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("not found handler: %d", rec.Code)
	}
}
