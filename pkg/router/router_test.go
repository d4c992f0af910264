package router

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestRouter() (*Router, *bytes.Buffer) {
	var logs bytes.Buffer
	r := New()
	r.SetLogger(log.New(&logs, "", 0))
	return r, &logs
}

func reply(body string) HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte(body)) }
}

func TestRouter_Dispatch(t *testing.T) {
	r, logs := newTestRouter()
	r.GET("/api/v1/datasets", reply("list"))
	r.POST("/api/v1/datasets", reply("create"))
	r.GET("/api/v1/datasets/*/export", reply("export"))
	r.POST("/api/v1/datasets/*/join", reply("join"))
	r.GET("/api/v1/datasets/*", reply("get"))
	r.Mount("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("metrics")) }))

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/api/v1/datasets", 200, "list"},
		{http.MethodPost, "/api/v1/datasets", 200, "create"},
		{http.MethodGet, "/api/v1/datasets/7", 200, "get"},
		{http.MethodGet, "/api/v1/datasets/7/export", 200, "export"},
		{http.MethodPost, "/api/v1/datasets/7/join", 200, "join"},
		{http.MethodGet, "/metrics", 200, "metrics"},
		{http.MethodDelete, "/api/v1/datasets", 405, ""},
		{http.MethodPut, "/api/v1/datasets/7", 405, ""},
		{http.MethodGet, "/api/v1/datasets/7/unknown", 404, ""},
		{http.MethodGet, "/api/v1/datasets//export", 404, ""},
		{http.MethodGet, "/nope", 404, ""},
		{http.MethodOptions, "/api/v1/datasets/7/join", 204, ""},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("%s %s: status %d, want %d", tt.method, tt.path, rec.Code, tt.status)
		}
		if tt.body != "" && rec.Body.String() != tt.body {
			t.Errorf("%s %s: body %q, want %q", tt.method, tt.path, rec.Body.String(), tt.body)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("%s %s: missing CORS header", tt.method, tt.path)
		}
	}
	if logs.Len() == 0 {
		t.Error("requests were not logged")
	}
}

func TestRouter_ObserverSeesPattern(t *testing.T) {
	r, _ := newTestRouter()
	r.GET("/api/v1/tasks/*", reply("task"))

	var gotMethod, gotPattern string
	var gotStatus int
	r.Observe(func(method, pattern string, status int, d time.Duration) {
		gotMethod, gotPattern, gotStatus = method, pattern, status
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/tasks/abc", nil))
	if gotMethod != http.MethodGet || gotPattern != "/api/v1/tasks/*" || gotStatus != 200 {
		t.Errorf("observer got %s %s %d", gotMethod, gotPattern, gotStatus)
	}
}

func TestMatchWildcardRoute(t *testing.T) {
	tests := []struct {
		path, pattern string
		want          bool
	}{
		{"/a/1/b", "/a/*/b", true},
		{"/a/1", "/a/*", true},
		{"/a/1/b", "/a/*", false},
		{"/a", "/a/*", false},
		{"/a/1/c", "/a/*/b", false},
	}
	for _, tt := range tests {
		if got := matchWildcardRoute(tt.path, tt.pattern); got != tt.want {
			t.Errorf("matchWildcardRoute(%q, %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
		}
	}
}

func TestRouter_MountMatchesWholeSegments(t *testing.T) {
	r, _ := newTestRouter()
	mounted := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("mounted")) })
	r.Mount("/metrics", mounted)
	r.Mount("/swagger/", mounted)

	tests := []struct {
		path   string
		status int
	}{
		{"/metrics", 200},
		{"/metrics/extra", 200},
		{"/metricsfoo", 404},
		{"/swagger/", 200},
		{"/swagger/index.html", 200},
		{"/swagger", 404},
		{"/swaggerx", 404},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("GET %s: status %d, want %d", tt.path, rec.Code, tt.status)
		}
	}
}

func TestRouter_MethodRegistration(t *testing.T) {
	r, _ := newTestRouter()
	r.PUT("/api/v1/items/*", reply("put"))
	r.PATCH("/api/v1/items/*", reply("patch"))
	r.DELETE("/api/v1/items/*", reply("delete"))

	if len(r.Routes()) != 3 {
		t.Errorf("got %d routes, want 3", len(r.Routes()))
	}
	if len(r.Paths()) != 1 || !r.Paths()["/api/v1/items/*"] {
		t.Errorf("unexpected paths %v", r.Paths())
	}

	for method, want := range map[string]string{
		http.MethodPut:    "put",
		http.MethodPatch:  "patch",
		http.MethodDelete: "delete",
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, "/api/v1/items/3", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Errorf("%s: %d %q, want %q", method, rec.Code, rec.Body.String(), want)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items/3", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status %d, want 405", rec.Code)
	}
}
