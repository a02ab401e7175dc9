package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type recorded struct {
	method, path, contentType, body string
}

func fakeS3(t *testing.T) (*httptest.Server, *[]recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{r.Method, r.URL.Path, r.Header.Get("Content-Type"), string(body)})
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestNewUnconfigured(t *testing.T) {
	tests := []Options{
		{},
		{Endpoint: "http://s3", AccessKey: "a", SecretKey: "s"},
		{Endpoint: "http://s3", Bucket: "b"},
	}
	for _, opts := range tests {
		c, err := New(opts)
		if err != nil || c != nil {
			t.Errorf("New(%+v) = %v, %v; want nil, nil", opts, c, err)
		}
	}
}

func TestKeyAndURL(t *testing.T) {
	c, err := New(Options{Endpoint: "https://s3.example.com/", AccessKey: "a", SecretKey: "s", Bucket: "archive", Prefix: "/legal-updates/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Key("employment/a.md"); got != "legal-updates/employment/a.md" {
		t.Errorf("Key = %q", got)
	}
	if got := c.URL("employment/a.md"); got != "https://s3.example.com/archive/legal-updates/employment/a.md" {
		t.Errorf("URL = %q", got)
	}
	if c.Bucket() != "archive" {
		t.Errorf("Bucket = %q", c.Bucket())
	}
}

func TestPut(t *testing.T) {
	srv, reqs := fakeS3(t)
	c, err := New(Options{Endpoint: srv.URL, AccessKey: "a", SecretKey: "s", Bucket: "archive"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.Put(context.Background(), "employment/minimum-wage.md", []byte("# Minimum wage\n")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if len(*reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(*reqs))
	}
	got := (*reqs)[0]
	if got.method != http.MethodPut || got.path != "/archive/employment/minimum-wage.md" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	if !strings.HasPrefix(got.contentType, "text/markdown") {
		t.Errorf("Content-Type = %q", got.contentType)
	}
	if !strings.Contains(got.body, "# Minimum wage") {
		t.Errorf("body = %q", got.body)
	}
}
