package release

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{a: "v0.3.0", b: "0.3.0", want: 0},
		{a: "0.3.0", b: "v0.4.0", want: -1},
		{a: "1.0.0", b: "0.9.9", want: 1},
		{a: "v1.2.10", b: "v1.2.9", want: 1},
		{a: "1.2.3-rc1", b: "1.2.3", want: 0},
		{a: "dev", b: "1.0.0", want: 0},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Fatalf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	if !Valid("v0.3.0") {
		t.Fatalf("expected v0.3.0 to be valid")
	}
	if Valid("0.3") {
		t.Fatalf("expected 0.3 to be invalid")
	}
}

func TestLatestTag(t *testing.T) {
	t.Parallel()

	seen := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Clone(context.Background())
		_, _ = io.WriteString(w, `{"tag_name": " v0.4.1 "}`)
	}))
	defer srv.Close()

	c := &Checker{HTTPClient: srv.Client(), APIBase: srv.URL}
	tag, err := c.LatestTag(context.Background(), "acme/tool")
	if err != nil {
		t.Fatalf("LatestTag() error = %v", err)
	}
	if tag != "v0.4.1" {
		t.Fatalf("tag = %q, want v0.4.1", tag)
	}
	r := <-seen
	if r.URL.Path != "/repos/acme/tool/releases/latest" {
		t.Fatalf("path = %q", r.URL.Path)
	}
	if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
		t.Fatalf("accept = %q", got)
	}
}

func TestLatestTagErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{}`},
		{name: "missing tag", status: http.StatusOK, body: `{"name": "x"}`},
		{name: "bad json", status: http.StatusOK, body: `<html>`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := &Checker{HTTPClient: srv.Client(), APIBase: srv.URL}
			if _, err := c.LatestTag(context.Background(), "acme/tool"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
