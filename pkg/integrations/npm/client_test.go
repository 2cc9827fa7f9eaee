package npm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/buildsync/pkg/cache"
	"github.com/matzehuels/buildsync/pkg/integrations"
)

func newRegistry(t *testing.T, handler http.HandlerFunc) (*Client, *int) {
	t.Helper()
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewClient(c, time.Hour, server.URL+"/"), &hits
}

func TestLatestVersion(t *testing.T) {
	client, hits := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/-/package/lodash/dist-tags" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"latest":"4.17.21","next":"5.0.0-beta"}`))
	})

	ctx := context.Background()
	v, err := client.LatestVersion(ctx, "lodash", false)
	if err != nil {
		t.Fatalf("LatestVersion() error: %v", err)
	}
	if v != "4.17.21" {
		t.Errorf("LatestVersion() = %q, want %q", v, "4.17.21")
	}

	if _, err := client.LatestVersion(ctx, "lodash", false); err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if *hits != 1 {
		t.Errorf("registry hits = %d, want 1 (second lookup cached)", *hits)
	}
}

func TestLatestVersionScoped(t *testing.T) {
	client, _ := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/-/package/@babel%2Fcore/dist-tags" {
			t.Errorf("escaped path = %q", r.URL.EscapedPath())
		}
		w.Write([]byte(`{"latest":"7.24.0"}`))
	})

	v, err := client.LatestVersion(context.Background(), "@babel/core", false)
	if err != nil {
		t.Fatalf("LatestVersion() error: %v", err)
	}
	if v != "7.24.0" {
		t.Errorf("LatestVersion() = %q", v)
	}
}

func TestLatestVersionErrors(t *testing.T) {
	tests := []struct {
		name    string
		pkg     string
		handler http.HandlerFunc
		want    error
	}{
		{
			name:    "not found",
			pkg:     "nope",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			want:    integrations.ErrNotFound,
		},
		{
			name:    "no latest tag",
			pkg:     "odd",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"beta":"1.0.0"}`)) },
			want:    ErrNoLatest,
		},
		{
			name:    "empty name",
			pkg:     "  ",
			handler: func(w http.ResponseWriter, r *http.Request) { t.Error("registry should not be called") },
			want:    integrations.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newRegistry(t, tt.handler)
			_, err := client.LatestVersion(context.Background(), tt.pkg, false)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewClientDefaultRegistry(t *testing.T) {
	c := NewClient(nil, time.Hour, "")
	if c.BaseURL() != DefaultRegistry {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultRegistry)
	}
}
