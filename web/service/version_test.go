package service

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		left  string
		right string
		want  int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2.4", "1.2.3", 1},
		{"1.2.3", "1.2.4", -1},
		{"2.0", "1.9.9", 1},
		{"1.3", "1.3.0", 0},
		{"1.3.1", "1.3", 1},
		{"1.10.0", "1.9.0", 1},
		{"abc", "0.0.0", 0},
		{"1.x.2", "1.0.2", 0},
	}
	for _, tc := range tests {
		got := compareVersions(tc.left, tc.right)
		assert.Equal(t, tc.want, got, "compareVersions(%q, %q)", tc.left, tc.right)
	}
}

func TestVersionServiceUpdateAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name": "v99.0.0"}`)
	}))
	defer server.Close()

	svc := &VersionService{url: server.URL, client: server.Client()}
	info := svc.GetVersionInfo()
	assert.Equal(t, "99.0.0", info.LatestVersion)
	assert.True(t, info.UpdateAvailable)
	assert.NotEmpty(t, info.CurrentVersion)
}

func TestVersionServiceCachesForADay(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"tag_name": "v99.0.0"}`)
	}))
	defer server.Close()

	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := &VersionService{
		url:    server.URL,
		client: server.Client(),
		now:    func() time.Time { return current },
	}

	svc.GetVersionInfo()
	svc.GetVersionInfo()
	assert.EqualValues(t, 1, calls.Load())

	// advancing past the TTL triggers exactly one refetch
	current = current.Add(25 * time.Hour)
	svc.GetVersionInfo()
	assert.EqualValues(t, 2, calls.Load())

	// Refresh bypasses the cache
	svc.Refresh()
	assert.EqualValues(t, 3, calls.Load())
}

func TestVersionServiceFailuresMeanNoUpdate(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json at all`)
		}},
		{"missing tag", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{}`)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			svc := &VersionService{url: server.URL, client: server.Client()}
			info := svc.GetVersionInfo()
			assert.Empty(t, info.LatestVersion)
			assert.False(t, info.UpdateAvailable)
		})
	}
}

func TestVersionServiceUnreachableHost(t *testing.T) {
	svc := &VersionService{
		url:    "http://127.0.0.1:1/releases/latest",
		client: &http.Client{Timeout: time.Second},
	}
	info := svc.GetVersionInfo()
	assert.Empty(t, info.LatestVersion)
	assert.False(t, info.UpdateAvailable)
}

func TestVersionServiceDisabled(t *testing.T) {
	t.Setenv("PPC_CHECK_UPDATES", "false")

	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"tag_name": "v99.0.0"}`)
	}))
	defer server.Close()

	svc := &VersionService{url: server.URL, client: server.Client()}
	info := svc.GetVersionInfo()
	assert.NotEmpty(t, info.CurrentVersion)
	assert.Empty(t, info.LatestVersion)
	assert.False(t, info.UpdateAvailable)
	assert.Zero(t, calls.Load())
}
