package service

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gogorichielab/ppcollection/config"
	"github.com/gogorichielab/ppcollection/logger"
)

const (
	releasesURL     = "https://api.github.com/repos/Gogorichielab/PPCollection/releases/latest"
	versionCacheTTL = 24 * time.Hour
	fetchTimeout    = 5 * time.Second
)

// VersionInfo is the update-check result shown on the dashboard.
type VersionInfo struct {
	CurrentVersion  string `json:"currentVersion"`
	LatestVersion   string `json:"latestVersion"`
	UpdateAvailable bool   `json:"updateAvailable"`
}

// VersionService performs the best-effort outbound check for a newer
// published release. Results are cached for a day; every failure is
// swallowed and reported as "no update available".
type VersionService struct {
	mu            sync.Mutex
	cachedLatest  string
	lastCheckedAt time.Time

	// overridable for tests
	url    string
	client *http.Client
	now    func() time.Time
}

// GetVersionInfo returns the current and latest known versions, refreshing
// the cache when stale. Never blocks beyond one short network round trip.
func (s *VersionService) GetVersionInfo() VersionInfo {
	current := config.GetVersion()
	if !config.IsUpdateCheckEnabled() {
		return VersionInfo{CurrentVersion: current}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nowFn := s.now
	if nowFn == nil {
		nowFn = time.Now
	}

	if s.lastCheckedAt.IsZero() || nowFn().Sub(s.lastCheckedAt) > versionCacheTTL {
		s.cachedLatest = s.fetchLatestVersion()
		s.lastCheckedAt = nowFn()
	}

	return VersionInfo{
		CurrentVersion:  current,
		LatestVersion:   s.cachedLatest,
		UpdateAvailable: s.cachedLatest != "" && compareVersions(s.cachedLatest, current) > 0,
	}
}

// Refresh forces a cache refresh; the update-check job runs it daily.
func (s *VersionService) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	nowFn := s.now
	if nowFn == nil {
		nowFn = time.Now
	}
	s.cachedLatest = s.fetchLatestVersion()
	s.lastCheckedAt = nowFn()
}

// fetchLatestVersion asks GitHub for the latest release tag. Any failure
// returns "".
func (s *VersionService) fetchLatestVersion() string {
	url := s.url
	if url == "" {
		url = releasesURL
	}
	client := s.client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", config.GetName()+"/"+config.GetVersion())
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		logger.Debug("update check failed:", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ""
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal(body, &release); err != nil {
		return ""
	}

	tag := strings.TrimSpace(release.TagName)
	tag = strings.TrimPrefix(strings.TrimPrefix(tag, "v"), "V")
	return tag
}

// compareVersions compares dot-separated numeric versions: 1 when left is
// newer, -1 when older, 0 when equal. Non-numeric segments count as 0.
func compareVersions(left, right string) int {
	leftParts := strings.Split(left, ".")
	rightParts := strings.Split(right, ".")

	maxLen := len(leftParts)
	if len(rightParts) > maxLen {
		maxLen = len(rightParts)
	}

	for i := 0; i < maxLen; i++ {
		var l, r int
		if i < len(leftParts) {
			l, _ = strconv.Atoi(leftParts[i])
		}
		if i < len(rightParts) {
			r, _ = strconv.Atoi(rightParts[i])
		}
		if l > r {
			return 1
		}
		if l < r {
			return -1
		}
	}
	return 0
}
