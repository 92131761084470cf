package service

import (
	"fmt"
	"time"

	"github.com/gogorichielab/ppcollection/database/model"
)

// updateDetectionThreshold distinguishes "Added" from "Updated" events: if
// created_at and updated_at are within it, the record was only ever added.
const updateDetectionThreshold = 5 * time.Second

const recentActivityLimit = 5

// DashboardStats are the headline numbers on the home page.
type DashboardStats struct {
	TotalFirearms int64  `json:"totalFirearms"`
	ThisMonth     int64  `json:"thisMonth"`
	Categories    int64  `json:"categories"`
	LastUpdate    string `json:"lastUpdate"`
}

// ActivityItem is one entry in the recent-activity feed.
type ActivityItem struct {
	Id          int    `json:"id"`
	Description string `json:"description"`
	TimeAgo     string `json:"timeAgo"`
	IsRecent    bool   `json:"isRecent"`
}

// Dashboard is the assembled home page payload.
type Dashboard struct {
	Username       string         `json:"username"`
	Stats          DashboardStats `json:"stats"`
	RecentActivity []ActivityItem `json:"recentActivity"`
}

// HomeService assembles the dashboard from the inventory aggregates.
type HomeService struct {
	firearmService FirearmService
}

// GetDashboard builds the home page payload for the logged-in user.
func (s *HomeService) GetDashboard(username string) (*Dashboard, error) {
	summary, err := s.firearmService.GetCollectionSummary()
	if err != nil {
		return nil, err
	}
	recentRecords, err := s.firearmService.GetRecentActivity(recentActivityLimit)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	recentActivity := make([]ActivityItem, 0, len(recentRecords))
	for _, item := range recentRecords {
		createdAt, createdOk := parseStoredTime(item.CreatedAt)
		updatedAt, updatedOk := parseStoredTime(item.UpdatedAt)

		eventAt := updatedAt
		if !updatedOk {
			eventAt = createdAt
		}

		verb := "Updated"
		if createdOk && updatedOk && absDuration(updatedAt.Sub(createdAt)) <= updateDetectionThreshold {
			verb = "Added"
		}

		timeSource := item.UpdatedAt
		if timeSource == "" {
			timeSource = item.CreatedAt
		}

		recentActivity = append(recentActivity, ActivityItem{
			Id:          item.Id,
			Description: fmt.Sprintf("%s %s %s", verb, item.Make, item.Model),
			TimeAgo:     toRelativeTime(timeSource),
			IsRecent:    (createdOk || updatedOk) && now.Sub(eventAt) < 24*time.Hour,
		})
	}

	lastUpdate := "—"
	if summary.LastUpdateDays != nil {
		lastUpdate = fmt.Sprintf("%dd", *summary.LastUpdateDays)
	}

	return &Dashboard{
		Username: username,
		Stats: DashboardStats{
			TotalFirearms: summary.TotalFirearms,
			ThisMonth:     summary.ThisMonth,
			Categories:    summary.Categories,
			LastUpdate:    lastUpdate,
		},
		RecentActivity: recentActivity,
	}, nil
}

func parseStoredTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(model.TimeLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// toRelativeTime renders a stored timestamp as "3h ago" / "2d ago" /
// "1w ago", or an em dash when unparseable.
func toRelativeTime(value string) string {
	t, ok := parseStoredTime(value)
	if !ok {
		return "—"
	}

	hours := int(time.Now().UTC().Sub(t).Hours())
	if hours < 0 {
		hours = 0
	}

	if hours < 24 {
		if hours < 1 {
			hours = 1
		}
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%dd ago", days)
	}

	return fmt.Sprintf("%dw ago", days/7)
}
