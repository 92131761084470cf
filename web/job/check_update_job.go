package job

import (
	"github.com/gogorichielab/ppcollection/logger"
	"github.com/gogorichielab/ppcollection/web/service"
)

// CheckUpdateJob refreshes the cached latest-release version once a day.
// Fire-and-forget: a failed check just means "no update available".
type CheckUpdateJob struct {
	versionService *service.VersionService
}

func NewCheckUpdateJob(versionService *service.VersionService) *CheckUpdateJob {
	return &CheckUpdateJob{versionService: versionService}
}

func (j *CheckUpdateJob) Run() {
	j.versionService.Refresh()
	info := j.versionService.GetVersionInfo()
	if info.UpdateAvailable {
		logger.Infof("a newer release is available: %s (running %s)", info.LatestVersion, info.CurrentVersion)
	}
}
