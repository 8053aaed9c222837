package services

import (
	"time"

	"github.com/sjperalta/bailbooks-api/internal/jobs"
	"github.com/sjperalta/bailbooks-api/pkg/logger"
)

const overdueRefreshInterval = time.Hour

type JobService struct {
	worker    *jobs.Worker
	reportSvc *ReportService
}

func NewJobService(worker *jobs.Worker, reportSvc *ReportService) *JobService {
	return &JobService{
		worker:    worker,
		reportSvc: reportSvc,
	}
}

// RegisterSchedules installs the recurring jobs: the overdue gauge refresh, run once
// at startup and hourly after, and the aging digest on digestSpec.
func (s *JobService) RegisterSchedules(digestSpec string) error {
	s.worker.ScheduleEveryImmediate("overdue-gauges", overdueRefreshInterval, s.reportSvc.RefreshOverdueGauges)
	if digestSpec == "" {
		logger.Info("aging digest disabled")
		return nil
	}
	return s.worker.ScheduleCron("aging-digest", digestSpec, s.reportSvc.AgingDigest)
}

// RunNow queues a named job outside its schedule.
func (s *JobService) RunNow(name string) bool {
	var job jobs.Job
	switch name {
	case "overdue-gauges":
		job = s.reportSvc.RefreshOverdueGauges
	case "aging-digest":
		job = s.reportSvc.AgingDigest
	default:
		return false
	}
	s.worker.Enqueue(job)
	return true
}

func (s *JobService) GetStatus() jobs.WorkerStats {
	return s.worker.GetStats()
}
