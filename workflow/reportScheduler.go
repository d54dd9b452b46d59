package workflow

import (
	"context"
	"time"

	"bitbucket.org/hrfocus/erp_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type scheduleRunner interface {
	GenerateInternal(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)
}

// ReportScheduler sweeps enabled schedules that are due and runs each one
// at most once per firing across all instances, using a per-schedule redis
// lock as the single-flight guard.
type ReportScheduler struct {
	DB     *gorm.DB
	Logger *logrus.Logger
	Locker ScheduleLocker
	Runner scheduleRunner

	BatchSize    int
	TickInterval time.Duration
	LockTTL      time.Duration

	Now func() time.Time
}

func NewReportScheduler(db *gorm.DB, logger *logrus.Logger, locker ScheduleLocker, runner scheduleRunner) *ReportScheduler {
	return &ReportScheduler{
		DB:           db,
		Logger:       logger,
		Locker:       locker,
		Runner:       runner,
		BatchSize:    20,
		TickInterval: 60 * time.Second,
		LockTTL:      10 * time.Minute,
		Now:          time.Now,
	}
}

func (s *ReportScheduler) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.tickOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.TickInterval):
		}
	}
}

func (s *ReportScheduler) tickOnce(ctx context.Context) {
	if s.DB == nil {
		return
	}
	now := s.Now()

	due, err := models.DueReportSchedules(ctx, s.DB, now, s.BatchSize)
	if err != nil {
		s.Logger.WithFields(logrus.Fields{
			"module": "reportScheduler",
		}).Error("failed to load due schedules: " + err.Error())
		return
	}

	for i := range due {
		s.runSchedule(ctx, due[i].ID)
	}
}

// runSchedule executes one due schedule end to end. The schedule is
// re-read and re-checked after lock acquisition so a firing handled by
// another instance in the gap is skipped, not duplicated.
func (s *ReportScheduler) runSchedule(ctx context.Context, scheduleId int) {
	unlock, ok := s.Locker.TryLock(ctx, ScheduleLockKey(scheduleId), s.LockTTL)
	if !ok {
		return
	}
	defer unlock()

	now := s.Now()
	sched, err := models.GetReportSchedule(ctx, s.DB, scheduleId)
	if err != nil {
		s.Logger.WithFields(logrus.Fields{
			"module":      "reportScheduler",
			"schedule_id": scheduleId,
		}).Error("failed to re-read schedule: " + err.Error())
		return
	}
	if !sched.IsEnabled || sched.NextRunAt == nil || sched.NextRunAt.After(now) {
		return
	}

	result, genErr := s.Runner.GenerateInternal(ctx, ScheduleRequest(sched, now))
	if genErr != nil {
		applyScheduleFailure(sched, now, genErr)
		s.Logger.WithFields(logrus.Fields{
			"module":      "reportScheduler",
			"schedule_id": sched.ID,
			"fail_count":  sched.FailCount,
			"enabled":     sched.IsEnabled,
		}).Error("scheduled generation failed: " + genErr.Error())
	} else {
		applyScheduleSuccess(sched, now, result.ReportId)
		s.Logger.WithFields(logrus.Fields{
			"module":      "reportScheduler",
			"schedule_id": sched.ID,
			"report_id":   result.ReportId,
		}).Info("scheduled generation done")
	}

	if err := models.SaveReportSchedule(ctx, s.DB, sched); err != nil {
		s.Logger.WithFields(logrus.Fields{
			"module":      "reportScheduler",
			"schedule_id": sched.ID,
		}).Error("failed to save schedule bookkeeping: " + err.Error())
	}
}

// ScheduleRequest builds the internal generation request a schedule stands
// for, resolving its period rule against the firing day.
func ScheduleRequest(sched *models.ReportSchedule, now time.Time) *GenerateRequest {
	dept := ""
	if sched.Department != nil {
		dept = *sched.Department
	}
	return &GenerateRequest{
		ReportTypeId: sched.ReportTypeId,
		Filters: GenerateFilters{
			Format:     string(sched.OutputFormat),
			DataScope:  string(sched.DataScope),
			Department: dept,
			Period:     models.ResolvePeriod(sched.PeriodRule, now),
		},
	}
}

func applyScheduleSuccess(sched *models.ReportSchedule, now time.Time, jobId int) {
	t := now
	sched.LastRunAt = &t
	sched.LastJobId = &jobId
	sched.FailCount = 0
	sched.LastError = nil
	next := models.NextRunAtOrFallback(sched.CronExpr, now)
	sched.NextRunAt = &next
}

func applyScheduleFailure(sched *models.ReportSchedule, now time.Time, cause error) {
	t := now
	sched.LastRunAt = &t
	sched.FailCount++
	msg := TruncateError(cause)
	sched.LastError = &msg

	// Retry delay grows with the failure count, capped at 30 minutes.
	// TODO: the first retry fires after 1 minute, before most transient
	// storage issues clear; revisit the minimum delay.
	delay := time.Duration(sched.FailCount) * time.Minute
	if delay > 30*time.Minute {
		delay = 30 * time.Minute
	}
	next := now.Add(delay)
	sched.NextRunAt = &next

	if sched.FailCount >= models.ScheduleDisableThreshold {
		sched.IsEnabled = false
	}
}
