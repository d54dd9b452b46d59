package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"bitbucket.org/hrfocus/erp_backend/models"
	"github.com/sirupsen/logrus"
)

func strPtr(s string) *string { return &s }

// newTestAdmin pins the clock to 2025-04-01 08:00 UTC so cron-derived
// nextRunAt values are exact.
func newTestAdmin(t *testing.T, runner scheduleRunner) *ScheduleAdminService {
	t.Helper()
	admin := NewScheduleAdminService(nil, logrus.New(), runner)
	admin.Now = func() time.Time { return time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC) }
	return admin
}

func TestBuildCron(t *testing.T) {
	cases := []struct {
		rule     RepeatRule
		expected string
	}{
		{RepeatRule{Type: "DAILY", Time: "09:00"}, "0 0 9 * * *"},
		{RepeatRule{Type: "DAILY", Time: "23:45"}, "0 45 23 * * *"},
		{RepeatRule{Type: "WEEKLY", Time: "08:30", DayOfWeek: 1}, "0 30 8 * * 1"},
		{RepeatRule{Type: "WEEKLY", Time: "08:30"}, "0 30 8 * * 0"},
		{RepeatRule{Type: "MONTHLY", Time: "06:15", DayOfMonth: 15}, "0 15 6 15 * *"},
		{RepeatRule{Type: "MONTHLY", Time: "06:15"}, "0 15 6 1 * *"},
		{RepeatRule{Type: "monthly", Time: "06:15", DayOfMonth: 28}, "0 15 6 28 * *"},
	}
	for _, tc := range cases {
		got, err := buildCron(&tc.rule)
		if err != nil {
			t.Fatalf("buildCron(%+v) error: %v", tc.rule, err)
		}
		if got != tc.expected {
			t.Fatalf("buildCron(%+v) = %q, want %q", tc.rule, got, tc.expected)
		}
	}
}

func TestBuildCron_RejectsBadInput(t *testing.T) {
	bad := []RepeatRule{
		{Type: "DAILY", Time: "not a time"},
		{Type: "DAILY", Time: "25:00"},
		{Type: "DAILY", Time: "09:75"},
		{Type: "HOURLY", Time: "09:00"},
	}
	for _, rule := range bad {
		if _, err := buildCron(&rule); !errors.Is(err, ErrInvalidSchedule) {
			t.Fatalf("buildCron(%+v) expected ErrInvalidSchedule, got %v", rule, err)
		}
	}
}

func TestRunNow_FailureIncrementsFailCountWithoutDisable(t *testing.T) {
	db := openTestDB(t)
	sched := seedSchedule(t, db, func(s *models.ReportSchedule) {
		s.FailCount = 2
	})

	admin := newTestAdmin(t, &recordingRunner{err: errors.New("render exploded")})
	admin.DB = db

	if _, _, err := admin.RunNow(context.Background(), sched.ID); err == nil {
		t.Fatal("expected run-now to surface the failure")
	}

	reloaded, err := models.GetReportSchedule(context.Background(), db, sched.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.FailCount != 3 {
		t.Fatalf("failCount after run-now failure = %d, want 3", reloaded.FailCount)
	}
	if !reloaded.IsEnabled {
		t.Fatal("run-now failure must never disable the schedule")
	}
	if reloaded.LastError == nil || *reloaded.LastError != "render exploded" {
		t.Fatalf("lastError not recorded: %v", reloaded.LastError)
	}
	// No failure backoff: nextRunAt returns to the cron cadence.
	expectedNext := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	if reloaded.NextRunAt == nil || !reloaded.NextRunAt.Equal(expectedNext) {
		t.Fatalf("nextRunAt = %v, want cron slot %v", reloaded.NextRunAt, expectedNext)
	}
}

func TestRunNow_FailurePastThresholdStaysEnabled(t *testing.T) {
	db := openTestDB(t)
	sched := seedSchedule(t, db, func(s *models.ReportSchedule) {
		s.FailCount = models.ScheduleDisableThreshold - 1
	})

	admin := newTestAdmin(t, &recordingRunner{err: errors.New("boom")})
	admin.DB = db

	if _, _, err := admin.RunNow(context.Background(), sched.ID); err == nil {
		t.Fatal("expected run-now to surface the failure")
	}

	reloaded, err := models.GetReportSchedule(context.Background(), db, sched.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.FailCount != models.ScheduleDisableThreshold {
		t.Fatalf("failCount = %d, want %d", reloaded.FailCount, models.ScheduleDisableThreshold)
	}
	if !reloaded.IsEnabled {
		t.Fatal("manual runs never auto-disable, even at the threshold")
	}
}

func TestRunNow_SuccessResetsFailureState(t *testing.T) {
	db := openTestDB(t)
	msg := "old failure"
	sched := seedSchedule(t, db, func(s *models.ReportSchedule) {
		s.FailCount = 2
		s.LastError = &msg
	})

	admin := newTestAdmin(t, &recordingRunner{})
	admin.DB = db

	if _, _, err := admin.RunNow(context.Background(), sched.ID); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	reloaded, err := models.GetReportSchedule(context.Background(), db, sched.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.FailCount != 0 || reloaded.LastError != nil {
		t.Fatalf("failure state not reset: failCount=%d lastError=%v", reloaded.FailCount, reloaded.LastError)
	}
	if reloaded.LastJobId == nil || *reloaded.LastJobId != 77 {
		t.Fatalf("lastJobId not recorded: %v", reloaded.LastJobId)
	}
}

func TestUpdate_ResetsFailureStateAndRecomputesNextRun(t *testing.T) {
	db := openTestDB(t)
	msg := "old failure"
	sched := seedSchedule(t, db, func(s *models.ReportSchedule) {
		s.FailCount = 3
		s.LastError = &msg
	})

	admin := newTestAdmin(t, &recordingRunner{})
	admin.DB = db

	// Editing only the cron must still wipe the failure state.
	if _, err := admin.Update(context.Background(), sched.ID, &ScheduleUpdateRequest{
		CronExpr: strPtr("0 30 10 * * *"),
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reloaded, err := models.GetReportSchedule(context.Background(), db, sched.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.FailCount != 0 {
		t.Fatalf("failCount after update = %d, want 0", reloaded.FailCount)
	}
	if reloaded.LastError != nil {
		t.Fatalf("lastError after update = %v, want nil", reloaded.LastError)
	}
	expectedNext := time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC)
	if reloaded.NextRunAt == nil || !reloaded.NextRunAt.Equal(expectedNext) {
		t.Fatalf("nextRunAt = %v, want %v", reloaded.NextRunAt, expectedNext)
	}
}

func TestUpdate_ChangesTypeScopeAndFormat(t *testing.T) {
	db := openTestDB(t)
	sched := seedSchedule(t, db, nil)

	admin := newTestAdmin(t, &recordingRunner{})
	admin.DB = db

	updated, err := admin.Update(context.Background(), sched.ID, &ScheduleUpdateRequest{
		ReportTypeId: strPtr(models.ReportTypeDeptDetailExcel),
		DataScope:    strPtr("DEPT"),
		Department:   strPtr("Dev1"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ReportTypeId != models.ReportTypeDeptDetailExcel {
		t.Fatalf("type not updated: %s", updated.ReportTypeId)
	}
	// The output format follows the new type's canonical format.
	if updated.OutputFormat != models.OutputFormatExcel {
		t.Fatalf("format did not follow type: %s", updated.OutputFormat)
	}
	if updated.DataScope != models.DataScopeDept || updated.Department == nil || *updated.Department != "Dev1" {
		t.Fatalf("scope/department not updated: %s %v", updated.DataScope, updated.Department)
	}
}

func TestUpdate_RejectsInvalidEdits(t *testing.T) {
	db := openTestDB(t)
	sched := seedSchedule(t, db, nil)

	admin := newTestAdmin(t, &recordingRunner{})
	admin.DB = db
	ctx := context.Background()

	if _, err := admin.Update(ctx, sched.ID, &ScheduleUpdateRequest{
		ReportTypeId: strPtr("NOT_A_TYPE"),
	}); !errors.Is(err, ErrInvalidReportType) {
		t.Fatalf("expected ErrInvalidReportType, got %v", err)
	}

	// DEPT scope without any department on record fails closed.
	if _, err := admin.Update(ctx, sched.ID, &ScheduleUpdateRequest{
		DataScope: strPtr("DEPT"),
	}); !errors.Is(err, ErrMissingDepartment) {
		t.Fatalf("expected ErrMissingDepartment, got %v", err)
	}

	// The seeded schedule is a PDF type; EXCEL contradicts it.
	if _, err := admin.Update(ctx, sched.ID, &ScheduleUpdateRequest{
		OutputFormat: strPtr("EXCEL"),
	}); !errors.Is(err, ErrFormatMismatch) {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}
}

func TestParsePeriodRule(t *testing.T) {
	for _, raw := range []string{"", "CURRENT_MONTH", "current_month"} {
		rule, err := parsePeriodRule(raw)
		if err != nil {
			t.Fatalf("parsePeriodRule(%q) error: %v", raw, err)
		}
		if string(rule) != "CURRENT_MONTH" {
			t.Fatalf("parsePeriodRule(%q) = %s", raw, rule)
		}
	}

	if _, err := parsePeriodRule("FORTNIGHTLY"); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
}
