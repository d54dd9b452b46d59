package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/hrfocus/erp_backend/models"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidSchedule = errors.New("invalid schedule")
	ErrInvalidCron     = errors.New("invalid cron expression")
)

// RepeatRule is the simplified recurrence admins submit instead of a raw
// cron expression. Time is wall clock "HH:mm".
type RepeatRule struct {
	Type       string `json:"type" validate:"required,oneof=DAILY WEEKLY MONTHLY"`
	Time       string `json:"time" validate:"required"`
	DayOfWeek  int    `json:"dayOfWeek" validate:"min=0,max=6"`
	DayOfMonth int    `json:"dayOfMonth" validate:"min=0,max=28"`
}

type ScheduleCreateRequest struct {
	Name         string      `json:"name" validate:"required,max=100"`
	ReportTypeId string      `json:"reportTypeId" validate:"required"`
	DataScope    string      `json:"dataScope"`
	Department   string      `json:"department"`
	PeriodRule   string      `json:"periodRule"`
	CronExpr     string      `json:"cronExpr"`
	Repeat       *RepeatRule `json:"repeat"`
	RequestedBy  string      `json:"requestedBy"`
}

type ScheduleUpdateRequest struct {
	Name         *string `json:"name"`
	ReportTypeId *string `json:"reportTypeId"`
	DataScope    *string `json:"dataScope"`
	OutputFormat *string `json:"outputFormat"`
	CronExpr     *string `json:"cronExpr"`
	PeriodRule   *string `json:"periodRule"`
	Department   *string `json:"department"`
	IsEnabled    *bool   `json:"isEnabled"`
}

// ScheduleAdminService is the admin write surface over schedules. Every
// write recomputes nextRunAt from the cron expression and rejects the
// write outright when the expression does not parse.
type ScheduleAdminService struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	Runner   scheduleRunner
	Validate *validator.Validate

	Now func() time.Time
}

func NewScheduleAdminService(db *gorm.DB, logger *logrus.Logger, runner scheduleRunner) *ScheduleAdminService {
	return &ScheduleAdminService{
		DB:       db,
		Logger:   logger,
		Runner:   runner,
		Validate: validator.New(),
		Now:      time.Now,
	}
}

func (a *ScheduleAdminService) Create(ctx context.Context, req *ScheduleCreateRequest) (*models.ReportSchedule, error) {
	if req == nil {
		return nil, ErrInvalidSchedule
	}
	if err := a.Validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSchedule, err.Error())
	}

	typ := models.FindReportType(strings.TrimSpace(req.ReportTypeId))
	if typ == nil {
		return nil, ErrInvalidReportType
	}

	scope := resolveScope(true, safeUpper(req.DataScope))
	var dept *string
	if scope == models.DataScopeDept {
		d := strings.TrimSpace(req.Department)
		if d == "" {
			return nil, ErrMissingDepartment
		}
		dept = &d
	}

	rule, err := parsePeriodRule(req.PeriodRule)
	if err != nil {
		return nil, err
	}

	expr := strings.TrimSpace(req.CronExpr)
	if req.Repeat != nil {
		expr, err = buildCron(req.Repeat)
		if err != nil {
			return nil, err
		}
	}
	if expr == "" {
		return nil, fmt.Errorf("%w: either cronExpr or repeat is required", ErrInvalidSchedule)
	}
	next, err := models.NextRunAt(expr, a.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCron, expr)
	}

	requestedBy := strings.TrimSpace(req.RequestedBy)
	if requestedBy == "" {
		requestedBy = "ADMIN"
	}

	sched := &models.ReportSchedule{
		Name:         strings.TrimSpace(req.Name),
		ReportTypeId: typ.Id,
		DataScope:    scope,
		Department:   dept,
		OutputFormat: typ.Format,
		PeriodRule:   rule,
		CronExpr:     expr,
		IsEnabled:    true,
		RequestedBy:  requestedBy,
		NextRunAt:    &next,
	}
	if err := models.CreateReportSchedule(ctx, a.DB, sched); err != nil {
		return nil, err
	}

	a.Logger.WithFields(logrus.Fields{
		"module":      "reportScheduleAdmin",
		"schedule_id": sched.ID,
		"cron":        expr,
		"next_run_at": next,
	}).Info("schedule created")
	return sched, nil
}

// Update applies admin edits with the same validation Create enforces.
// Every successful update wipes the failure state and recomputes nextRunAt,
// so an edited schedule always restarts clean from its next firing.
func (a *ScheduleAdminService) Update(ctx context.Context, id int, req *ScheduleUpdateRequest) (*models.ReportSchedule, error) {
	if req == nil {
		return nil, ErrInvalidSchedule
	}
	sched, err := models.GetReportSchedule(ctx, a.DB, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		n := strings.TrimSpace(*req.Name)
		if n == "" {
			return nil, fmt.Errorf("%w: name must not be blank", ErrInvalidSchedule)
		}
		sched.Name = n
	}
	if req.ReportTypeId != nil {
		typ := models.FindReportType(strings.TrimSpace(*req.ReportTypeId))
		if typ == nil {
			return nil, ErrInvalidReportType
		}
		sched.ReportTypeId = typ.Id
		sched.OutputFormat = typ.Format
	}
	if req.OutputFormat != nil {
		requested, ok := parseFormat(safeUpper(*req.OutputFormat))
		typ := models.FindReportType(sched.ReportTypeId)
		if !ok || typ == nil || requested != typ.Format {
			return nil, ErrFormatMismatch
		}
		sched.OutputFormat = requested
	}
	if req.DataScope != nil {
		sched.DataScope = resolveScope(true, safeUpper(*req.DataScope))
	}
	if req.PeriodRule != nil {
		rule, err := parsePeriodRule(*req.PeriodRule)
		if err != nil {
			return nil, err
		}
		sched.PeriodRule = rule
	}
	if req.Department != nil {
		d := strings.TrimSpace(*req.Department)
		sched.Department = &d
	}
	if sched.DataScope == models.DataScopeDept {
		if sched.Department == nil || strings.TrimSpace(*sched.Department) == "" {
			return nil, ErrMissingDepartment
		}
	}
	if req.CronExpr != nil {
		expr := strings.TrimSpace(*req.CronExpr)
		if _, err := models.ParseCron(expr); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCron, expr)
		}
		sched.CronExpr = expr
	}
	if req.IsEnabled != nil {
		sched.IsEnabled = *req.IsEnabled
	}

	next, err := models.NextRunAt(sched.CronExpr, a.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCron, sched.CronExpr)
	}
	sched.NextRunAt = &next
	sched.FailCount = 0
	sched.LastError = nil

	if err := models.SaveReportSchedule(ctx, a.DB, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

// RunNow fires the schedule immediately, regardless of nextRunAt or the
// enabled flag. Outcome bookkeeping matches a scheduled run, except that a
// manual failure never backs off and never disables: nextRunAt always
// returns to the regular cron cadence.
func (a *ScheduleAdminService) RunNow(ctx context.Context, id int) (*models.ReportSchedule, *GenerateResult, error) {
	sched, err := models.GetReportSchedule(ctx, a.DB, id)
	if err != nil {
		return nil, nil, err
	}

	now := a.Now()
	result, genErr := a.Runner.GenerateInternal(ctx, ScheduleRequest(sched, now))

	t := now
	sched.LastRunAt = &t
	next := models.NextRunAtOrFallback(sched.CronExpr, now)
	sched.NextRunAt = &next
	if genErr != nil {
		sched.FailCount++
		msg := TruncateError(genErr)
		sched.LastError = &msg
	} else {
		sched.LastJobId = &result.ReportId
		sched.FailCount = 0
		sched.LastError = nil
	}

	if err := models.SaveReportSchedule(ctx, a.DB, sched); err != nil {
		return nil, nil, err
	}
	if genErr != nil {
		return sched, nil, fmt.Errorf("run-now failed: %w", genErr)
	}
	return sched, result, nil
}

func (a *ScheduleAdminService) List(ctx context.Context) ([]models.ReportSchedule, error) {
	return models.ListReportSchedules(ctx, a.DB)
}

func (a *ScheduleAdminService) Get(ctx context.Context, id int) (*models.ReportSchedule, error) {
	return models.GetReportSchedule(ctx, a.DB, id)
}

func parsePeriodRule(raw string) (models.PeriodRule, error) {
	switch safeUpper(raw) {
	case "", "CURRENT_MONTH":
		return models.PeriodRuleCurrentMonth, nil
	case "PREV_MONTH":
		return models.PeriodRulePrevMonth, nil
	case "YESTERDAY":
		return models.PeriodRuleYesterday, nil
	case "LAST_7_DAYS":
		return models.PeriodRuleLast7Days, nil
	default:
		return "", fmt.Errorf("%w: unknown period rule %q", ErrInvalidSchedule, raw)
	}
}

// buildCron translates a repeat rule into a six-field cron expression
// (seconds first). WEEKLY defaults to Sunday, MONTHLY to the 1st.
func buildCron(rule *RepeatRule) (string, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(strings.TrimSpace(rule.Time), "%d:%d", &hh, &mm); err != nil {
		return "", fmt.Errorf("%w: time must be HH:mm", ErrInvalidSchedule)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return "", fmt.Errorf("%w: time must be HH:mm", ErrInvalidSchedule)
	}

	switch safeUpper(rule.Type) {
	case "DAILY":
		return fmt.Sprintf("0 %d %d * * *", mm, hh), nil
	case "WEEKLY":
		return fmt.Sprintf("0 %d %d * * %d", mm, hh, rule.DayOfWeek), nil
	case "MONTHLY":
		dom := rule.DayOfMonth
		if dom == 0 {
			dom = 1
		}
		return fmt.Sprintf("0 %d %d %d * *", mm, hh, dom), nil
	default:
		return "", fmt.Errorf("%w: unknown repeat type %q", ErrInvalidSchedule, rule.Type)
	}
}
