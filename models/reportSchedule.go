package models

import (
	"context"
	"time"

	"bitbucket.org/hrfocus/erp_backend/utils"
	"gorm.io/gorm"
)

// ScheduleDisableThreshold is the consecutive-failure count at which a
// schedule is forced off until an admin re-enables it.
const ScheduleDisableThreshold = 5

// ReportSchedule is a recurring generation definition. nextRunAt is always
// the earliest future firing time implied by CronExpr at the last
// computation; the tick loop advances it after every attempt.
type ReportSchedule struct {
	ID           int          `gorm:"primary_key" json:"id"`
	Name         string       `gorm:"size:100;not null" json:"name"`
	ReportTypeId string       `gorm:"size:50;index;not null" json:"report_type_id"`
	DataScope    DataScope    `gorm:"size:20;not null" json:"data_scope"`
	Department   *string      `gorm:"size:100" json:"department"`
	OutputFormat OutputFormat `gorm:"size:20;not null" json:"output_format"`
	PeriodRule   PeriodRule   `gorm:"size:20;not null;default:'CURRENT_MONTH'" json:"period_rule"`
	CronExpr     string       `gorm:"size:100;not null" json:"cron_expr"`
	IsEnabled    bool         `gorm:"index:idx_schedule_enabled_next;not null;default:true" json:"is_enabled"`
	RequestedBy  string       `gorm:"size:20;not null;default:'SYSTEM'" json:"requested_by"`

	NextRunAt *time.Time `gorm:"index:idx_schedule_enabled_next" json:"next_run_at"`
	LastRunAt *time.Time `json:"last_run_at"`
	LastJobId *int       `gorm:"index" json:"last_job_id"`
	FailCount int        `gorm:"not null;default:0" json:"fail_count"`
	LastError *string    `gorm:"type:text" json:"last_error"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func CreateReportSchedule(ctx context.Context, db *gorm.DB, s *ReportSchedule) error {
	return db.WithContext(ctx).Create(s).Error
}

func SaveReportSchedule(ctx context.Context, db *gorm.DB, s *ReportSchedule) error {
	return db.WithContext(ctx).Save(s).Error
}

func GetReportSchedule(ctx context.Context, db *gorm.DB, id int) (*ReportSchedule, error) {
	var s ReportSchedule
	if err := db.WithContext(ctx).Take(&s, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &s, nil
}

func ListReportSchedules(ctx context.Context, db *gorm.DB) ([]ReportSchedule, error) {
	var list []ReportSchedule
	if err := db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// DueReportSchedules returns enabled schedules whose nextRunAt has passed,
// earliest first, capped to limit to bound per-tick work.
func DueReportSchedules(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]ReportSchedule, error) {
	var due []ReportSchedule
	err := db.WithContext(ctx).
		Where("is_enabled = ? AND next_run_at <= ?", true, now).
		Order("next_run_at ASC").
		Limit(limit).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	return due, nil
}
