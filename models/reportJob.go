package models

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"bitbucket.org/hrfocus/erp_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportJob is one generation attempt. The request snapshot columns are
// written once at creation and never change after the job reaches READY or
// FAILED; a re-run is always a new job.
type ReportJob struct {
	ID int `gorm:"primary_key" json:"id"`

	// request snapshot
	RequestedBy        int       `gorm:"index;not null" json:"requested_by"`
	RoleSnapshot       UserRole  `gorm:"size:20;not null" json:"role_snapshot"`
	DepartmentSnapshot *string   `gorm:"size:100" json:"department_snapshot"`
	ReportTypeId       string    `gorm:"size:50;not null" json:"report_type_id"`
	Period             string    `gorm:"size:20" json:"period"`
	PeriodStart        *time.Time `json:"period_start"`
	PeriodEnd          *time.Time `json:"period_end"`
	DataScope          DataScope `gorm:"size:20;not null" json:"data_scope"`
	CategoryJson       string    `gorm:"type:json" json:"category_json"`
	OutputFormat       OutputFormat `gorm:"size:10;not null" json:"output_format"`

	// computed aggregates (approved-summary types only)
	ApprovedTotal *decimal.Decimal `gorm:"type:decimal(20,4)" json:"approved_total"`
	ApprovedCount *int             `json:"approved_count"`

	// mutable
	Status       ReportStatus `gorm:"size:20;index;not null" json:"status"`
	FileName     *string      `gorm:"size:255" json:"file_name"`
	FilePath     *string      `gorm:"size:500" json:"file_path"`
	ErrorMessage *string      `gorm:"size:1000" json:"error_message"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func CreateReportJob(ctx context.Context, db *gorm.DB, job *ReportJob) error {
	return db.WithContext(ctx).Create(job).Error
}

func GetReportJob(ctx context.Context, db *gorm.DB, id int) (*ReportJob, error) {
	var job ReportJob
	if err := db.WithContext(ctx).Take(&job, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &job, nil
}

var periodYearMonthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ToMonthRangeOrNull parses a "YYYY-MM" period into its first and last day.
// Any other period string (dates, LAST_7_DAYS, free text) returns nil and
// downstream aggregation is skipped.
func ToMonthRangeOrNull(period string) []time.Time {
	p := strings.TrimSpace(period)
	if p == "" || !periodYearMonthRe.MatchString(p) {
		return nil
	}
	start, err := time.Parse("2006-01", p)
	if err != nil {
		return nil
	}
	end := start.AddDate(0, 1, -1)
	return []time.Time{start, end}
}

// BuildReportFileName produces Report_{period|NA}_{typeId}.{ext}.
func BuildReportFileName(period string, reportTypeId string, ext string) string {
	p := strings.TrimSpace(period)
	if p == "" {
		p = "NA"
	}
	return fmt.Sprintf("Report_%s_%s.%s", p, reportTypeId, ext)
}

// ReportStorageDir returns {root}/{year}/{month}/{jobId}.
func ReportStorageDir(root string, now time.Time, jobId int) string {
	return fmt.Sprintf("%s/%d/%d/%d", root, now.Year(), int(now.Month()), jobId)
}
