package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/hrfocus/erp_backend/utils"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ReportFile is an immutable generated artifact. It references its owning
// job by id only; lookups go through the id, never a live relation.
// The checksum is globally unique: byte-identical renders share one row.
type ReportFile struct {
	ID          int          `gorm:"primary_key" json:"id"`
	ReportJobId int          `gorm:"index;not null" json:"report_job_id"`
	FileName    string       `gorm:"size:255;not null" json:"file_name"`
	FileUrl     string       `gorm:"size:500;not null" json:"file_url"`
	FileType    OutputFormat `gorm:"size:20;not null" json:"file_type"`
	FileSize    int64        `gorm:"not null" json:"file_size"`
	Checksum    string       `gorm:"size:64;not null;uniqueIndex" json:"checksum"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// CreateOrReuseReportFile inserts the artifact row; on a checksum unique
// conflict the existing row is returned instead (content-level dedup).
func CreateOrReuseReportFile(ctx context.Context, db *gorm.DB, rf *ReportFile) (*ReportFile, error) {
	err := db.WithContext(ctx).Create(rf).Error
	if err == nil {
		return rf, nil
	}
	if !isDuplicateKeyErr(err) {
		return nil, err
	}

	var existing ReportFile
	if ferr := db.WithContext(ctx).Where("checksum = ?", rf.Checksum).Take(&existing).Error; ferr != nil {
		return nil, fmt.Errorf("checksum duplicate but existing report file not found: %w", ferr)
	}
	return &existing, nil
}

// LatestReportFileForJob returns the most recently created artifact for the
// job; downloads always serve this one.
func LatestReportFileForJob(ctx context.Context, db *gorm.DB, jobId int) (*ReportFile, error) {
	var rf ReportFile
	err := db.WithContext(ctx).
		Where("report_job_id = ?", jobId).
		Order("id DESC").
		Take(&rf).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &rf, nil
}

func GetReportFile(ctx context.Context, db *gorm.DB, fileId int) (*ReportFile, error) {
	var rf ReportFile
	if err := db.WithContext(ctx).Take(&rf, fileId).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &rf, nil
}

func ListReportFilesForJob(ctx context.Context, db *gorm.DB, jobId int) ([]ReportFile, error) {
	var files []ReportFile
	err := db.WithContext(ctx).
		Where("report_job_id = ?", jobId).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}
