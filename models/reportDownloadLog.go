package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ReportDownloadLog is an append-only audit record. Rows are inserted in
// the same transaction that located the file, never updated or deleted.
type ReportDownloadLog struct {
	ID           int       `gorm:"primary_key" json:"id"`
	ReportJobId  int       `gorm:"index" json:"report_job_id"`
	ReportFileId int       `gorm:"index;not null" json:"report_file_id"`
	DownloadedBy int       `gorm:"index;not null" json:"downloaded_by"`
	DownloadedAt time.Time `gorm:"autoCreateTime" json:"downloaded_at"`
}

func InsertReportDownloadLog(ctx context.Context, db *gorm.DB, rf *ReportFile, userId int) error {
	entry := ReportDownloadLog{
		ReportJobId:  rf.ReportJobId,
		ReportFileId: rf.ID,
		DownloadedBy: userId,
		DownloadedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(&entry).Error
}

func ListDownloadLogsByJob(ctx context.Context, db *gorm.DB, jobId int) ([]ReportDownloadLog, error) {
	var logs []ReportDownloadLog
	err := db.WithContext(ctx).
		Where("report_job_id = ?", jobId).
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func ListDownloadLogsByFile(ctx context.Context, db *gorm.DB, fileId int) ([]ReportDownloadLog, error) {
	var logs []ReportDownloadLog
	err := db.WithContext(ctx).
		Where("report_file_id = ?", fileId).
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
