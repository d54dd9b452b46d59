package models

import (
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// One in-memory database per test; a second pooled connection would
	// see an empty schema.
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestCreateOrReuseReportFile_ReusesRowOnSameChecksum(t *testing.T) {
	db := openTestDB(t)
	if err := db.AutoMigrate(&ReportFile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()
	checksum := strings.Repeat("ab", 32)

	first, err := CreateOrReuseReportFile(ctx, db, &ReportFile{
		ReportJobId: 1,
		FileName:    "Report_2025-03_DEPT_SUMMARY_PDF.pdf",
		FileUrl:     "report-storage/2025/3/1/Report_2025-03_DEPT_SUMMARY_PDF.pdf",
		FileType:    OutputFormatPDF,
		FileSize:    1024,
		Checksum:    checksum,
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	// A second job producing byte-identical output must get the existing
	// row back, not a new one.
	second, err := CreateOrReuseReportFile(ctx, db, &ReportFile{
		ReportJobId: 2,
		FileName:    "Report_2025-03_DEPT_SUMMARY_PDF.pdf",
		FileUrl:     "report-storage/2025/3/2/Report_2025-03_DEPT_SUMMARY_PDF.pdf",
		FileType:    OutputFormatPDF,
		FileSize:    1024,
		Checksum:    checksum,
	})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected reuse of row %d, got %d", first.ID, second.ID)
	}
	if second.ReportJobId != first.ReportJobId {
		t.Fatalf("reused row must keep its original job reference, got %d", second.ReportJobId)
	}

	var count int64
	if err := db.Model(&ReportFile{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 report file row, got %d", count)
	}
}

func TestCreateOrReuseReportFile_DistinctChecksumsInsert(t *testing.T) {
	db := openTestDB(t)
	if err := db.AutoMigrate(&ReportFile{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()

	for i, checksum := range []string{strings.Repeat("aa", 32), strings.Repeat("bb", 32)} {
		_, err := CreateOrReuseReportFile(ctx, db, &ReportFile{
			ReportJobId: i + 1,
			FileName:    "Report_NA_PERSONAL_SUMMARY_PDF.pdf",
			FileUrl:     "report-storage/2025/3/1/Report_NA_PERSONAL_SUMMARY_PDF.pdf",
			FileType:    OutputFormatPDF,
			FileSize:    10,
			Checksum:    checksum,
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	var count int64
	if err := db.Model(&ReportFile{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows for distinct checksums, got %d", count)
	}
}
