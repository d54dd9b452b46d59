package models

import (
	"testing"
	"time"
)

func TestToMonthRangeOrNull(t *testing.T) {
	r := ToMonthRangeOrNull("2025-03")
	if r == nil {
		t.Fatal("expected a range for 2025-03")
	}
	if !r[0].Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %v", r[0])
	}
	if !r[1].Equal(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end: %v", r[1])
	}
}

func TestToMonthRangeOrNull_February(t *testing.T) {
	r := ToMonthRangeOrNull("2024-02")
	if r == nil {
		t.Fatal("expected a range for 2024-02")
	}
	if r[1].Day() != 29 {
		t.Fatalf("expected leap-year Feb 29, got day %d", r[1].Day())
	}
}

func TestToMonthRangeOrNull_NonMonthStringsAreNil(t *testing.T) {
	for _, p := range []string{"", "  ", "2025-03-15", PeriodLast7Days, "March 2025", "2025-3"} {
		if r := ToMonthRangeOrNull(p); r != nil {
			t.Fatalf("expected nil range for %q, got %v", p, r)
		}
	}
}

func TestBuildReportFileName(t *testing.T) {
	got := BuildReportFileName("2025-03", ReportTypeDeptSummaryPDF, "pdf")
	if got != "Report_2025-03_DEPT_SUMMARY_PDF.pdf" {
		t.Fatalf("unexpected file name: %q", got)
	}
}

func TestBuildReportFileName_BlankPeriodIsNA(t *testing.T) {
	got := BuildReportFileName("  ", ReportTypePersonalDetailExcel, "xlsx")
	if got != "Report_NA_PERSONAL_DETAIL_EXCEL.xlsx" {
		t.Fatalf("unexpected file name: %q", got)
	}
}

func TestReportStorageDir(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	got := ReportStorageDir("report-storage", now, 42)
	if got != "report-storage/2025/3/42" {
		t.Fatalf("unexpected dir: %q", got)
	}
}
