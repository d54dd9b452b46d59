package reports

import (
	"os"
	"path/filepath"
	"testing"

	"bitbucket.org/hrfocus/erp_backend/models"
	"github.com/shopspring/decimal"
)

func sampleJob() *models.ReportJob {
	dept := "Dev1"
	total := decimal.NewFromFloat(1234.5)
	count := 12
	return &models.ReportJob{
		ID:                 42,
		RequestedBy:        7,
		RoleSnapshot:       models.UserRoleAdmin,
		DepartmentSnapshot: &dept,
		ReportTypeId:       models.ReportTypeExpenseApprovedSummaryPDF,
		Period:             "2025-03",
		DataScope:          models.DataScopeDept,
		CategoryJson:       `["Travel"]`,
		OutputFormat:       models.OutputFormatPDF,
		ApprovedTotal:      &total,
		ApprovedCount:      &count,
		Status:             models.ReportStatusGenerating,
	}
}

func TestDisplayScope(t *testing.T) {
	job := sampleJob()
	if got := displayScope(job); got != "Department - Dev1" {
		t.Fatalf("DEPT scope label: %q", got)
	}

	job.DataScope = models.DataScopeMy
	if got := displayScope(job); got != "My Data" {
		t.Fatalf("MY scope label: %q", got)
	}

	job.DataScope = models.DataScopeAll
	job.DepartmentSnapshot = nil
	if got := displayScope(job); got != "All" {
		t.Fatalf("ALL scope label: %q", got)
	}
}

func TestReportRows(t *testing.T) {
	rows := reportRows(sampleJob())
	if len(rows) != 9 {
		t.Fatalf("expected 9 rows, got %d", len(rows))
	}
	if rows[0][1] != models.ReportTypeExpenseApprovedSummaryPDF {
		t.Fatalf("unexpected type row: %v", rows[0])
	}
	if rows[8][0] != "Total Amount" || rows[8][1] != "1234.50" {
		t.Fatalf("unexpected total row: %v", rows[8])
	}
}

func TestReportRows_MissingValuesRenderAsDash(t *testing.T) {
	job := &models.ReportJob{ID: 1, DataScope: models.DataScopeAll}
	rows := reportRows(job)
	if rows[2][1] != "-" {
		t.Fatalf("blank period should render as dash: %v", rows[2])
	}
	if rows[6][1] != "-" {
		t.Fatalf("nil snapshot should render as dash: %v", rows[6])
	}
	if rows[8][1] != "0.00" {
		t.Fatalf("nil total should render as 0.00: %v", rows[8])
	}
}

func TestExcelRenderer_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Report_2025-03_EXPENSE_APPROVED_SUMMARY_EXCEL.xlsx")
	if err := (ExcelRenderer{}).Render(path, sampleJob()); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("artifact is empty")
	}
}

func TestPdfRenderer_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Report_2025-03_EXPENSE_APPROVED_SUMMARY_PDF.pdf")
	if err := (PdfRenderer{}).Render(path, sampleJob()); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("artifact is empty")
	}
}
