package models

import "testing"

func TestFindReportType(t *testing.T) {
	typ := FindReportType(ReportTypeDeptSummaryPDF)
	if typ == nil {
		t.Fatal("expected catalog entry")
	}
	if typ.Format != OutputFormatPDF || !typ.AdminOnly {
		t.Fatalf("unexpected catalog entry: %+v", typ)
	}
	if FindReportType("NOT_A_TYPE") != nil {
		t.Fatal("expected nil for unknown id")
	}
}

func TestListReportTypes_FiltersAdminOnly(t *testing.T) {
	all := ListReportTypes(true)
	if len(all) != len(reportTypes) {
		t.Fatalf("admin should see all %d types, got %d", len(reportTypes), len(all))
	}

	visible := ListReportTypes(false)
	for _, typ := range visible {
		if typ.AdminOnly {
			t.Fatalf("non-admin listing contains admin-only type %s", typ.Id)
		}
	}
	if len(visible) != 4 {
		t.Fatalf("expected 4 non-admin types, got %d", len(visible))
	}
}

func TestRequiresApprovedSummary(t *testing.T) {
	if !RequiresApprovedSummary(ReportTypeExpenseApprovedSummaryPDF) {
		t.Fatal("PDF approved summary must aggregate")
	}
	if !RequiresApprovedSummary(ReportTypeExpenseApprovedSummaryExcel) {
		t.Fatal("Excel approved summary must aggregate")
	}
	if RequiresApprovedSummary(ReportTypePersonalSummaryPDF) {
		t.Fatal("personal summary must not aggregate")
	}
}
