package models

// ReportTypeDef is one entry of the static report-type catalog.
type ReportTypeDef struct {
	Id        string       `json:"id"`
	Label     string       `json:"label"`
	Format    OutputFormat `json:"format"`
	AdminOnly bool         `json:"admin_only"`
}

const (
	ReportTypeExpenseApprovedSummaryPDF   = "EXPENSE_APPROVED_SUMMARY_PDF"
	ReportTypeExpenseApprovedSummaryExcel = "EXPENSE_APPROVED_SUMMARY_EXCEL"

	// EMPLOYEE (USER)
	ReportTypePersonalDetailExcel = "PERSONAL_DETAIL_EXCEL"
	ReportTypePersonalSummaryPDF  = "PERSONAL_SUMMARY_PDF"

	// ADMIN
	ReportTypeDeptDetailExcel = "DEPT_DETAIL_EXCEL"
	ReportTypeDeptSummaryPDF  = "DEPT_SUMMARY_PDF"
	ReportTypeAIStrategyPDF   = "AI_STRATEGY_PDF"
)

var reportTypes = []ReportTypeDef{
	{Id: ReportTypePersonalDetailExcel, Label: "Personal Detailed Records (Excel)", Format: OutputFormatExcel, AdminOnly: false},
	{Id: ReportTypePersonalSummaryPDF, Label: "Personal Summary Report (PDF)", Format: OutputFormatPDF, AdminOnly: false},

	{Id: ReportTypeDeptDetailExcel, Label: "Department Detailed Records (Excel)", Format: OutputFormatExcel, AdminOnly: true},
	{Id: ReportTypeDeptSummaryPDF, Label: "Department Summary Report (PDF)", Format: OutputFormatPDF, AdminOnly: true},
	{Id: ReportTypeAIStrategyPDF, Label: "AI Strategy Insight Report (PDF)", Format: OutputFormatPDF, AdminOnly: true},

	{Id: ReportTypeExpenseApprovedSummaryPDF, Label: "Approved Expense Summary (PDF)", Format: OutputFormatPDF, AdminOnly: false},
	{Id: ReportTypeExpenseApprovedSummaryExcel, Label: "Approved Expense Summary (Excel)", Format: OutputFormatExcel, AdminOnly: false},
}

// FindReportType returns the catalog entry for id, or nil if unknown.
func FindReportType(id string) *ReportTypeDef {
	for i := range reportTypes {
		if reportTypes[i].Id == id {
			return &reportTypes[i]
		}
	}
	return nil
}

// ListReportTypes returns the catalog visible to the given role; non-admin
// callers never see admin-only types.
func ListReportTypes(isAdmin bool) []ReportTypeDef {
	out := make([]ReportTypeDef, 0, len(reportTypes))
	for _, t := range reportTypes {
		if t.AdminOnly && !isAdmin {
			continue
		}
		out = append(out, t)
	}
	return out
}

// RequiresApprovedSummary reports whether the type pins precomputed
// approved totals onto the job before rendering.
func RequiresApprovedSummary(reportTypeId string) bool {
	return reportTypeId == ReportTypeExpenseApprovedSummaryPDF ||
		reportTypeId == ReportTypeExpenseApprovedSummaryExcel
}
