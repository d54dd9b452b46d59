package reports

import (
	"strconv"

	"bitbucket.org/hrfocus/erp_backend/models"
	"github.com/shopspring/decimal"
)

// displayScope is the human label rendered into the artifact; DEPT carries
// the snapshot department so the file itself records what it covers.
func displayScope(job *models.ReportJob) string {
	switch job.DataScope {
	case models.DataScopeMy:
		return "My Data"
	case models.DataScopeAll:
		return "All"
	case models.DataScopeDept:
		if job.DepartmentSnapshot == nil || *job.DepartmentSnapshot == "" {
			return "Department"
		}
		return "Department - " + *job.DepartmentSnapshot
	default:
		return ""
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func derefOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return orDash(*s)
}

func approvedCount(job *models.ReportJob) int {
	if job.ApprovedCount == nil {
		return 0
	}
	return *job.ApprovedCount
}

func approvedTotal(job *models.ReportJob) decimal.Decimal {
	if job.ApprovedTotal == nil {
		return decimal.Zero
	}
	return *job.ApprovedTotal
}

// reportRows is the key/value summary layout shared by both renderers.
func reportRows(job *models.ReportJob) [][2]string {
	return [][2]string{
		{"Report Type", orDash(job.ReportTypeId)},
		{"Report ID", strconv.Itoa(job.ID)},
		{"Period", orDash(job.Period)},
		{"Scope", orDash(displayScope(job))},
		{"Category", orDash(job.CategoryJson)},
		{"Requested By", strconv.Itoa(job.RequestedBy)},
		{"Dept (snapshot)", derefOrDash(job.DepartmentSnapshot)},
		{"Records Included", strconv.Itoa(approvedCount(job))},
		{"Total Amount", approvedTotal(job).StringFixed(2)},
	}
}
