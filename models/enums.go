package models

// DataScope is the breadth of data a report aggregates over.
type DataScope string

const (
	DataScopeAll  DataScope = "ALL"
	DataScopeDept DataScope = "DEPT"
	DataScopeMy   DataScope = "MY"
)

// OutputFormat is the artifact format of a generated report.
type OutputFormat string

const (
	OutputFormatPDF   OutputFormat = "PDF"
	OutputFormatExcel OutputFormat = "EXCEL"
)

// Extension returns the on-disk file extension for the format.
func (f OutputFormat) Extension() string {
	if f == OutputFormatPDF {
		return "pdf"
	}
	return "xlsx"
}

// ContentType returns the MIME type served on download.
func (f OutputFormat) ContentType() string {
	if f == OutputFormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ReportStatus is the job lifecycle state. A job is created GENERATING and
// makes exactly one terminal transition to READY or FAILED.
type ReportStatus string

const (
	ReportStatusGenerating ReportStatus = "GENERATING"
	ReportStatusReady      ReportStatus = "READY"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// PeriodRule resolves a schedule's period against the day it fires.
type PeriodRule string

const (
	PeriodRuleCurrentMonth PeriodRule = "CURRENT_MONTH"
	PeriodRulePrevMonth    PeriodRule = "PREV_MONTH"
	PeriodRuleYesterday    PeriodRule = "YESTERDAY"
	PeriodRuleLast7Days    PeriodRule = "LAST_7_DAYS"
)

// PeriodLast7Days is the sentinel period string emitted by the LAST_7_DAYS
// rule; the period parser leaves the aggregate range unset for it.
const PeriodLast7Days = "LAST_7_DAYS"

// UserRole mirrors the session role. Anything that is not ADMIN is treated
// as a regular user for scope resolution.
type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleUser  UserRole = "USER"
)

// ApprovalStatus is the expense approval lifecycle. Reports only ever
// aggregate APPROVED rows.
type ApprovalStatus string

const (
	ApprovalStatusDraft           ApprovalStatus = "DRAFT"
	ApprovalStatusSubmitted       ApprovalStatus = "SUBMITTED"
	ApprovalStatusApproved        ApprovalStatus = "APPROVED"
	ApprovalStatusRejected        ApprovalStatus = "REJECTED"
	ApprovalStatusRequestMoreInfo ApprovalStatus = "REQUEST_MORE_INFO"
)
