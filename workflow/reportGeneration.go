package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bitbucket.org/hrfocus/erp_backend/models"
	"bitbucket.org/hrfocus/erp_backend/models/reports"
	"bitbucket.org/hrfocus/erp_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Validation failures of the generation pipeline. Each stage has an
// explicit error value so callers can map them to a response without
// matching on message strings.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidReportType = errors.New("invalid report type")
	ErrAdminOnlyReport   = errors.New("admin-only report")
	ErrFormatMismatch    = errors.New("format mismatch")
	ErrMissingDepartment = errors.New("department is required for DEPT scope")
	ErrNotYourReport     = errors.New("not your report")
	ErrReportNotReady    = errors.New("report not ready")
)

const errorMessageLimit = 500

// ReportRenderer produces the report artifact at path from a job snapshot.
type ReportRenderer interface {
	Render(path string, job *models.ReportJob) error
}

type GenerateRequest struct {
	ReportTypeId string          `json:"reportTypeId" binding:"required"`
	Filters      GenerateFilters `json:"filters"`
}

type GenerateFilters struct {
	Format     string   `json:"format"`
	DataScope  string   `json:"dataScope"`
	Department string   `json:"department"`
	Category   []string `json:"category"`
	Period     string   `json:"period"`
}

type GenerateResult struct {
	ReportId int    `json:"reportId"`
	Status   string `json:"status"`
	FileName string `json:"fileName"`
}

type DownloadResult struct {
	FilePath string
	FileName string
	Format   models.OutputFormat
}

// ReportService orchestrates validation, scope resolution, aggregation,
// rendering and artifact persistence for one generation attempt.
type ReportService struct {
	DB          *gorm.DB
	Logger      *logrus.Logger
	StoragePath string

	PdfRenderer   ReportRenderer
	ExcelRenderer ReportRenderer
}

func NewReportService(db *gorm.DB, logger *logrus.Logger, storagePath string) *ReportService {
	return &ReportService{
		DB:            db,
		Logger:        logger,
		StoragePath:   storagePath,
		PdfRenderer:   reports.PdfRenderer{},
		ExcelRenderer: reports.ExcelRenderer{},
	}
}

// Generate runs a generation for an authenticated caller.
func (s *ReportService) Generate(ctx context.Context, principal *models.ReportPrincipal, req *GenerateRequest) (*GenerateResult, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}
	return s.generateCore(ctx, principal.UserId, principal.Role, principal.DepartmentName, req)
}

// GenerateInternal runs a generation on behalf of the scheduler (SYSTEM:
// user id 0, ADMIN role, no department of its own).
func (s *ReportService) GenerateInternal(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	return s.generateCore(ctx, 0, models.UserRoleAdmin, "", req)
}

func (s *ReportService) generateCore(
	ctx context.Context,
	requestedBy int,
	role models.UserRole,
	requesterDepartment string,
	req *GenerateRequest,
) (*GenerateResult, error) {

	if req == nil {
		return nil, ErrInvalidReportType
	}

	typ := models.FindReportType(strings.TrimSpace(req.ReportTypeId))
	if typ == nil {
		return nil, ErrInvalidReportType
	}

	isAdmin := role == models.UserRoleAdmin
	if typ.AdminOnly && !isAdmin {
		return nil, ErrAdminOnlyReport
	}

	// The requested format, when present, must match the type's canonical
	// format ("XLSX" is accepted as an alias of EXCEL).
	if raw := safeUpper(req.Filters.Format); raw != "" {
		requested, ok := parseFormat(raw)
		if !ok || requested != typ.Format {
			return nil, ErrFormatMismatch
		}
	}
	format := typ.Format

	scope := resolveScope(isAdmin, safeUpper(req.Filters.DataScope))

	var targetDept string
	if scope == models.DataScopeDept {
		targetDept = strings.TrimSpace(req.Filters.Department)
		if targetDept == "" {
			return nil, ErrMissingDepartment
		}
	}

	categoryJson, err := utils.MarshalToJSON(nonNil(req.Filters.Category))
	if err != nil {
		return nil, err
	}

	job := &models.ReportJob{
		RequestedBy:        requestedBy,
		RoleSnapshot:       role,
		DepartmentSnapshot: snapshotDepartment(scope, targetDept, requesterDepartment),
		ReportTypeId:       typ.Id,
		Period:             strings.TrimSpace(req.Filters.Period),
		DataScope:          scope,
		CategoryJson:       categoryJson,
		OutputFormat:       format,
		Status:             models.ReportStatusGenerating,
	}
	if r := models.ToMonthRangeOrNull(job.Period); r != nil {
		job.PeriodStart = &r[0]
		job.PeriodEnd = &r[1]
	}

	// The persisted job is the idempotency anchor: its id is the identity
	// of this attempt from here on.
	if err := models.CreateReportJob(ctx, s.DB, job); err != nil {
		return nil, err
	}

	now := time.Now()
	dir := models.ReportStorageDir(s.StoragePath, now, job.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.markFailed(ctx, job, errors.New("Failed to create directories"))
		return nil, fmt.Errorf("storage error: %w", err)
	}

	fileName := models.BuildReportFileName(job.Period, typ.Id, format.Extension())
	outPath := filepath.Join(dir, fileName)

	if models.RequiresApprovedSummary(typ.Id) {
		if err := s.computeApprovedSummary(ctx, job.ID); err != nil {
			s.markFailed(ctx, job, err)
			return nil, fmt.Errorf("aggregation failed: %w", err)
		}
	}

	// Re-read from storage before rendering so the renderer never sees a
	// write-then-read skew against what was just persisted.
	fresh, err := models.GetReportJob(ctx, s.DB, job.ID)
	if err != nil {
		return nil, err
	}

	renderer := s.rendererFor(format)
	if err := renderer.Render(outPath, fresh); err != nil {
		// The job and its directory are left in place for diagnosis; no
		// partial file is ever exposed as ready.
		s.markFailed(ctx, fresh, err)
		return nil, fmt.Errorf("generate failed: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		s.markFailed(ctx, fresh, err)
		return nil, fmt.Errorf("generate failed: %w", err)
	}
	checksum, err := sha256Hex(outPath)
	if err != nil {
		s.markFailed(ctx, fresh, err)
		return nil, fmt.Errorf("checksum failed: %w", err)
	}

	rf, err := models.CreateOrReuseReportFile(ctx, s.DB, &models.ReportFile{
		ReportJobId: fresh.ID,
		FileName:    fileName,
		FileUrl:     outPath,
		FileType:    format,
		FileSize:    info.Size(),
		Checksum:    checksum,
	})
	if err != nil {
		s.markFailed(ctx, fresh, err)
		return nil, fmt.Errorf("generate failed: %w", err)
	}

	fresh.Status = models.ReportStatusReady
	fresh.FileName = &rf.FileName
	fresh.FilePath = &outPath
	fresh.ErrorMessage = nil
	if err := s.DB.WithContext(ctx).Save(fresh).Error; err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"module":    "reportGeneration",
		"report_id": fresh.ID,
		"type":      fresh.ReportTypeId,
		"scope":     fresh.DataScope,
		"checksum":  checksum,
	}).Info("report generated")

	return &GenerateResult{
		ReportId: fresh.ID,
		Status:   string(fresh.Status),
		FileName: rf.FileName,
	}, nil
}

// computeApprovedSummary pins the approved totals onto the persisted job,
// reading the snapshot back from storage rather than trusting the
// in-memory copy. A job without a parseable period range gets zero/zero.
func (s *ReportService) computeApprovedSummary(ctx context.Context, jobId int) error {
	saved, err := models.GetReportJob(ctx, s.DB, jobId)
	if err != nil {
		return err
	}

	agg := reports.ApprovedAgg{}
	if saved.PeriodStart != nil && saved.PeriodEnd != nil {
		dept := ""
		if saved.DepartmentSnapshot != nil {
			dept = *saved.DepartmentSnapshot
		}
		agg, err = reports.ApprovedSummary(ctx, s.DB, saved.DataScope, saved.RequestedBy, dept, *saved.PeriodStart, *saved.PeriodEnd)
		if err != nil {
			return err
		}
	}

	saved.ApprovedTotal = &agg.Total
	saved.ApprovedCount = &agg.Count
	return s.DB.WithContext(ctx).Save(saved).Error
}

func (s *ReportService) rendererFor(format models.OutputFormat) ReportRenderer {
	if format == models.OutputFormatPDF {
		return s.PdfRenderer
	}
	return s.ExcelRenderer
}

// markFailed records the terminal FAILED transition with a truncated error
// message; best effort, generation is already failing.
func (s *ReportService) markFailed(ctx context.Context, job *models.ReportJob, cause error) {
	job.Status = models.ReportStatusFailed
	msg := TruncateError(cause)
	job.ErrorMessage = &msg
	job.FileName = nil
	job.FilePath = nil
	if err := s.DB.WithContext(ctx).Save(job).Error; err != nil {
		s.Logger.WithFields(logrus.Fields{
			"module":    "reportGeneration",
			"report_id": job.ID,
		}).Error("failed to record FAILED status: " + err.Error())
	}
}

// Download locates the most recent artifact of a READY job, logging the
// download in the same transaction that validated the file exists.
func (s *ReportService) Download(ctx context.Context, principal *models.ReportPrincipal, reportId int) (*DownloadResult, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}

	job, err := models.GetReportJob(ctx, s.DB, reportId)
	if err != nil {
		return nil, err
	}
	if err := assertCanAccess(principal, job); err != nil {
		return nil, err
	}
	if job.Status != models.ReportStatusReady {
		return nil, ErrReportNotReady
	}

	var result *DownloadResult
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rf, err := models.LatestReportFileForJob(ctx, tx, job.ID)
		if err != nil {
			return err
		}
		if _, err := os.Stat(rf.FileUrl); err != nil {
			return utils.ErrorRecordNotFound
		}
		if err := models.InsertReportDownloadLog(ctx, tx, rf, principal.UserId); err != nil {
			return err
		}
		result = &DownloadResult{FilePath: rf.FileUrl, FileName: rf.FileName, Format: job.OutputFormat}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DownloadFile streams one specific artifact by file id, with the same
// authorization and readiness rules as the job-level download.
func (s *ReportService) DownloadFile(ctx context.Context, principal *models.ReportPrincipal, fileId int) (*DownloadResult, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}

	rf, err := models.GetReportFile(ctx, s.DB, fileId)
	if err != nil {
		return nil, err
	}
	job, err := models.GetReportJob(ctx, s.DB, rf.ReportJobId)
	if err != nil {
		return nil, err
	}
	if err := assertCanAccess(principal, job); err != nil {
		return nil, err
	}
	if job.Status != models.ReportStatusReady {
		return nil, ErrReportNotReady
	}

	var result *DownloadResult
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := os.Stat(rf.FileUrl); err != nil {
			return utils.ErrorRecordNotFound
		}
		if err := models.InsertReportDownloadLog(ctx, tx, rf, principal.UserId); err != nil {
			return err
		}
		result = &DownloadResult{FilePath: rf.FileUrl, FileName: rf.FileName, Format: job.OutputFormat}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ReportService) ListFiles(ctx context.Context, principal *models.ReportPrincipal, reportId int) ([]models.ReportFile, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}
	job, err := models.GetReportJob(ctx, s.DB, reportId)
	if err != nil {
		return nil, err
	}
	if err := assertCanAccess(principal, job); err != nil {
		return nil, err
	}
	return models.ListReportFilesForJob(ctx, s.DB, job.ID)
}

func (s *ReportService) ListDownloadLogsByJob(ctx context.Context, principal *models.ReportPrincipal, reportId int) ([]models.ReportDownloadLog, error) {
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return models.ListDownloadLogsByJob(ctx, s.DB, reportId)
}

func (s *ReportService) ListDownloadLogsByFile(ctx context.Context, principal *models.ReportPrincipal, fileId int) ([]models.ReportDownloadLog, error) {
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return models.ListDownloadLogsByFile(ctx, s.DB, fileId)
}

func assertCanAccess(principal *models.ReportPrincipal, job *models.ReportJob) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.UserId != job.RequestedBy {
		return ErrNotYourReport
	}
	return nil
}

// resolveScope applies the scope rules: non-admins are always forced to MY;
// admins default to DEPT, and unrecognized values also fall back to DEPT.
func resolveScope(isAdmin bool, requested string) models.DataScope {
	if !isAdmin {
		return models.DataScopeMy
	}
	switch requested {
	case "ALL":
		return models.DataScopeAll
	case "MY":
		return models.DataScopeMy
	default:
		return models.DataScopeDept
	}
}

// snapshotDepartment decides what department is pinned onto the job:
// DEPT pins the explicitly supplied target department (not the caller's
// own), MY pins the caller's department when known, ALL pins nothing.
func snapshotDepartment(scope models.DataScope, targetDept string, requesterDept string) *string {
	switch scope {
	case models.DataScopeDept:
		d := strings.TrimSpace(targetDept)
		return &d
	case models.DataScopeMy:
		d := strings.TrimSpace(requesterDept)
		if d == "" {
			return nil
		}
		return &d
	default:
		return nil
	}
}

func parseFormat(upper string) (models.OutputFormat, bool) {
	switch upper {
	case "PDF":
		return models.OutputFormatPDF, true
	case "EXCEL", "XLSX":
		return models.OutputFormatExcel, true
	default:
		return "", false
	}
}

func safeUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// TruncateError caps a recorded error message at 500 characters.
func TruncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if msg == "" {
		msg = "unknown error"
	}
	if len(msg) > errorMessageLimit {
		return msg[:errorMessageLimit]
	}
	return msg
}

func sha256Hex(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
