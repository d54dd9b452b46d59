package main

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/hrfocus/erp_backend/config"
	"bitbucket.org/hrfocus/erp_backend/models"
	"bitbucket.org/hrfocus/erp_backend/utils"
	"bitbucket.org/hrfocus/erp_backend/workflow"
	"github.com/gin-gonic/gin"
)

// principalFromRequest rebuilds the caller identity the session middleware
// stored on the request context. nil means unauthenticated.
func principalFromRequest(c *gin.Context) *models.ReportPrincipal {
	ctx := c.Request.Context()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil
	}
	role, _ := utils.GetRoleFromContext(ctx)
	dept, _ := utils.GetDepartmentNameFromContext(ctx)
	return &models.ReportPrincipal{
		UserId:         userId,
		Role:           models.UserRole(role),
		DepartmentName: dept,
	}
}

func writeReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, workflow.ErrAdminOnlyReport), errors.Is(err, workflow.ErrNotYourReport):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrInvalidReportType),
		errors.Is(err, workflow.ErrFormatMismatch),
		errors.Is(err, workflow.ErrMissingDepartment),
		errors.Is(err, workflow.ErrInvalidSchedule),
		errors.Is(err, workflow.ErrInvalidCron):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, workflow.ErrReportNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "report not ready"})
	default:
		// Internal detail stays in the logs, never in the response.
		config.LogError(config.GetLogger(), "reports.go", c.FullPath(), "request failed", nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func requireAdmin(c *gin.Context) (*models.ReportPrincipal, bool) {
	principal := principalFromRequest(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	if !principal.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return nil, false
	}
	return principal, true
}

func reportTypesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := principalFromRequest(c)
		if principal == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"types": models.ListReportTypes(principal.IsAdmin())})
	}
}

func generateReportHandler(service *workflow.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := principalFromRequest(c)
		if principal == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req workflow.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		result, err := service.Generate(c.Request.Context(), principal, &req)
		if err != nil {
			writeReportError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func downloadReportHandler(service *workflow.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := principalFromRequest(c)
		if principal == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathId(c, "id")
		if !ok {
			return
		}

		result, err := service.Download(c.Request.Context(), principal, id)
		if err != nil {
			writeReportError(c, err)
			return
		}
		serveReportFile(c, result)
	}
}

func downloadReportFileHandler(service *workflow.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := principalFromRequest(c)
		if principal == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		fileId, ok := pathId(c, "fileId")
		if !ok {
			return
		}

		result, err := service.DownloadFile(c.Request.Context(), principal, fileId)
		if err != nil {
			writeReportError(c, err)
			return
		}
		serveReportFile(c, result)
	}
}

func serveReportFile(c *gin.Context, result *workflow.DownloadResult) {
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Header("Content-Type", result.Format.ContentType())
	c.File(result.FilePath)
}

func listReportFilesHandler(service *workflow.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := principalFromRequest(c)
		if principal == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := pathId(c, "id")
		if !ok {
			return
		}

		files, err := service.ListFiles(c.Request.Context(), principal, id)
		if err != nil {
			writeReportError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": files})
	}
}

func listReportDownloadsHandler(service *workflow.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requireAdmin(c)
		if !ok {
			return
		}
		id, ok := pathId(c, "id")
		if !ok {
			return
		}

		logs, err := service.ListDownloadLogsByJob(c.Request.Context(), principal, id)
		if err != nil {
			writeReportError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"downloads": logs})
	}
}

func listFileDownloadsHandler(service *workflow.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requireAdmin(c)
		if !ok {
			return
		}
		fileId, ok := pathId(c, "fileId")
		if !ok {
			return
		}

		logs, err := service.ListDownloadLogsByFile(c.Request.Context(), principal, fileId)
		if err != nil {
			writeReportError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"downloads": logs})
	}
}

func listSchedulesHandler(admin *workflow.ScheduleAdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireAdmin(c); !ok {
			return
		}
		schedules, err := admin.List(c.Request.Context())
		if err != nil {
			writeReportError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"schedules": schedules})
	}
}

func createScheduleHandler(admin *workflow.ScheduleAdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireAdmin(c); !ok {
			return
		}
		var req workflow.ScheduleCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		sched, err := admin.Create(c.Request.Context(), &req)
		if err != nil {
			writeReportError(c, err)
			return
		}
		c.JSON(http.StatusCreated, sched)
	}
}

func updateScheduleHandler(admin *workflow.ScheduleAdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireAdmin(c); !ok {
			return
		}
		id, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req workflow.ScheduleUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		sched, err := admin.Update(c.Request.Context(), id, &req)
		if err != nil {
			writeReportError(c, err)
			return
		}
		c.JSON(http.StatusOK, sched)
	}
}

func runScheduleNowHandler(admin *workflow.ScheduleAdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := requireAdmin(c); !ok {
			return
		}
		id, ok := pathId(c, "id")
		if !ok {
			return
		}

		sched, result, err := admin.RunNow(c.Request.Context(), id)
		if err != nil {
			writeReportError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"schedule": sched, "result": result})
	}
}
