package config

import (
	"os"
	"strings"
)

// ReportSchedulerDisabled turns off the recurring report sweep on this
// instance. Useful when running one-off jobs against a shared database.
//
// Set via env:
// - REPORT_SCHEDULER_DISABLED=true
func ReportSchedulerDisabled() bool {
	return boolFromEnv("REPORT_SCHEDULER_DISABLED")
}

// SkipMigrations disables AutoMigrate on startup. AutoMigrate can run DDL
// that blocks tables; run migrations as a separate job instead.
//
// Set via env:
// - SKIP_MIGRATIONS=true
func SkipMigrations() bool {
	return boolFromEnv("SKIP_MIGRATIONS")
}

// ReportStoragePath is the local root for generated report artifacts.
// Layout under it: {year}/{month}/{jobId}/Report_{period}_{typeId}.{pdf|xlsx}
func ReportStoragePath() string {
	v := strings.TrimSpace(os.Getenv("REPORT_STORAGE_PATH"))
	if v == "" {
		return "report-storage"
	}
	return v
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
