// seed-admin creates or updates the ERP console admin user (username: erpAdmin).
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/hrfocus/erp_backend/config"
	"bitbucket.org/hrfocus/erp_backend/models"
	"bitbucket.org/hrfocus/erp_backend/utils"
	"gorm.io/gorm"
)

const (
	adminEmployeeNo = "EMP-0000"
	adminUsername   = "erpAdmin"
	adminPassword   = "3rp@Admin"
	adminName       = "ERP Admin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashedStr := string(hashed)

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		u := models.User{
			EmployeeNo: adminEmployeeNo,
			Username:   adminUsername,
			Name:       adminName,
			Password:   hashedStr,
			Role:       models.UserRoleAdmin,
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created admin user %q (id=%d)\n", adminUsername, u.ID)
		return
	}

	existing.Password = hashedStr
	existing.Role = models.UserRoleAdmin
	if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	// Session cache may hold the stale row.
	_ = config.RemoveRedisKey("User:" + adminUsername)
	fmt.Printf("updated admin user %q (id=%d)\n", adminUsername, existing.ID)
}
