package models

import (
	"log"

	"bitbucket.org/hrfocus/erp_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Expense{},
		&ReportJob{}, &ReportFile{}, &ReportDownloadLog{},
		&ReportSchedule{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
