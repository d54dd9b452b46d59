package reports

import (
	"fmt"

	"bitbucket.org/hrfocus/erp_backend/models"
	"github.com/xuri/excelize/v2"
)

// ExcelRenderer writes the key/value report summary as an .xlsx workbook.
type ExcelRenderer struct{}

func (ExcelRenderer) Render(path string, job *models.ReportJob) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "Key")
	f.SetCellValue(sheetName, "B1", "Value")
	if err := f.SetCellStyle(sheetName, "A1", "B1", headerStyle); err != nil {
		return err
	}

	for i, row := range reportRows(job) {
		f.SetCellValue(sheetName, "A"+fmt.Sprint(i+2), row[0])
		f.SetCellValue(sheetName, "B"+fmt.Sprint(i+2), row[1])
	}

	if err := f.SetColWidth(sheetName, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "B", "B", 44); err != nil {
		return err
	}

	return f.SaveAs(path)
}
