package reports

import (
	"bitbucket.org/hrfocus/erp_backend/models"
	"github.com/go-pdf/fpdf"
)

// PdfRenderer writes the key/value report summary as a single A4 page.
type PdfRenderer struct{}

func (PdfRenderer) Render(path string, job *models.ReportJob) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(17, 20, 17)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Report Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, "Confidential", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range reportRows(job) {
		pdf.CellFormat(50, 7, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}

	return pdf.OutputFileAndClose(path)
}
