package infra

// pdf.go — closing-summary PDF generation using go-pdf/fpdf.
// One A5 page per period: tienda reference, open/close timestamps and the
// four accumulated totals. The output file is saved to
// storagePath/resumen_{periodoID}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"cuadrecaja/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateResumenPDF renders the summary of a closed period.
// Returns the absolute path to the generated file.
func GenerateResumenPDF(periodo *model.CierrePeriodo, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("resumen_%s.pdf", periodo.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Cuadre de Caja", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Resumen de período", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Period info ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Tienda: "+periodo.TiendaID.String(), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Apertura: "+periodo.FechaInicio.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if periodo.FechaFin != nil {
		pdf.CellFormat(contentW, 5, "Cierre: "+periodo.FechaFin.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	col1 := contentW * 0.6
	col2 := contentW * 0.4
	row := func(label string, monto decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(col1, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, "$"+monto.StringFixed(2), "", 1, "R", false, 0, "")
	}

	row("Total de ventas:", periodo.TotalVentas, true)
	row("Ganancia:", periodo.TotalGanancia, false)
	row("Inversión:", periodo.TotalInversion, false)
	row("Transferencias:", periodo.TotalTransferencia, false)

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
