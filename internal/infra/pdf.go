package infra

// pdf.go: sale receipt generation using go-pdf/fpdf.
// A7-size receipt-style ticket with:
//   - Business name header
//   - Sale reference and date
//   - Product line (name, quantity, unit price)
//   - Bold total
//   - Customer and notes when present

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"

	"github.com/go-pdf/fpdf"
)

// ReceiptPDF renders sale receipts.
type ReceiptPDF struct {
	businessName string
}

func NewReceiptPDF(businessName string) *ReceiptPDF {
	if businessName == "" {
		businessName = "Dental Gestec"
	}
	return &ReceiptPDF{businessName: businessName}
}

// Write renders the receipt for sale into w.
func (r *ReceiptPDF) Write(w io.Writer, sale *dto.SaleResponse) error {
	pdf := r.render(sale)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render receipt: %w", err)
	}
	return nil
}

// WriteFile renders the receipt to dir/recibo_<id>.pdf, creating dir if needed.
// Returns the path of the generated file.
func (r *ReceiptPDF) WriteFile(dir string, sale *dto.SaleResponse) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(dir, fmt.Sprintf("recibo_%s.pdf", sale.ID))

	pdf := r.render(sale)
	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func (r *ReceiptPDF) render(sale *dto.SaleResponse) *fpdf.Fpdf {
	// A7 ≈ 74mm × 105mm
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(true, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(r.businessName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr("Recibo de venta"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Sale info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(contentW, 4, "Ref. "+shortID(sale.ID.String()), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr("Fecha: "+receiptDate(sale.SaleDate)), "", 1, "L", false, 0, "")
	if sale.CustomerName != "" {
		pdf.CellFormat(contentW, 4, tr("Cliente: "+sale.CustomerName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Item ─────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.32

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "P. unit.", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	name := []rune(sale.ProductName)
	if len(name) > 22 {
		name = append(name[:21], '.')
	}
	pdf.CellFormat(col1, 5, tr(string(name)), "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", sale.Quantity), "", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "$"+sale.UnitPrice.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	if sale.Notes != "" {
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "", 6)
		pdf.MultiCell(contentW, 3, tr(sale.Notes), "", "L", false)
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")
	return pdf
}

func shortID(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:8]
}

// receiptDate trims an RFC 3339 timestamp to "YYYY-MM-DD HH:MM".
func receiptDate(ts string) string {
	if len(ts) < 16 {
		return ts
	}
	return ts[:10] + " " + ts[11:16]
}
