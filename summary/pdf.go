package summary

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"golang.org/x/text/encoding/charmap"
)

const qrLevel = qrcode.Low

// QR encodes text as a PNG QR code of size x size pixels.
func QR(text string, size int) ([]byte, error) {
	png, err := qrcode.Encode(text, qrLevel, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// PDFOptions tune the PDF receipt.
type PDFOptions struct {
	// FontPath is a UTF-8 TrueType font. Without it the core Helvetica font is
	// used, which cannot draw CJK product names.
	FontPath string
	// QR is a PNG placed under the totals, normally QR of the text summary.
	// Nil leaves the code out.
	QR []byte
}

// CoreFontCanDraw reports whether text survives the cp1252 core font used
// when PDFOptions.FontPath is empty.
func CoreFontCanDraw(text string) bool {
	_, err := charmap.Windows1252.NewEncoder().String(text)
	return err == nil
}

// PDF renders r as a one-page A4 receipt.
func (f *Formatter) PDF(r Receipt, opts PDFOptions) ([]byte, error) {
	l := f.labels

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)

	family := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if opts.FontPath != "" {
		family = "receipt"
		pdf.AddUTF8Font(family, "", opts.FontPath)
		pdf.AddUTF8Font(family, "B", opts.FontPath)
		tr = func(s string) string { return s }
	}
	pdf.AddPage()

	pdf.SetFont(family, "B", 18)
	pdf.CellFormat(0, 12, tr(l.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "", 12)
	pdf.MultiCell(0, 8, tr(fmt.Sprintf("%s: %s\n%s: %s\n%s: %s",
		l.Customer, r.Customer,
		l.OrderNo, r.OrderID,
		l.Date, r.IssuedAt.Format("2006-01-02 15:04"),
	)), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont(family, "B", 11)
	pdf.CellFormat(90, 8, tr("Item"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, tr("Qty"), "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, tr(l.Currency), "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, tr(l.PointsUnit), "B", 1, "R", false, 0, "")

	pdf.SetFont(family, "", 11)
	for _, line := range r.Lines {
		pdf.CellFormat(90, 8, tr(line.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", line.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, FormatAmount(line.Amount), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, FormatPoints(line.Points), "", 1, "R", false, 0, "")
	}

	pdf.SetFont(family, "B", 12)
	pdf.CellFormat(110, 10, tr(l.TotalAmount+" / "+l.TotalPoints), "T", 0, "L", false, 0, "")
	pdf.CellFormat(35, 10, FormatAmount(r.Totals.Amount), "T", 0, "R", false, 0, "")
	pdf.CellFormat(25, 10, FormatPoints(r.Totals.Points), "T", 1, "R", false, 0, "")

	if len(opts.QR) > 0 {
		imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", imgOpts, bytes.NewReader(opts.QR))
		pdf.Ln(8)
		pdf.ImageOptions("qr", 20, pdf.GetY(), 50, 50, false, imgOpts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
