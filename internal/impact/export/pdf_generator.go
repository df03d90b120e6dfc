package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"carbondesk/buyer-portal/buyer-portal-backend/internal/impact"
)

const (
	certFontFamily = "Arial"
	certDateFormat = "January 2, 2006"
)

var (
	certAccent = [3]int{34, 102, 68}
	certMuted  = [3]int{100, 100, 100}
)

// CertificatePDF renders an issued certificate as a single-page PDF
// suitable for download and print.
func CertificatePDF(cert *impact.ImpactCertificate) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(false, 15)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()

	// Decorative border
	pdf.SetDrawColor(certAccent[0], certAccent[1], certAccent[2])
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, pageWidth-20, pageHeight-20, "D")
	pdf.SetLineWidth(0.3)
	pdf.Rect(13, 13, pageWidth-26, pageHeight-26, "D")

	pdf.SetY(28)
	pdf.SetFont(certFontFamily, "B", 26)
	pdf.SetTextColor(certAccent[0], certAccent[1], certAccent[2])
	pdf.CellFormat(0, 14, "Certificate of Carbon Offset", "", 1, "C", false, 0, "")

	pdf.SetFont(certFontFamily, "", 11)
	pdf.SetTextColor(certMuted[0], certMuted[1], certMuted[2])
	pdf.CellFormat(0, 7, cert.Issuer, "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont(certFontFamily, "", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, "This certifies that the holder has offset", "", 1, "C", false, 0, "")

	pdf.SetFont(certFontFamily, "B", 30)
	pdf.SetTextColor(certAccent[0], certAccent[1], certAccent[2])
	pdf.CellFormat(0, 16, fmt.Sprintf("%.2f %s", cert.Quantification, cert.Unit), "", 1, "C", false, 0, "")

	pdf.SetFont(certFontFamily, "", 12)
	pdf.SetTextColor(0, 0, 0)
	projectsLine := "through verified carbon credit purchases"
	if n := len(cert.ProjectIDs); n == 1 {
		projectsLine = "through verified purchases across 1 project"
	} else if n > 1 {
		projectsLine = fmt.Sprintf("through verified purchases across %d projects", n)
	}
	pdf.CellFormat(0, 8, projectsLine, "", 1, "C", false, 0, "")

	pdf.Ln(10)
	writeCertField(pdf, "Serial Number", cert.SerialNumber)
	writeCertField(pdf, "Issue Date", cert.IssueDate.Format(certDateFormat))
	writeCertField(pdf, "Valid Until", cert.ValidUntil.Format(certDateFormat))
	writeCertField(pdf, "Verified By", cert.Verifier)

	// Footer
	pdf.SetY(pageHeight - 32)
	pdf.SetFont(certFontFamily, "I", 9)
	pdf.SetTextColor(certMuted[0], certMuted[1], certMuted[2])
	pdf.CellFormat(0, 5, fmt.Sprintf("Certificate ID: %s", cert.ID.String()), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Authenticity can be verified with the issuing registry using the serial number above.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// writeCertField writes one centered label/value line
func writeCertField(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont(certFontFamily, "B", 11)
	pdf.SetTextColor(certMuted[0], certMuted[1], certMuted[2])
	pdf.CellFormat(0, 7, fmt.Sprintf("%s:  %s", label, value), "", 1, "C", false, 0, "")
}
