package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Receipt holds the fields printed on an official payment receipt.
type Receipt struct {
	PortalName    string
	ReceiptID     string
	StudentName   string
	StudentPhone  string
	CourseName    string
	BatchName     string
	Amount        string
	PaymentMethod string
	PaymentDate   string
}

// ReceiptRenderer produces the branded A4 receipt document.
type ReceiptRenderer struct{}

// NewReceiptRenderer constructs a receipt renderer.
func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{}
}

// Render draws the receipt: blue banner, receipt/date line, student box,
// single-line payment table and total.
func (r *ReceiptRenderer) Render(receipt Receipt) ([]byte, error) {
	if receipt.ReceiptID == "" {
		return nil, fmt.Errorf("receipt id required")
	}
	portal := receipt.PortalName
	if portal == "" {
		portal = "MyanEdu Portal"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFillColor(37, 99, 235)
	pdf.Rect(0, 0, 210, 40, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 22)
	pdf.SetXY(0, 12)
	pdf.CellFormat(210, 10, portal, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 14)
	pdf.CellFormat(210, 8, "Official Payment Receipt", "", 1, "C", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 12)
	pdf.SetXY(20, 55)
	pdf.CellFormat(110, 8, fmt.Sprintf("Receipt ID: %s", receipt.ReceiptID), "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, fmt.Sprintf("Date: %s", receipt.PaymentDate), "", 1, "R", false, 0, "")

	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(20, 70, 170, 25, "D")
	pdf.SetXY(30, 78)
	pdf.CellFormat(90, 8, fmt.Sprintf("Student: %s", receipt.StudentName), "", 0, "L", false, 0, "")
	pdf.CellFormat(70, 8, fmt.Sprintf("Phone: %s", receipt.StudentPhone), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 14)
	pdf.SetXY(20, 108)
	pdf.CellFormat(170, 8, "Payment Details", "", 1, "L", false, 0, "")

	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(20, 120, 170, 10, "F")
	pdf.SetFont("Arial", "", 12)
	pdf.SetXY(30, 122)
	pdf.CellFormat(110, 6, "Description", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, "Amount", "", 1, "L", false, 0, "")

	description := receipt.CourseName
	if receipt.BatchName != "" {
		description = fmt.Sprintf("%s (%s)", receipt.CourseName, receipt.BatchName)
	}
	pdf.SetXY(30, 136)
	pdf.CellFormat(110, 6, description, "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, fmt.Sprintf("%s Ks", receipt.Amount), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetXY(30, 143)
	pdf.CellFormat(110, 5, fmt.Sprintf("Method: %s", receipt.PaymentMethod), "", 1, "L", false, 0, "")

	pdf.Line(140, 155, 190, 155)
	pdf.SetFont("Arial", "B", 14)
	pdf.SetXY(110, 160)
	pdf.CellFormat(80, 8, fmt.Sprintf("Total: %s Ks", receipt.Amount), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(0, 195)
	pdf.CellFormat(210, 5, "Thank you for your payment!", "", 1, "C", false, 0, "")
	pdf.CellFormat(210, 5, "This is a computer generated receipt.", "", 1, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
