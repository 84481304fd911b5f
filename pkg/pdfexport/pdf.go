// Package pdfexport renders consultation reports as downloadable PDFs.
// The layout uses the built-in Helvetica core font, so all content must be
// English; the triage pipeline generates reports in English for this reason.
package pdfexport

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Document holds everything that goes on the report page.
type Document struct {
	PatientName   string
	PatientAge    int
	PatientGender string

	DoctorName      string
	DoctorSpecialty string

	Diagnosis   string
	Summary     string
	Advice      []string
	Medications []string
	Tests       []string

	GeneratedAt time.Time
}

// Render produces a single-page A4 consultation report.
func Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Consultation Report", false)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(13, 110, 253)
	pdf.CellFormat(0, 10, "Niramoy Telehealth", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 7, "Consultation Report", "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(5)

	// Consultation details
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	when := doc.GeneratedAt
	if when.IsZero() {
		when = time.Now()
	}
	pdf.CellFormat(95, 6, fmt.Sprintf("Consulted: %s", doc.DoctorName), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", when.Format("2 Jan 2006")), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 6, fmt.Sprintf("Specialty: %s", doc.DoctorSpecialty), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.CellFormat(0, 6, fmt.Sprintf("Patient: %s    Age: %d    Gender: %s",
		doc.PatientName, doc.PatientAge, doc.PatientGender), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section(pdf, "Provisional Diagnosis")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.MultiCell(0, 6, doc.Diagnosis, "", "L", false)
	pdf.Ln(2)

	section(pdf, "Summary")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, doc.Summary, "", "L", false)
	pdf.Ln(2)

	bulletSection(pdf, "Advice", doc.Advice)
	bulletSection(pdf, "Medications (OTC)", doc.Medications)
	bulletSection(pdf, "Suggested Tests", doc.Tests)

	// Footer disclaimer
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.MultiCell(0, 4, "This report was generated from an AI-assisted consultation and is not a substitute for an in-person medical examination. Consult a registered physician before taking prescription medication.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(13, 110, 253)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func bulletSection(pdf *fpdf.Fpdf, title string, items []string) {
	section(pdf, title)
	pdf.SetFont("Helvetica", "", 10)
	if len(items) == 0 {
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, "None", "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
		return
	}
	for _, item := range items {
		pdf.MultiCell(0, 5, "- "+item, "", "L", false)
	}
	pdf.Ln(2)
}
