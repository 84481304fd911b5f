package pdfexport

import (
	"bytes"
	"testing"
	"time"
)

func testDocument() Document {
	return Document{
		PatientName:     "Rahim Uddin",
		PatientAge:      45,
		PatientGender:   "male",
		DoctorName:      "Dr. Arafat Rahman",
		DoctorSpecialty: "Medicine Specialist",
		Diagnosis:       "Viral Fever",
		Summary:         "Three days of fever with body aches. No respiratory symptoms.",
		Advice:          []string{"Drink plenty of fluids", "Rest for 3 days"},
		Medications:     []string{"Napa (Paracetamol 500mg) - 1 tablet 3 times daily - 3 days"},
		Tests:           []string{"CBC", "Dengue NS1"},
		GeneratedAt:     time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	data, err := Render(testDocument())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
	if len(data) < 1000 {
		t.Errorf("suspiciously small PDF: %d bytes", len(data))
	}
}

func TestRender_EmptyLists(t *testing.T) {
	doc := testDocument()
	doc.Advice = nil
	doc.Medications = nil
	doc.Tests = nil

	data, err := Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}
