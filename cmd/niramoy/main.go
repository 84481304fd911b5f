// Command niramoy is a terminal symptom triage chat.
//
// It asks for the patient's details, matches them with one of the specialist
// personas, and runs a Bangla consultation chat. The conversation can be
// exported as an English PDF report at any point.
//
// Usage:
//
//	go run ./cmd/niramoy
//
// Environment variables:
//
//	GEMINI_API_KEY - Required (GOOGLE_API_KEY also accepted)
//
// Commands during the chat:
//
//	/image <path>   Attach a photo to your next message
//	/report         Generate and save the consultation report PDF
//	/exit           End the consultation
package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	niramoy "github.com/niramoy/niramoy-go/sdk"

	"github.com/niramoy/niramoy-go/internal/dotenv"
	"github.com/niramoy/niramoy-go/pkg/capture"
	"github.com/niramoy/niramoy-go/pkg/gemini"
	"github.com/niramoy/niramoy-go/pkg/pdfexport"
)

func main() {
	_ = dotenv.Load()

	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		log.Fatal("GEMINI_API_KEY required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	client := niramoy.NewClient(niramoy.WithLogger(logger))

	fmt.Println("╔════════════════════════════════════════════════════════════╗")
	fmt.Println("║                   Niramoy Symptom Triage                   ║")
	fmt.Println("╠════════════════════════════════════════════════════════════╣")
	fmt.Println("║  Describe your symptoms and we will match you with the     ║")
	fmt.Println("║  right specialist for a consultation chat.                 ║")
	fmt.Println("║                                                            ║")
	fmt.Println("║  Commands:                                                 ║")
	fmt.Println("║    /image <path>   Attach a photo to your next message     ║")
	fmt.Println("║    /report         Save the consultation report as PDF     ║")
	fmt.Println("║    /exit           End the consultation                    ║")
	fmt.Println("╚════════════════════════════════════════════════════════════╝")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	info := collectPatientInfo(scanner)

	ctx := context.Background()
	fmt.Println("\nFinding the right specialist...")
	result := client.Triage.Classify(ctx, info)
	doctor := result.Specialist

	fmt.Printf("\n%s (%s)\n", doctor.Name, doctor.Specialty)
	fmt.Printf("%s\n\n", result.Reasoning)

	consult := client.Triage.StartConsultation(doctor, info)
	runChat(ctx, scanner, consult)
}

func collectPatientInfo(scanner *bufio.Scanner) niramoy.PatientInfo {
	var info niramoy.PatientInfo
	info.Name = ask(scanner, "Name: ")
	for {
		age, err := strconv.Atoi(ask(scanner, "Age: "))
		if err == nil && age > 0 && age < 150 {
			info.Age = age
			break
		}
		fmt.Println("Please enter a valid age.")
	}
	info.Gender = ask(scanner, "Gender: ")
	info.Symptoms = ask(scanner, "Symptoms: ")
	return info
}

func ask(scanner *bufio.Scanner, prompt string) string {
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			os.Exit(0)
		}
		text := strings.TrimSpace(scanner.Text())
		if text != "" {
			return text
		}
	}
}

func runChat(ctx context.Context, scanner *bufio.Scanner, consult *niramoy.Consultation) {
	var pendingImage *gemini.Blob

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/exit":
			return
		case line == "/report":
			saveReport(ctx, consult)
			continue
		case strings.HasPrefix(line, "/image "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/image "))
			blob, err := loadImage(path)
			if err != nil {
				fmt.Printf("could not read image: %v\n", err)
				continue
			}
			pendingImage = blob
			fmt.Println("Image attached. It will be sent with your next message.")
			continue
		}

		reply, err := consult.Send(ctx, line, pendingImage)
		pendingImage = nil
		if err != nil {
			fmt.Printf("(request failed: %v)\n", err)
		}
		fmt.Printf("\n%s> %s\n\n", consult.Doctor.Name, reply)
	}
}

func saveReport(ctx context.Context, consult *niramoy.Consultation) {
	if len(consult.History) == 0 {
		fmt.Println("Nothing to report yet; describe your symptoms first.")
		return
	}

	fmt.Println("Generating report...")
	report, err := consult.GenerateReport(ctx)
	if err != nil {
		fmt.Printf("report generation failed: %v\n", err)
		return
	}

	data, err := pdfexport.Render(pdfexport.Document{
		PatientName:     consult.Patient.Name,
		PatientAge:      consult.Patient.Age,
		PatientGender:   consult.Patient.Gender,
		DoctorName:      consult.Doctor.EnglishName,
		DoctorSpecialty: consult.Doctor.EnglishSpecialty,
		Diagnosis:       report.Diagnosis,
		Summary:         report.Summary,
		Advice:          report.Advice,
		Medications:     report.Medications,
		Tests:           report.Tests,
		GeneratedAt:     time.Now(),
	})
	if err != nil {
		fmt.Printf("pdf rendering failed: %v\n", err)
		return
	}

	name := fmt.Sprintf("niramoy-report-%s.pdf", time.Now().Format("20060102-150405"))
	if err := os.WriteFile(name, data, 0o644); err != nil {
		fmt.Printf("could not write %s: %v\n", name, err)
		return
	}
	fmt.Printf("Saved %s\n", name)
}

func loadImage(path string) (*gemini.Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	mimeType := "image/jpeg"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		mimeType = "image/png"
	case ".webp":
		mimeType = "image/webp"
	case ".jpg", ".jpeg":
		// Recompress camera photos so the request stays small.
		if scaled, err := capture.DownscaleJPEG(data, 1024, 80); err == nil {
			data = scaled
		}
	}

	return &gemini.Blob{
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}
