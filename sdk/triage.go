package niramoy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/niramoy/niramoy-go/pkg/gemini"
)

// TriageModel handles classification, consultation chat, and reports.
const TriageModel = gemini.DefaultModel

// pediatricAgeLimit is the exclusive upper bound for routing to the
// pediatrician. Patients aged 0-15 always go there, except for
// adolescent gynecological cases.
const pediatricAgeLimit = 16

// Fallback strings shown when the service misbehaves. The chat speaks
// Bangla, so the apologies do too.
const (
	fallbackReasoning = "লক্ষণগুলো পরিষ্কারভাবে বোঝা না যাওয়ায় মেডিসিন বিশেষজ্ঞের কাছে পাঠানো হলো।"
	fallbackReply     = "সাময়িক যান্ত্রিক ত্রুটির কারণে উত্তর দেওয়া যাচ্ছে না। কিছুক্ষণ পর চেষ্টা করুন।"
	emptyReply        = "দুঃখিত, আমি বুঝতে পারিনি। আবার বলুন।"
)

// contentGenerator is the slice of the Gemini provider the triage pipeline
// uses. Tests substitute a scripted fake.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, req *gemini.Request) (*gemini.Response, error)
}

// TriageService classifies symptoms to a specialist and runs persona chats.
type TriageService struct {
	client    *Client
	generator contentGenerator
}

// PatientInfo is collected during onboarding.
type PatientInfo struct {
	Name     string
	Age      int
	Gender   string
	Symptoms string
}

// Classification is the triage outcome.
type Classification struct {
	Specialist Specialist
	Reasoning  string
}

var classificationSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"specialistId": {
			"type": "string",
			"enum": ["medicine", "cardiologist", "neurologist", "gastroenterologist", "endocrinologist", "gynecologist", "pediatrician", "dermatologist", "ent", "psychiatrist"],
			"description": "The ID of the most suitable medical specialist based on the symptoms."
		},
		"reasoning": {
			"type": "string",
			"description": "Brief reasoning for the selection in Bangla."
		}
	},
	"required": ["specialistId", "reasoning"]
}`)

// Classify routes a patient to exactly one specialist. Classification
// failures never block the patient: any error falls back to the medicine
// specialist. Patients under 16 are routed to the pediatrician regardless of
// the model's answer, unless the model chose gynecology for an adolescent.
func (t *TriageService) Classify(ctx context.Context, info PatientInfo) Classification {
	prompt := classificationPrompt(info)
	temp := 0.1

	resp, err := t.generator.GenerateContent(ctx, TriageModel, &gemini.Request{
		Contents: []gemini.Content{gemini.Text("user", prompt)},
		GenerationConfig: &gemini.GenConfig{
			Temperature:        &temp,
			ResponseMIMEType:   "application/json",
			ResponseJSONSchema: classificationSchema,
		},
	})
	if err != nil {
		t.client.logger.Warn("classification failed", "error", err)
		return Classification{Specialist: Specialists[Medicine], Reasoning: fallbackReasoning}
	}

	var result struct {
		SpecialistID string `json:"specialistId"`
		Reasoning    string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(resp.Text()), &result); err != nil {
		t.client.logger.Warn("classification returned invalid JSON", "error", err)
		return Classification{Specialist: Specialists[Medicine], Reasoning: fallbackReasoning}
	}

	id := SpecialistID(result.SpecialistID)
	if info.Age < pediatricAgeLimit && id != Gynecologist {
		id = Pediatrician
	}
	return Classification{Specialist: SpecialistByID(id), Reasoning: result.Reasoning}
}

func classificationPrompt(info PatientInfo) string {
	return fmt.Sprintf(`
User Profile:
Name: %s
Age: %d (If < 16, MUST be Pediatrician)
Gender: %s

Symptoms/Complaint: %q

Task:
1. Analyze the user's symptoms, Age, and Gender.
2. Classify them into EXACTLY ONE medical specialty from the list below.
3. Return ONLY the corresponding ID.

STRICT CLASSIFICATION LOGIC (Priority Order):

1. **Pediatrician (pediatrician)**:
   - **CRITICAL RULE**: IF Age is LESS THAN 16 (0-15), YOU MUST SELECT THIS, regardless of the symptom (Fever, Cough, Pain, Sexual issues etc.), unless it is clearly a pregnancy issue for an adolescent female (then Gynae).
   - IF Age >= 16, DO NOT SELECT PEDIATRICIAN.

2. **Gynecologist (gynecologist)**:
   - **FEMALE PATIENTS ONLY**.
   - Issues: Pregnancy, Menstruation/Period problems, Uterus, Vaginal discharge/itching/pain, Breast lumps/pain, Lower abdominal pain (female specific).

3. **Dermatologist (dermatologist)**:
   - **SKIN**: Acne, Rash, Itching, Eczema, Hair fall, Fungal infection, Ringworm.
   - **SEXUAL HEALTH & VENEREAL DISEASES (VD)**:
     - **MALE GENITAL ISSUES**: Pain in penis, testicles, scrotum, foreskin issues.
     - **SEXUAL DYSFUNCTION**: Erectile dysfunction, premature ejaculation, weakness.
     - **STDs/STIs**: Syphilis, Gonorrhea, burning sensation in genitals, discharge from penis.
   - *Note: In this system, Dermatologist acts as the Sexologist/VD Specialist.*

4. **Psychiatrist (psychiatrist)**:
   - Depression, Anxiety, Panic, Insomnia (Sleep issues), Stress, Hallucinations, Suicide thoughts, OCD, Mental instability.

5. **ENT Specialist (ent)**:
   - Ear (pain, discharge, hearing loss), Nose (blockage, bleeding, polyps, sinus), Throat (pain, tonsils, voice change, difficulty swallowing).

6. **Cardiologist (cardiologist)**:
   - Chest pain (especially left side/center/pressure), High Blood Pressure (Hypertension), Palpitations (fast heartbeat), Shortness of breath (heart related).

7. **Neurologist (neurologist)**:
   - Severe Headache (Migraine), Vertigo/Dizziness, Stroke/Paralysis, Seizures/Epilepsy, Tremors, Numbness in hands/feet, Nerve pain, Memory loss.

8. **Gastroenterologist (gastroenterologist)**:
   - Abdominal/Stomach pain, Gas/Acidity/Heartburn, Vomiting, Diarrhea, Constipation, Jaundice/Liver issues, Rectal bleeding, Piles/Fissure.

9. **Endocrinologist (endocrinologist)**:
   - Diabetes, High Blood Sugar, Thyroid issues (Goiter, swelling neck, weight gain/loss), Hormonal imbalances, excessive thirst/hunger.

10. **Medicine Specialist (medicine)**:
    - **GENERAL / FALLBACK**: Fever (Typhoid, Dengue, Viral), Cold/Flu (Adults), General weakness, Body aches, Joint pain (Arthritis), Urinary Tract Infections (Burning urine - if not clearly STI/VD), Kidney pain.
    - Use this ONLY if the symptom does not clearly fit the specialized categories above.

Reasoning Language: Bangla.
`, info.Name, info.Age, info.Gender, info.Symptoms)
}

// ChatMessage is one turn of a consultation. Roles are "user" and "model".
type ChatMessage struct {
	Role  string
	Text  string
	Image *gemini.Blob
}

// Consultation is a persona-scripted chat with one specialist. It keeps the
// full history locally and replays it on every request, so the REST API
// stays stateless.
type Consultation struct {
	service *TriageService
	Doctor  Specialist
	Patient PatientInfo
	History []ChatMessage
}

// StartConsultation opens a chat with the given specialist persona.
func (t *TriageService) StartConsultation(doctor Specialist, patient PatientInfo) *Consultation {
	return &Consultation{
		service: t,
		Doctor:  doctor,
		Patient: patient,
	}
}

// Send delivers a patient message, optionally with an attached image, and
// returns the doctor's reply. The reply is always usable text: provider
// failures return a Bangla apology alongside the error, so callers can show
// the text and still observe the failure.
func (c *Consultation) Send(ctx context.Context, text string, image *gemini.Blob) (string, error) {
	c.History = append(c.History, ChatMessage{Role: "user", Text: text, Image: image})

	contents := make([]gemini.Content, 0, len(c.History))
	for _, msg := range c.History {
		parts := []gemini.Part{{Text: msg.Text}}
		if msg.Image != nil {
			parts = append(parts, gemini.Part{InlineData: msg.Image})
		}
		contents = append(contents, gemini.Content{Role: msg.Role, Parts: parts})
	}

	temp := 0.7
	resp, err := c.service.generator.GenerateContent(ctx, TriageModel, &gemini.Request{
		Contents:          contents,
		SystemInstruction: gemini.SystemInstruction(consultationSystemPrompt(c.Doctor, c.Patient)),
		GenerationConfig:  &gemini.GenConfig{Temperature: &temp},
	})
	if err != nil {
		// Drop the failed turn so a retry does not duplicate it.
		c.History = c.History[:len(c.History)-1]
		return fallbackReply, err
	}

	reply := resp.Text()
	if reply == "" {
		reply = emptyReply
	}
	c.History = append(c.History, ChatMessage{Role: "model", Text: reply})
	return reply, nil
}

func consultationSystemPrompt(doctor Specialist, patient PatientInfo) string {
	return fmt.Sprintf(`
%s

USER CONTEXT:
Name: %s
Age: %d
Gender: %s
Initial Complaint: %s

IMPORTANT ROLES & BEHAVIOR:
1. **Language**: ALWAYS speak in Bangla (Bengali).
2. **Persona**: You are %s, %s. You are NOT an AI assistant. You are a real, experienced doctor sitting in a clinic.
3. **Tone**: Professional yet warm and confident. Use clinical authority. Do not sound robotic.
   - Instead of "I am an AI", say "আমি দেখছি" (I see) or "চিন্তার কারণ নেই" (No need to worry).
   - Use "বাবা/মা" for kids or young patients, and "আপনি" for adults.

MEDICAL GUIDELINES & PRESCRIPTIONS:
1. **OTC MEDICINES ALLOWED**: You **ARE PERMITTED** to suggest standard Over-The-Counter (OTC) medicines for symptom relief.
   - Examples: Napa/Ace (Paracetamol) for fever/pain, Orsaline for dehydration, Antacids/Seclo for gas, Histacin for mild allergy.
   - **Format**: When suggesting meds, write clearly: "ঔষধের নাম (Generic) - মাত্রা (Dosage) - কতদিন (Duration)".
   - Example: "Napa (Paracetamol 500mg) - ১টি করে দিনে ৩ বার (ভরা পেটে) - ৩ দিন"।
2. **STRICT PROHIBITIONS**:
   - NO Antibiotics (Azithromycin, Cefixime, etc.).
   - NO Sedatives/Sleeping pills.
   - NO Steroids.
   - If these are needed, tell the patient: "এজন্য আপনাকে একজন ডাক্তারকে সরাসরি দেখিয়ে অ্যান্টিবায়োটিক বা বিশেষ ঔষধ নিতে হবে।"
3. **Diagnosis**: Give a "Provisional Diagnosis" (সম্ভাব্য রোগ) based on symptoms.
4. **Reports**: Suggest relevant lab tests (CBC, X-ray, USG) if diagnosis is unclear.

INTERACTION STYLE:
- Don't ask too many questions at once. 1 or 2 at a time.
- Keep responses concise (max 4-6 sentences) but informative.
- If it's an emergency, warn clearly and tell them to go to a hospital.
`, doctor.SystemPrompt, patient.Name, patient.Age, patient.Gender, patient.Symptoms, doctor.Name, doctor.Specialty)
}
