package domain

import "time"

// IntakeRecord is a structured patient intake form. Records are append-only.
type IntakeRecord struct {
	ID               string     `json:"id"`
	SubmittingUserID string     `json:"submitting_user_id"`
	PatientName      string     `json:"patient_name"`
	PatientAge       int        `json:"patient_age"`
	Symptoms         string     `json:"symptoms"`
	BloodPressure    *string    `json:"blood_pressure"`
	HeartRate        *string    `json:"heart_rate"`
	MedicalHistory   *string    `json:"medical_history"`
	CreatedAt        time.Time  `json:"created_at"`
	Submitter        *Submitter `json:"submitter,omitempty"`
}

// Submitter is the public summary of the user that filed an intake record.
type Submitter struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Specialty *string `json:"specialty"`
	Hospital  *string `json:"hospital"`
}

// SubmitterOf summarises a principal for attribution.
func SubmitterOf(p *Principal) *Submitter {
	if p == nil {
		return nil
	}
	return &Submitter{Name: p.Name, Email: p.Email, Specialty: p.Specialty, Hospital: p.Hospital}
}

// NewIntakeInput is the payload of an intake submission.
type NewIntakeInput struct {
	PatientName    string
	PatientAge     int
	Symptoms       string
	BloodPressure  string
	HeartRate      string
	MedicalHistory string
}
