package handler

import (
	"time"

	"github.com/cardioassist/cardio-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// --- Session ---

type signInRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type currentSessionResponse struct {
	User      *domain.Principal `json:"user"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// --- Users ---

type createUserRequest struct {
	Email         string `json:"email"          validate:"required,email"`
	Name          string `json:"name"           validate:"required"`
	Password      string `json:"password"       validate:"required,max=72"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	Specialty     string `json:"specialty"`
	LicenseNumber string `json:"license_number"`
	Hospital      string `json:"hospital"`
}

func (r createUserRequest) toInput() domain.NewUserInput {
	role, _ := domain.ParseRole(r.Role)
	status, _ := domain.ParseStatus(r.Status)
	return domain.NewUserInput{
		Email:         r.Email,
		Name:          r.Name,
		Password:      r.Password,
		Role:          role,
		Status:        status,
		Specialty:     r.Specialty,
		LicenseNumber: r.LicenseNumber,
		Hospital:      r.Hospital,
	}
}

// updateUserRequest distinguishes absent fields from explicit nulls; only
// present fields are applied.
type updateUserRequest struct {
	Name          domain.OptionalString `json:"name"           swaggertype:"string"`
	Email         domain.OptionalString `json:"email"          swaggertype:"string"`
	Password      domain.OptionalString `json:"password"       swaggertype:"string"`
	Role          domain.OptionalString `json:"role"           swaggertype:"string"`
	Status        domain.OptionalString `json:"status"         swaggertype:"string"`
	Specialty     domain.OptionalString `json:"specialty"      swaggertype:"string"`
	LicenseNumber domain.OptionalString `json:"license_number" swaggertype:"string"`
	Hospital      domain.OptionalString `json:"hospital"       swaggertype:"string"`
}

func (r updateUserRequest) toPatch() domain.UserPatch {
	return domain.UserPatch{
		Name:          r.Name,
		Email:         r.Email,
		Password:      r.Password,
		Role:          r.Role,
		Status:        r.Status,
		Specialty:     r.Specialty,
		LicenseNumber: r.LicenseNumber,
		Hospital:      r.Hospital,
	}
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type userListResponse struct {
	Users []domain.UserWithStats `json:"users"`
}

// --- Conversations ---

type conversationTitleRequest struct {
	Title string `json:"title"`
}

type appendMessageRequest struct {
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

type conversationListResponse struct {
	Conversations []domain.ConversationSummary `json:"conversations"`
}

// --- Chat ---

type chatTurn struct {
	Role    string   `json:"role"    validate:"required"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

type chatRequest struct {
	ConversationID string     `json:"conversation_id"`
	Messages       []chatTurn `json:"messages" validate:"required,min=1,dive"`
}

type chatResponse struct {
	Message   string `json:"message"`
	MessageID string `json:"message_id,omitempty"`
	Persisted bool   `json:"persisted"`
}

// --- Intake ---

type createIntakeRequest struct {
	PatientName    string `json:"patient_name"    validate:"required"`
	PatientAge     int    `json:"patient_age"     validate:"gt=0"`
	Symptoms       string `json:"symptoms"        validate:"required"`
	BloodPressure  string `json:"blood_pressure"`
	HeartRate      string `json:"heart_rate"`
	MedicalHistory string `json:"medical_history"`
}

func (r createIntakeRequest) toInput() domain.NewIntakeInput {
	return domain.NewIntakeInput{
		PatientName:    r.PatientName,
		PatientAge:     r.PatientAge,
		Symptoms:       r.Symptoms,
		BloodPressure:  r.BloodPressure,
		HeartRate:      r.HeartRate,
		MedicalHistory: r.MedicalHistory,
	}
}

type intakeListResponse struct {
	Records []domain.IntakeRecord `json:"records"`
}
