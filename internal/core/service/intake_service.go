package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

type IntakeService struct {
	repo   ports.IntakeRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewIntakeService(repo ports.IntakeRepository, logger zerolog.Logger) *IntakeService {
	return &IntakeService{repo: repo, logger: logger, now: time.Now}
}

// CreateIntake files a record attributed to the caller. Empty optional
// vitals are stored as null.
func (s *IntakeService) CreateIntake(ctx context.Context, caller *domain.Principal, in domain.NewIntakeInput) (*domain.IntakeRecord, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionWriteOwnData}); err != nil {
		return nil, err
	}

	ve := &domain.ValidationError{}
	name := strings.TrimSpace(in.PatientName)
	if name == "" {
		ve.Add("patient_name", "is required")
	}
	if in.PatientAge <= 0 {
		ve.Add("patient_age", "must be a positive integer")
	}
	symptoms := strings.TrimSpace(in.Symptoms)
	if symptoms == "" {
		ve.Add("symptoms", "is required")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	rec := &domain.IntakeRecord{
		ID:               uuid.NewString(),
		SubmittingUserID: caller.ID,
		PatientName:      name,
		PatientAge:       in.PatientAge,
		Symptoms:         symptoms,
		BloodPressure:    optional(in.BloodPressure),
		HeartRate:        optional(in.HeartRate),
		MedicalHistory:   optional(in.MedicalHistory),
		CreatedAt:        s.now().UTC(),
		Submitter:        domain.SubmitterOf(caller),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info().Str("intake_id", rec.ID).Str("user_id", caller.ID).Msg("intake record created")
	return rec, nil
}

func (s *IntakeService) ListIntake(ctx context.Context, caller *domain.Principal) ([]domain.IntakeRecord, error) {
	if err := domain.Require(caller, domain.AccessRequest{Action: domain.ActionReadOwnData}); err != nil {
		return nil, err
	}
	return s.repo.ListBySubmitter(ctx, caller.ID)
}
