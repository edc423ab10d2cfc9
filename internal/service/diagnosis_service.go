package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"merocare/internal/llm"
	"merocare/internal/models"
	"merocare/internal/repository"
)

// DiagnosisService runs the symptom checker and manages stored results
type DiagnosisService struct {
	generator     llm.TextGenerator
	diagnosisRepo *repository.DiagnosisRepository
	userRepo      *repository.UserRepository
	now           func() time.Time
}

// NewDiagnosisService creates a new diagnosis service
func NewDiagnosisService(generator llm.TextGenerator, diagnosisRepo *repository.DiagnosisRepository, userRepo *repository.UserRepository) *DiagnosisService {
	return &DiagnosisService{
		generator:     generator,
		diagnosisRepo: diagnosisRepo,
		userRepo:      userRepo,
		now:           time.Now,
	}
}

// CheckInput is a symptom query. Age and Gender fall back to the profile.
type CheckInput struct {
	Symptoms []string
	Age      *int
	Gender   string
}

// Check asks the model about the symptoms and stores the answer as a
// private diagnosis
func (s *DiagnosisService) Check(ctx context.Context, userID int64, in CheckInput) (*models.Diagnosis, *llm.DiagnosisAnswer, error) {
	symptoms := make([]string, 0, len(in.Symptoms))
	for _, sym := range in.Symptoms {
		if sym = strings.TrimSpace(sym); sym != "" {
			symptoms = append(symptoms, sym)
		}
	}
	if len(symptoms) == 0 {
		return nil, nil, ErrNoSymptoms
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	query := llm.SymptomQuery{Symptoms: symptoms, Age: in.Age, Gender: in.Gender}
	if query.Age == nil {
		query.Age = user.Age(s.now())
	}
	if query.Gender == "" {
		query.Gender = user.Gender
	}

	reply, err := s.generator.Complete(ctx, llm.DiagnosisSystemPrompt, llm.BuildDiagnosisPrompt(query))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, nil, err
		}
		slog.Error("Symptom check failed", "user_id", userID, "model", s.generator.GetModel(), "error", err)
		return nil, nil, ErrDiagnosisUnavailable
	}

	answer, err := llm.ParseDiagnosisAnswer(reply)
	if err != nil {
		slog.Error("Unusable symptom check answer", "user_id", userID, "error", err)
		return nil, nil, ErrDiagnosisUnavailable
	}

	d := &models.Diagnosis{
		UserID:           userID,
		Symptoms:         strings.Join(symptoms, ", "),
		PredictedDisease: strings.Join(answer.PossibleDiseases, ", "),
		TreatmentAdvice:  strings.Join(answer.FirstAid, "\n"),
		Urgency:          answer.Urgency,
		FullResponse:     reply,
		Visibility:       models.VisibilityPrivate,
	}
	if err := s.diagnosisRepo.CreateDiagnosis(ctx, d); err != nil {
		return nil, nil, err
	}

	slog.Info("Diagnosis stored", "diagnosis_id", d.ID, "user_id", userID, "urgency", d.Urgency)
	return d, answer, nil
}

// MyDiagnoses lists the user's diagnoses, newest first
func (s *DiagnosisService) MyDiagnoses(ctx context.Context, userID int64) ([]models.Diagnosis, error) {
	return s.diagnosisRepo.ListByUser(ctx, userID)
}

// UpdateVisibility changes who may see a diagnosis. Only the owner may do it.
func (s *DiagnosisService) UpdateVisibility(ctx context.Context, userID, diagnosisID int64, visibility string) (*models.Diagnosis, error) {
	visibility = strings.ToLower(strings.TrimSpace(visibility))
	if !models.IsValidVisibility(visibility) {
		return nil, ErrInvalidVisibility
	}

	d, err := s.diagnosisRepo.GetDiagnosis(ctx, diagnosisID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDiagnosisNotFound
	}
	if d.UserID != userID {
		return nil, ErrNotDiagnosisOwner
	}

	if err := s.diagnosisRepo.UpdateVisibility(ctx, d.ID, visibility); err != nil {
		return nil, err
	}
	d.Visibility = visibility
	return d, nil
}
