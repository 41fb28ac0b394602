package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/ports"
)

// PatientService is the server side of the demo patient API.
type PatientService struct {
	store    ports.PatientStore
	logger   ports.LoggerPort
	validate *validator.Validate
}

func NewPatientService(
	store ports.PatientStore,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *PatientService {
	return &PatientService{
		store:    store,
		logger:   logger,
		validate: validate,
	}
}

func (ps *PatientService) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	patients, err := ps.store.List(ctx)
	if err != nil {
		ps.logger.Error("Failed to list patients", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return patients, nil
}

// CreatePatient stores the record. The registered date in req is accepted
// but not kept.
func (ps *PatientService) CreatePatient(ctx context.Context, req domain.PatientRequest) (*domain.Patient, error) {
	if err := ValidatePatient(ps.validate, req); err != nil {
		ps.logger.Info("Validation failed", map[string]interface{}{
			"error":  err.Error(),
			"method": "CreatePatient",
		})
		return nil, err
	}

	patient, err := ps.store.Create(ctx, &domain.Patient{
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		ps.logger.Error("Failed to create patient", map[string]interface{}{
			"error":  err.Error(),
			"method": "CreatePatient",
		})
		return nil, err
	}

	ps.logger.Info("Patient created", map[string]interface{}{
		"id": patient.ID,
	})
	return patient, nil
}

func (ps *PatientService) UpdatePatient(ctx context.Context, id string, req domain.PatientRequest) (*domain.Patient, error) {
	if err := ValidatePatient(ps.validate, req); err != nil {
		ps.logger.Info("Validation failed", map[string]interface{}{
			"error":  err.Error(),
			"method": "UpdatePatient",
		})
		return nil, err
	}

	patient, err := ps.store.Update(ctx, &domain.Patient{
		ID:          id,
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		ps.logger.Error("Failed to update patient", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return nil, err
	}
	return patient, nil
}

func (ps *PatientService) DeletePatient(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("DeletePatient: %w", domain.ErrPatientNotFound)
	}

	if err := ps.store.Delete(ctx, id); err != nil {
		ps.logger.Error("Failed to delete patient", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return err
	}

	ps.logger.Info("Patient deleted", map[string]interface{}{
		"id": id,
	})
	return nil
}
