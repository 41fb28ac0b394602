package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/ports"
)

// PatientStore keeps patients in insertion order.
type PatientStore struct {
	mu       sync.RWMutex
	patients []domain.Patient
}

func NewPatientStore() *PatientStore {
	return &PatientStore{}
}

func (s *PatientStore) List(_ context.Context) ([]domain.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Patient, len(s.patients))
	copy(out, s.patients)
	return out, nil
}

func (s *PatientStore) Create(_ context.Context, patient *domain.Patient) (*domain.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *patient
	created.ID = uuid.NewString()
	created.RegisteredDate = ""
	s.patients = append(s.patients, created)
	return &created, nil
}

func (s *PatientStore) Update(_ context.Context, patient *domain.Patient) (*domain.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.patients {
		if s.patients[i].ID == patient.ID {
			updated := *patient
			updated.RegisteredDate = ""
			s.patients[i] = updated
			return &updated, nil
		}
	}
	return nil, domain.ErrPatientNotFound
}

func (s *PatientStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.patients {
		if s.patients[i].ID == id {
			s.patients = append(s.patients[:i], s.patients[i+1:]...)
			return nil
		}
	}
	return domain.ErrPatientNotFound
}

var _ ports.PatientStore = (*PatientStore)(nil)
