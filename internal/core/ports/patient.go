package ports

import (
	"context"

	"github.com/sm8ta/patient_records/internal/core/domain"
)

// PatientRepository is the remote patient API as seen by the client.
type PatientRepository interface {
	List(ctx context.Context) ([]domain.Patient, error)
	Create(ctx context.Context, req domain.PatientRequest) (domain.Patient, error)
	Update(ctx context.Context, id string, req domain.PatientRequest) (domain.Patient, error)
	Delete(ctx context.Context, id string) error
}

// PatientStore backs the demo patient API. Records it returns never carry
// a registered date; the API does not keep one.
type PatientStore interface {
	List(ctx context.Context) ([]domain.Patient, error)
	Create(ctx context.Context, patient *domain.Patient) (*domain.Patient, error)
	Update(ctx context.Context, patient *domain.Patient) (*domain.Patient, error)
	Delete(ctx context.Context, id string) error
}
