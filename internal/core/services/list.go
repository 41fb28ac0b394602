package services

import (
	"context"
	"sync"

	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/ports"
)

// PatientList is the list view's state: the locally held records, and a
// loading flag that is independent of the form's.
type PatientList struct {
	mu       sync.RWMutex
	repo     ports.PatientRepository
	logger   ports.LoggerPort
	patients []domain.Patient
	loading  bool
	errMsg   string
}

func NewPatientList(repo ports.PatientRepository, logger ports.LoggerPort) *PatientList {
	return &PatientList{
		repo:   repo,
		logger: logger,
	}
}

// Refresh replaces the local list with the server's. A fetch that finishes
// after a concurrent Delete can briefly bring the deleted row back.
func (l *PatientList) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	patients, err := l.repo.List(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		l.errMsg = domain.UserMessage(err, domain.MsgFetchFailed)
		l.logger.Error("Error fetching patients", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	l.patients = patients
	l.errMsg = ""
	return nil
}

// Delete removes the record remotely and then drops exactly that entry
// from the local list. On failure the list is left as it was and Error is
// set; a later success clears it.
func (l *PatientList) Delete(ctx context.Context, id string) error {
	if err := l.repo.Delete(ctx, id); err != nil {
		l.mu.Lock()
		l.errMsg = domain.UserMessage(err, domain.MsgDeleteFailed)
		l.mu.Unlock()

		l.logger.Error("Error deleting patient", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	kept := make([]domain.Patient, 0, len(l.patients))
	for _, p := range l.patients {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	l.patients = kept
	l.errMsg = ""
	return nil
}

// Find returns the locally held record with the given id.
func (l *PatientList) Find(id string) (domain.Patient, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, p := range l.patients {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Patient{}, false
}

func (l *PatientList) Patients() []domain.Patient {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Patient, len(l.patients))
	copy(out, l.patients)
	return out
}

func (l *PatientList) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

func (l *PatientList) Error() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.errMsg
}
