package api

import (
	"time"

	"github.com/sm8ta/patient_records/internal/core/domain"
)

// patientRecord is the shape the patient API sends back. The backend spells
// the birth date field "dataOfBirth" and never returns a registered date.
type patientRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	DataOfBirth string `json:"dataOfBirth"`
}

// toPatient maps a wire record onto the domain entity. The registered date
// is stamped with today's date because the API has no such field.
func (r patientRecord) toPatient(now time.Time) domain.Patient {
	return domain.Patient{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		Address:        r.Address,
		DateOfBirth:    r.DataOfBirth,
		RegisteredDate: now.UTC().Format(domain.DateLayout),
	}
}
