package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/ports"
)

// invalid_text_representation, raised when an id is not a uuid.
const pqInvalidText = "22P02"

type PostgresPatientRepository struct {
	db *sql.DB
}

func NewPatientRepository(db *sql.DB) *PostgresPatientRepository {
	return &PostgresPatientRepository{
		db,
	}
}

func (r *PostgresPatientRepository) List(ctx context.Context) ([]domain.Patient, error) {
	query := `SELECT id, name, email, address, to_char(date_of_birth, 'YYYY-MM-DD')
              FROM patients ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []domain.Patient{}
	for rows.Next() {
		var p domain.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Address, &p.DateOfBirth); err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *PostgresPatientRepository) Create(ctx context.Context, patient *domain.Patient) (*domain.Patient, error) {
	query := `INSERT INTO patients (name, email, address, date_of_birth)
    VALUES ($1, $2, $3, $4)
    RETURNING id, to_char(date_of_birth, 'YYYY-MM-DD')`

	result := &domain.Patient{
		Name:    patient.Name,
		Email:   patient.Email,
		Address: patient.Address,
	}
	err := r.db.QueryRowContext(ctx, query, patient.Name, patient.Email, patient.Address, patient.DateOfBirth).Scan(
		&result.ID,
		&result.DateOfBirth,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23502" {
			return nil, fmt.Errorf("required field is missing")
		}
		return nil, err
	}
	return result, nil
}

func (r *PostgresPatientRepository) Update(ctx context.Context, patient *domain.Patient) (*domain.Patient, error) {
	query := `UPDATE patients
        SET
        name = $1,
        email = $2,
        address = $3,
        date_of_birth = $4,
        updated_at = CURRENT_TIMESTAMP
        WHERE id = $5
        RETURNING id, name, email, address, to_char(date_of_birth, 'YYYY-MM-DD')`

	result := &domain.Patient{}
	err := r.db.QueryRowContext(ctx, query,
		patient.Name, patient.Email, patient.Address, patient.DateOfBirth, patient.ID).Scan(
		&result.ID,
		&result.Name,
		&result.Email,
		&result.Address,
		&result.DateOfBirth,
	)
	if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
		return nil, domain.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating patient: %w", err)
	}
	return result, nil
}

func (r *PostgresPatientRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM patients WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if isInvalidID(err) {
		return domain.ErrPatientNotFound
	}
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrPatientNotFound
	}

	return nil
}

func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidText
}

var _ ports.PatientStore = (*PostgresPatientRepository)(nil)
