package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threePatients() []domain.Patient {
	return []domain.Patient{
		{ID: "a", Name: "Alice"},
		{ID: "b", Name: "Bob"},
		{ID: "c", Name: "Carol"},
	}
}

func TestPatientListRefresh(t *testing.T) {
	repo := &mockPatientRepository{
		ListFunc: func(context.Context) ([]domain.Patient, error) {
			return threePatients(), nil
		},
	}
	l := NewPatientList(repo, nopLogger{})

	require.NoError(t, l.Refresh(context.Background()))

	assert.Equal(t, threePatients(), l.Patients())
	assert.False(t, l.Loading())
	assert.Empty(t, l.Error())

	p, ok := l.Find("b")
	assert.True(t, ok)
	assert.Equal(t, "Bob", p.Name)
	_, ok = l.Find("zzz")
	assert.False(t, ok)
}

func TestPatientListRefreshFailureKeepsRecords(t *testing.T) {
	fail := false
	repo := &mockPatientRepository{
		ListFunc: func(context.Context) ([]domain.Patient, error) {
			if fail {
				return nil, errors.New("offline")
			}
			return threePatients(), nil
		},
	}
	l := NewPatientList(repo, nopLogger{})
	require.NoError(t, l.Refresh(context.Background()))

	fail = true
	assert.Error(t, l.Refresh(context.Background()))

	assert.Len(t, l.Patients(), 3)
	assert.Equal(t, domain.MsgFetchFailed, l.Error())
	assert.False(t, l.Loading())
}

func TestPatientListDeleteRemovesOnlyThatEntry(t *testing.T) {
	repo := &mockPatientRepository{
		ListFunc: func(context.Context) ([]domain.Patient, error) {
			return threePatients(), nil
		},
		DeleteFunc: func(context.Context, string) error { return nil },
	}
	l := NewPatientList(repo, nopLogger{})
	require.NoError(t, l.Refresh(context.Background()))

	require.NoError(t, l.Delete(context.Background(), "b"))

	assert.Equal(t, []domain.Patient{{ID: "a", Name: "Alice"}, {ID: "c", Name: "Carol"}}, l.Patients())
	// no refetch after delete
	assert.Equal(t, 2, repo.Calls())
}

func TestPatientListDeleteFailureLeavesList(t *testing.T) {
	repo := &mockPatientRepository{
		ListFunc: func(context.Context) ([]domain.Patient, error) {
			return threePatients(), nil
		},
		DeleteFunc: func(context.Context, string) error {
			return &domain.TransportError{Op: "PatientClient.Delete", StatusCode: 404, Err: errors.New("Not Found")}
		},
	}
	l := NewPatientList(repo, nopLogger{})
	require.NoError(t, l.Refresh(context.Background()))

	err := l.Delete(context.Background(), "missing")

	var terr *domain.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 404, terr.StatusCode)
	assert.Equal(t, threePatients(), l.Patients())
	assert.Equal(t, domain.MsgDeleteFailed, l.Error())
}

func TestPatientListPatientsReturnsCopy(t *testing.T) {
	repo := &mockPatientRepository{
		ListFunc: func(context.Context) ([]domain.Patient, error) {
			return threePatients(), nil
		},
	}
	l := NewPatientList(repo, nopLogger{})
	require.NoError(t, l.Refresh(context.Background()))

	got := l.Patients()
	got[0].Name = "Mallory"

	assert.Equal(t, "Alice", l.Patients()[0].Name)
}

func TestPatientListDeleteSuccessClearsEarlierError(t *testing.T) {
	repo := &mockPatientRepository{
		ListFunc: func(context.Context) ([]domain.Patient, error) {
			return threePatients(), nil
		},
		DeleteFunc: func(_ context.Context, id string) error {
			if id == "zzz" {
				return &domain.TransportError{Op: "PatientClient.Delete", StatusCode: 404, Err: errors.New("Not Found")}
			}
			return nil
		},
	}
	l := NewPatientList(repo, nopLogger{})
	require.NoError(t, l.Refresh(context.Background()))

	require.Error(t, l.Delete(context.Background(), "zzz"))
	require.Equal(t, domain.MsgDeleteFailed, l.Error())

	require.NoError(t, l.Delete(context.Background(), "a"))

	assert.Empty(t, l.Error())
	assert.Len(t, l.Patients(), 2)
}
