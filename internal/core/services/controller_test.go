package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, repo *mockPatientRepository) (*Controller, *memKV) {
	t.Helper()
	kv := newMemKV()
	auth, _ := newTestAuth(t, kv, stubIssuer{token: "demo-jwt-token-1"}, 0)
	return NewController(auth, repo, NewValidator(), nopLogger{}), kv
}

var existing = domain.Patient{
	ID:             "p-1",
	Name:           "Ada Lovelace",
	Email:          "ada@example.com",
	Address:        "12 St James's Square",
	DateOfBirth:    "1815-12-10",
	RegisteredDate: "2024-05-01",
}

func TestControllerStartsOnList(t *testing.T) {
	c, _ := newTestController(t, &mockPatientRepository{})

	state := c.CurrentState()
	assert.Equal(t, domain.ViewList, state.View)
	assert.Nil(t, state.Editing)
	assert.False(t, state.Loading)
}

func TestControllerTransitions(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t, &mockPatientRepository{})

	require.NoError(t, c.Dispatch(ctx, AddPatient{}))
	assert.Equal(t, domain.ViewAdd, c.CurrentState().View)
	assert.Nil(t, c.CurrentState().Editing)

	require.NoError(t, c.Dispatch(ctx, Cancel{}))
	assert.Equal(t, domain.ViewList, c.CurrentState().View)

	require.NoError(t, c.Dispatch(ctx, EditPatient{Patient: existing}))
	state := c.CurrentState()
	assert.Equal(t, domain.ViewEdit, state.View)
	require.NotNil(t, state.Editing)
	assert.Equal(t, existing, *state.Editing)

	require.NoError(t, c.Dispatch(ctx, Cancel{}))
	assert.Equal(t, domain.ViewList, c.CurrentState().View)
	assert.Nil(t, c.CurrentState().Editing)
}

func TestControllerRejectsUndefinedTransitions(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t, &mockPatientRepository{})

	assert.ErrorIs(t, c.Dispatch(ctx, Cancel{}), domain.ErrInvalidTransition)
	assert.ErrorIs(t, c.Dispatch(ctx, Submit{Request: validRequest()}), domain.ErrInvalidTransition)

	require.NoError(t, c.Dispatch(ctx, AddPatient{}))
	assert.ErrorIs(t, c.Dispatch(ctx, AddPatient{}), domain.ErrInvalidTransition)
	assert.ErrorIs(t, c.Dispatch(ctx, EditPatient{Patient: existing}), domain.ErrInvalidTransition)
	assert.Equal(t, domain.ViewAdd, c.CurrentState().View)
}

func TestControllerSubmitCreate(t *testing.T) {
	ctx := context.Background()
	var got domain.PatientRequest
	repo := &mockPatientRepository{
		CreateFunc: func(_ context.Context, req domain.PatientRequest) (domain.Patient, error) {
			got = req
			return domain.Patient{ID: "new"}, nil
		},
	}
	c, _ := newTestController(t, repo)

	require.NoError(t, c.Dispatch(ctx, AddPatient{}))
	require.NoError(t, c.Dispatch(ctx, Submit{Request: validRequest()}))

	assert.Equal(t, validRequest(), got)
	state := c.CurrentState()
	assert.Equal(t, domain.ViewList, state.View)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestControllerSubmitUpdateUsesEditingID(t *testing.T) {
	ctx := context.Background()
	var gotID string
	repo := &mockPatientRepository{
		UpdateFunc: func(_ context.Context, id string, req domain.PatientRequest) (domain.Patient, error) {
			gotID = id
			return domain.Patient{ID: id, Name: req.Name}, nil
		},
	}
	c, _ := newTestController(t, repo)

	require.NoError(t, c.Dispatch(ctx, EditPatient{Patient: existing}))
	req := existing.Request()
	req.Name = "Augusta Ada King"
	require.NoError(t, c.Dispatch(ctx, Submit{Request: req}))

	assert.Equal(t, "p-1", gotID)
	assert.Equal(t, domain.ViewList, c.CurrentState().View)
	assert.Nil(t, c.CurrentState().Editing)
}

func TestControllerSubmitInvalidMakesNoCall(t *testing.T) {
	ctx := context.Background()
	repo := &mockPatientRepository{}
	c, _ := newTestController(t, repo)

	require.NoError(t, c.Dispatch(ctx, AddPatient{}))
	req := validRequest()
	req.Email = "not-an-email"
	err := c.Dispatch(ctx, Submit{Request: req})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, repo.Calls())

	state := c.CurrentState()
	assert.Equal(t, domain.ViewAdd, state.View)
	assert.Equal(t, map[string]string{"email": "Email is invalid"}, state.FieldErrors)
}

func TestControllerSubmitFailureStaysInForm(t *testing.T) {
	ctx := context.Background()
	boom := &domain.TransportError{Op: "PatientClient.Create", StatusCode: 500, Err: errors.New("db down")}
	repo := &mockPatientRepository{
		CreateFunc: func(context.Context, domain.PatientRequest) (domain.Patient, error) {
			return domain.Patient{}, boom
		},
	}
	c, _ := newTestController(t, repo)

	require.NoError(t, c.Dispatch(ctx, AddPatient{}))
	err := c.Dispatch(ctx, Submit{Request: validRequest()})

	assert.ErrorIs(t, err, boom)
	state := c.CurrentState()
	assert.Equal(t, domain.ViewAdd, state.View)
	assert.False(t, state.Loading)
	assert.Equal(t, domain.MsgSaveFailed, state.Error)

	// the form can be retried
	repo.CreateFunc = func(context.Context, domain.PatientRequest) (domain.Patient, error) {
		return domain.Patient{ID: "x"}, nil
	}
	require.NoError(t, c.Dispatch(ctx, Submit{Request: validRequest()}))
	assert.Equal(t, domain.ViewList, c.CurrentState().View)
}

func TestControllerLoadingDuringSubmit(t *testing.T) {
	ctx := context.Background()
	var c *Controller
	var loadingSeen bool
	repo := &mockPatientRepository{
		CreateFunc: func(context.Context, domain.PatientRequest) (domain.Patient, error) {
			loadingSeen = c.CurrentState().Loading
			return domain.Patient{}, nil
		},
	}
	c, _ = newTestController(t, repo)

	require.NoError(t, c.Dispatch(ctx, AddPatient{}))
	require.NoError(t, c.Dispatch(ctx, Submit{Request: validRequest()}))

	assert.True(t, loadingSeen)
	assert.False(t, c.CurrentState().Loading)
}

func TestControllerLogin(t *testing.T) {
	ctx := context.Background()
	c, kv := newTestController(t, &mockPatientRepository{})

	_, err := c.Login(ctx, "", "password")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.MsgFillAllFields, c.CurrentState().Error)

	_, err = c.Login(ctx, "admin@example.com", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, domain.MsgLoginFailed, c.CurrentState().Error)

	session, err := c.Login(ctx, "admin@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, domain.Admin, session.User.Role)
	assert.Empty(t, c.CurrentState().Error)
	assert.True(t, c.CurrentState().Session.Authenticated())
	assert.NotEmpty(t, kv.data["token"])
}

func TestControllerLoginAs(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t, &mockPatientRepository{})

	session, err := c.LoginAs(ctx, domain.AppUser)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", session.User.Email)

	_, err = c.LoginAs(ctx, domain.UserRole("root"))
	assert.Error(t, err)
}

func TestControllerLogoutFromAnyView(t *testing.T) {
	ctx := context.Background()
	c, kv := newTestController(t, &mockPatientRepository{})
	_, err := c.LoginAs(ctx, domain.Admin)
	require.NoError(t, err)

	require.NoError(t, c.Dispatch(ctx, EditPatient{Patient: existing}))
	require.NoError(t, c.Dispatch(ctx, Logout{}))

	state := c.CurrentState()
	assert.Equal(t, domain.ViewList, state.View)
	assert.Nil(t, state.Editing)
	assert.False(t, state.Session.Authenticated())
	assert.Empty(t, kv.data)

	// logging out twice is harmless
	assert.NoError(t, c.Dispatch(ctx, Logout{}))
}

func TestControllerLoginTrimsEmail(t *testing.T) {
	c, _ := newTestController(t, &mockPatientRepository{})

	session, err := c.Login(context.Background(), "  admin@example.com\t", "password")

	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", session.User.Email)

	_, err = c.Login(context.Background(), "   ", "password")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
