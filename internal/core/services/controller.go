package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/ports"
)

// Action is an event fed to Controller.Dispatch.
type Action interface {
	action()
}

type (
	AddPatient  struct{}
	EditPatient struct{ Patient domain.Patient }
	Cancel      struct{}
	Submit      struct{ Request domain.PatientRequest }
	Logout      struct{}
)

func (AddPatient) action()  {}
func (EditPatient) action() {}
func (Cancel) action()      {}
func (Submit) action()      {}
func (Logout) action()      {}

// State is a snapshot of the controller for rendering.
type State struct {
	View        domain.View
	Editing     *domain.Patient
	Loading     bool
	Error       string
	FieldErrors map[string]string
	Session     domain.Session
}

// Controller tracks the current view and dispatches to the auth gateway and
// the patient repository. It holds no business rules beyond that.
type Controller struct {
	mu          sync.Mutex
	auth        ports.AuthGateway
	repo        ports.PatientRepository
	validate    *validator.Validate
	logger      ports.LoggerPort
	list        *PatientList
	view        domain.View
	editing     *domain.Patient
	loading     bool
	errMsg      string
	fieldErrors map[string]string
}

func NewController(
	auth ports.AuthGateway,
	repo ports.PatientRepository,
	validate *validator.Validate,
	logger ports.LoggerPort,
) *Controller {
	return &Controller{
		auth:     auth,
		repo:     repo,
		validate: validate,
		logger:   logger,
		list:     NewPatientList(repo, logger),
		view:     domain.ViewList,
	}
}

// Login checks that both fields are present and signs in through the
// gateway. Surrounding whitespace in email is ignored.
func (c *Controller) Login(ctx context.Context, email, password string) (domain.Session, error) {
	c.setError("")

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err := &domain.ValidationError{Fields: map[string]string{"form": domain.MsgFillAllFields}}
		c.setError(domain.MsgFillAllFields)
		return domain.Session{}, err
	}

	session, err := c.auth.Login(ctx, email, password)
	if err != nil {
		c.setError(domain.UserMessage(err, domain.MsgLoginFailed))
		return domain.Session{}, err
	}
	return session, nil
}

// LoginAs signs in with one of the demo accounts by role.
func (c *Controller) LoginAs(ctx context.Context, role domain.UserRole) (domain.Session, error) {
	for _, u := range DemoAccounts {
		if u.Role == role {
			return c.Login(ctx, u.Email, demoPassword)
		}
	}
	return domain.Session{}, fmt.Errorf("no demo account with role %q", role)
}

func (c *Controller) CurrentSession() domain.Session {
	return c.auth.CurrentSession()
}

// List is the list view owned by this controller.
func (c *Controller) List() *PatientList {
	return c.list
}

// DeletePatient is invoked from the list view; it is not a view transition.
func (c *Controller) DeletePatient(ctx context.Context, id string) error {
	return c.list.Delete(ctx, id)
}

func (c *Controller) CurrentState() State {
	c.mu.Lock()
	state := State{
		View:    c.view,
		Loading: c.loading,
		Error:   c.errMsg,
	}
	if c.editing != nil {
		p := *c.editing
		state.Editing = &p
	}
	if len(c.fieldErrors) > 0 {
		state.FieldErrors = make(map[string]string, len(c.fieldErrors))
		for k, v := range c.fieldErrors {
			state.FieldErrors[k] = v
		}
	}
	c.mu.Unlock()

	state.Session = c.auth.CurrentSession()
	return state
}

// Dispatch applies a to the view state machine. Pairs the machine does not
// define return ErrInvalidTransition and change nothing.
func (c *Controller) Dispatch(ctx context.Context, a Action) error {
	switch a := a.(type) {
	case AddPatient:
		return c.transition(a, func() {
			c.editing = nil
			c.view = domain.ViewAdd
		}, domain.ViewList)
	case EditPatient:
		return c.transition(a, func() {
			p := a.Patient
			c.editing = &p
			c.view = domain.ViewEdit
		}, domain.ViewList)
	case Cancel:
		return c.transition(a, func() {
			c.editing = nil
			c.view = domain.ViewList
		}, domain.ViewAdd, domain.ViewEdit)
	case Submit:
		return c.submit(ctx, a.Request)
	case Logout:
		return c.logout(ctx)
	default:
		return fmt.Errorf("unknown action %T", a)
	}
}

func (c *Controller) transition(a Action, apply func(), from ...domain.View) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.viewIn(from...) {
		return fmt.Errorf("%w: %T in %s view", domain.ErrInvalidTransition, a, c.view)
	}
	c.errMsg = ""
	c.fieldErrors = nil
	apply()
	return nil
}

func (c *Controller) viewIn(views ...domain.View) bool {
	for _, v := range views {
		if c.view == v {
			return true
		}
	}
	return false
}

func (c *Controller) submit(ctx context.Context, req domain.PatientRequest) error {
	const op = "Controller.submit"

	c.mu.Lock()
	if !c.viewIn(domain.ViewAdd, domain.ViewEdit) {
		view := c.view
		c.mu.Unlock()
		return fmt.Errorf("%w: Submit in %s view", domain.ErrInvalidTransition, view)
	}
	if c.loading {
		c.mu.Unlock()
		return fmt.Errorf("%s: submission already in progress", op)
	}

	if err := ValidatePatient(c.validate, req); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			c.fieldErrors = verr.Fields
		}
		c.mu.Unlock()
		return err
	}

	view := c.view
	var editingID string
	if c.editing != nil {
		editingID = c.editing.ID
	}
	c.fieldErrors = nil
	c.errMsg = ""
	c.loading = true
	c.mu.Unlock()

	var err error
	if view == domain.ViewEdit {
		_, err = c.repo.Update(ctx, editingID, req)
	} else {
		_, err = c.repo.Create(ctx, req)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		c.errMsg = domain.UserMessage(err, domain.MsgSaveFailed)
		c.logger.Error("Error saving patient", map[string]interface{}{
			"view":  string(view),
			"id":    editingID,
			"error": err.Error(),
		})
		return fmt.Errorf("%s: %w", op, err)
	}

	c.view = domain.ViewList
	c.editing = nil
	return nil
}

func (c *Controller) logout(ctx context.Context) error {
	c.mu.Lock()
	c.view = domain.ViewList
	c.editing = nil
	c.errMsg = ""
	c.fieldErrors = nil
	c.mu.Unlock()

	return c.auth.Logout(ctx)
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()
}
