package domain

// DateLayout is the calendar date form used for every date field.
const DateLayout = "2006-01-02"

// Patient is the client-side view of a patient record. ID is assigned by the
// remote API and never by the client.
type Patient struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	DateOfBirth    string `json:"dateOfBirth"`
	RegisteredDate string `json:"registeredDate"`
}

// PatientRequest is the write-side shape sent on create and update.
type PatientRequest struct {
	Name           string `json:"name" validate:"notblank"`
	Email          string `json:"email" validate:"notblank,basic_email"`
	Address        string `json:"address" validate:"notblank"`
	DateOfBirth    string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	RegisteredDate string `json:"registeredDate" validate:"required,datetime=2006-01-02"`
}

// Request returns the editable fields of p, used to prefill an edit form.
func (p Patient) Request() PatientRequest {
	return PatientRequest{
		Name:           p.Name,
		Email:          p.Email,
		Address:        p.Address,
		DateOfBirth:    p.DateOfBirth,
		RegisteredDate: p.RegisteredDate,
	}
}
