package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sm8ta/patient_records/internal/core/domain"
	"github.com/sm8ta/patient_records/internal/core/ports"
	"github.com/sm8ta/patient_records/internal/core/services"
)

type PatientHandler struct {
	patientService *services.PatientService
	logger         ports.LoggerPort
	metrics        ports.MetricsPort
}

// PatientResponse is the record shape clients receive. The birth date key
// keeps the historical "dataOfBirth" spelling existing clients depend on.
type PatientResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	DataOfBirth string `json:"dataOfBirth"`
}

func toPatientResponse(p *domain.Patient) PatientResponse {
	return PatientResponse{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Address:     p.Address,
		DataOfBirth: p.DateOfBirth,
	}
}

func NewPatientHandler(
	patientService *services.PatientService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		logger:         logger,
		metrics:        metrics,
	}
}

func (h *PatientHandler) record(c *gin.Context, start time.Time) {
	h.metrics.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), start)
}

func (h *PatientHandler) ListPatients(c *gin.Context) {
	start := time.Now()
	defer h.record(c, start)

	patients, err := h.patientService.ListPatients(c.Request.Context())
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to list patients")
		return
	}

	response := make([]PatientResponse, 0, len(patients))
	for i := range patients {
		response = append(response, toPatientResponse(&patients[i]))
	}
	c.JSON(http.StatusOK, response)
}

func (h *PatientHandler) CreatePatient(c *gin.Context) {
	start := time.Now()
	defer h.record(c, start)

	var req domain.PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Failed JSON parse in create patient", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	patient, err := h.patientService.CreatePatient(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err, "Create failed")
		return
	}

	h.logger.Info("Patient created via API", map[string]interface{}{
		"id":           patient.ID,
		"requester_id": requesterID(c),
	})
	c.JSON(http.StatusCreated, toPatientResponse(patient))
}

func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	start := time.Now()
	defer h.record(c, start)

	id := c.Param("id")

	var req domain.PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Failed JSON parse in update patient", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	patient, err := h.patientService.UpdatePatient(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err, "Update failed")
		return
	}

	h.logger.Info("Patient updated via API", map[string]interface{}{
		"id":           id,
		"requester_id": requesterID(c),
	})
	c.JSON(http.StatusOK, toPatientResponse(patient))
}

func (h *PatientHandler) DeletePatient(c *gin.Context) {
	start := time.Now()
	defer h.record(c, start)

	id := c.Param("id")

	if err := h.patientService.DeletePatient(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err, "Delete failed")
		return
	}

	h.logger.Info("Patient deleted via API", map[string]interface{}{
		"id":           id,
		"requester_id": requesterID(c),
	})
	c.Status(http.StatusOK)
}

func (h *PatientHandler) writeServiceError(c *gin.Context, err error, fallback string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		newFieldErrorResponse(c, http.StatusBadRequest, "Validation failed", verr.Fields)
	case errors.Is(err, domain.ErrPatientNotFound):
		newErrorResponse(c, http.StatusNotFound, "Patient not found")
	default:
		newErrorResponse(c, http.StatusInternalServerError, fallback)
	}
}
