package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/domain"
)

//go:generate mockery --name PatientService --output ../mocks
type PatientService interface {
	Create(ctx context.Context, claims *auth.Claims, req dto.CreatePatientRequest) (*domain.Patient, error)
	Get(ctx context.Context, claims *auth.Claims, id string) (*domain.Patient, error)
	List(ctx context.Context, claims *auth.Claims, page, pageSize int) ([]domain.Patient, error)
	Delete(ctx context.Context, claims *auth.Claims, id string) error
}

type PatientHandler struct {
	*BaseHandler
	service PatientService
}

func NewPatientHandler(service PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

// CreatePatient Register a patient in the caller's clinic
// @Summary Create patient
// @Description Creates a patient, limited by the plan's patient quota
// @Tags    patients
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   body body dto.CreatePatientRequest true "Patient"
// @Success 201 {object} dto.PatientResponse
// @Failure 400 {object} dto.Error
// @Failure 402 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Router  /patients [post]
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}
	var req dto.CreatePatientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	patient, err := h.service.Create(h.RequestCtx(c), claims, req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromPatient(patient))
}

// GetPatient Get a patient by ID
// @Summary Get patient
// @Tags    patients
// @Produce json
// @Security BearerAuth
// @Param   id path string true "Patient ID"
// @Success 200 {object} dto.PatientResponse
// @Failure 401 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router  /patients/{id} [get]
func (h *PatientHandler) GetPatient(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}

	patient, err := h.service.Get(h.RequestCtx(c), claims, c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPatient(patient))
}

// ListPatients List patients of the caller's clinic
// @Summary List patients
// @Tags    patients
// @Produce json
// @Security BearerAuth
// @Param   page query int false "Page number"
// @Param   page_size query int false "Page size"
// @Success 200 {array} dto.PatientResponse
// @Failure 401 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Router  /patients [get]
func (h *PatientHandler) ListPatients(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}

	patients, err := h.service.List(h.RequestCtx(c), claims, queryInt(c, "page", 1), queryInt(c, "page_size", 0))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPatients(patients))
}

// DeletePatient Delete a patient
// @Summary Delete patient
// @Tags    patients
// @Security BearerAuth
// @Param   id path string true "Patient ID"
// @Success 204
// @Failure 401 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router  /patients/{id} [delete]
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}

	if err := h.service.Delete(h.RequestCtx(c), claims, c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
