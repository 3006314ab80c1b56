package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cardioassist/cardio-api/internal/api/metrics"
	"github.com/cardioassist/cardio-api/internal/core/domain"
	"github.com/cardioassist/cardio-api/internal/core/ports"
)

type IntakeHandler struct {
	service ports.IntakeService
}

func NewIntakeHandler(service ports.IntakeService) *IntakeHandler {
	return &IntakeHandler{service: service}
}

// List handles GET /v1/intake, newest first.
//
// @Summary      List own intake records
// @Tags         intake
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  intakeListResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/intake [get]
func (h *IntakeHandler) List(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	records, err := h.service.ListIntake(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	if records == nil {
		records = []domain.IntakeRecord{}
	}
	return c.JSON(http.StatusOK, intakeListResponse{Records: records})
}

// Create handles POST /v1/intake.
//
// @Summary      Submit an intake form
// @Tags         intake
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createIntakeRequest  true  "Patient intake"
// @Success      201   {object}  domain.IntakeRecord
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/intake [post]
func (h *IntakeHandler) Create(c echo.Context) error {
	caller, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req createIntakeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rec, err := h.service.CreateIntake(c.Request().Context(), caller, req.toInput())
	if err != nil {
		return err
	}
	metrics.IntakeRecordsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, rec)
}
