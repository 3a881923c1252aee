package response

import (
	"errors"
	"net/http"

	"github.com/edvin/billing/internal/core"
	"github.com/edvin/billing/internal/iyzico"
)

// WriteServiceError maps service-layer errors onto HTTP status codes.
// Provisioning failures keep the partial references in the body so a client
// can resume an interrupted sequence instead of orphaning gateway resources.
func WriteServiceError(w http.ResponseWriter, err error) {
	var provErr *core.ProvisioningError
	if errors.As(err, &provErr) {
		status := http.StatusUnprocessableEntity
		if iyzico.IsUnavailable(err) {
			status = http.StatusBadGateway
		}
		WriteJSON(w, status, map[string]string{
			"error":       provErr.Error(),
			"step":        provErr.Step,
			"product_ref": provErr.ProductRef,
			"plan_ref":    provErr.PlanRef,
		})
		return
	}

	var apiErr *iyzico.APIError
	switch {
	case errors.Is(err, core.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrAlreadySubscribed):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidState):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrPlanReferenceRequired):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &apiErr):
		WriteError(w, http.StatusUnprocessableEntity, apiErr.Error())
	case iyzico.IsUnavailable(err):
		WriteError(w, http.StatusBadGateway, "payment gateway unavailable")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
