package handler

import (
	"net/http"

	"github.com/edvin/billing/internal/api/middleware"
	"github.com/edvin/billing/internal/api/response"
	"github.com/edvin/billing/internal/core"
)

type Webhook struct {
	svc *core.WebhookService
}

func NewWebhook(svc *core.WebhookService) *Webhook {
	return &Webhook{svc: svc}
}

// Receive acknowledges a verified webhook delivery. Handler failures are
// absorbed by the dispatcher; only a ledger write failure produces a non-200,
// which makes the gateway redeliver.
func (h *Webhook) Receive(w http.ResponseWriter, r *http.Request) {
	payload := middleware.PayloadFromContext(r.Context())
	if payload == nil {
		response.WriteError(w, http.StatusForbidden, "unverified delivery")
		return
	}

	if err := h.svc.Handle(r.Context(), payload); err != nil {
		response.WriteError(w, http.StatusInternalServerError, "event not recorded")
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
