package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/billing/internal/api/request"
	"github.com/edvin/billing/internal/api/response"
	"github.com/edvin/billing/internal/core"
	"github.com/edvin/billing/internal/iyzico"
	"github.com/edvin/billing/internal/model"
)

// SubscriptionDefaults supplies service-level fallbacks applied when a
// create request leaves trial length or currency unset.
type SubscriptionDefaults struct {
	TrialDays int
	Currency  string
}

type Subscription struct {
	svc      *core.SubscriptionService
	defaults SubscriptionDefaults
}

func NewSubscription(svc *core.SubscriptionService, defaults SubscriptionDefaults) *Subscription {
	return &Subscription{svc: svc, defaults: defaults}
}

func (h *Subscription) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := request.RequireID(chi.URLParam(r, "ownerID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := request.ParsePagination(r)

	subs, hasMore, err := h.svc.ListByOwner(r.Context(), ownerID, p.Limit, p.Cursor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(subs) > 0 {
		nextCursor = subs[len(subs)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, subs, nextCursor, hasMore)
}

func (h *Subscription) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := request.RequireID(chi.URLParam(r, "ownerID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CreateSubscription
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	builder := h.svc.NewSubscription(ownerID, req.Name, req.Plan)
	trialDays := req.TrialDays
	if trialDays == 0 {
		trialDays = h.defaults.TrialDays
	}
	if trialDays > 0 {
		builder.TrialDays(trialDays)
	}
	if req.SkipTrial {
		builder.SkipTrial()
	}

	customer := buildCustomer(req.Customer)
	card := buildCard(req.Card)

	var sub *model.Subscription
	if req.PlanReference != "" {
		sub, err = builder.WithPlanReference(req.PlanReference).CreateDirect(r.Context(), customer, card)
	} else {
		currency := req.Currency
		if currency == "" {
			currency = h.defaults.Currency
		}
		sub, err = builder.Create(r.Context(), customer, card, core.PlanDetails{
			Price:         req.Price,
			Currency:      currency,
			Interval:      req.Interval,
			IntervalCount: req.IntervalCount,
		})
	}
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, sub)
}

func (h *Subscription) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, name, ok := h.seatParams(w, r)
	if !ok {
		return
	}

	sub, err := h.svc.GetByOwnerAndName(r.Context(), ownerID, name)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, sub)
}

func (h *Subscription) Cancel(w http.ResponseWriter, r *http.Request) {
	ownerID, name, ok := h.seatParams(w, r)
	if !ok {
		return
	}

	sub, err := h.svc.Cancel(r.Context(), ownerID, name)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, sub)
}

func (h *Subscription) Resume(w http.ResponseWriter, r *http.Request) {
	ownerID, name, ok := h.seatParams(w, r)
	if !ok {
		return
	}

	sub, err := h.svc.Resume(r.Context(), ownerID, name)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, sub)
}

func (h *Subscription) Retry(w http.ResponseWriter, r *http.Request) {
	h.gatewayAction(w, r, h.svc.Retry)
}

func (h *Subscription) Activate(w http.ResponseWriter, r *http.Request) {
	h.gatewayAction(w, r, h.svc.Activate)
}

func (h *Subscription) Upgrade(w http.ResponseWriter, r *http.Request) {
	ownerID, name, ok := h.seatParams(w, r)
	if !ok {
		return
	}

	var req request.UpgradeSubscription
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	applied, err := h.svc.Upgrade(r.Context(), ownerID, name, core.UpgradeParams{
		NewPlanReferenceCode: req.NewPlanReference,
		ResetRecurrenceCount: req.ResetRecurrenceCount,
		UseTrial:             req.UseTrial,
		When:                 req.When,
	})
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

// gatewayAction shares the shape of retry and activate: a gateway-side
// action whose business rejection is a 200 with applied=false.
func (h *Subscription) gatewayAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, ownerID, name string) (bool, error)) {
	ownerID, name, ok := h.seatParams(w, r)
	if !ok {
		return
	}

	applied, err := action(r.Context(), ownerID, name)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

func (h *Subscription) seatParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	ownerID, err := request.RequireID(chi.URLParam(r, "ownerID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	name, err := request.RequireID(chi.URLParam(r, "name"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	return ownerID, name, true
}

func buildCustomer(c request.SubscriptionCustomer) iyzico.Customer {
	addr := iyzico.Address{
		ContactName: c.Address.ContactName,
		City:        c.Address.City,
		Country:     c.Address.Country,
		Address:     c.Address.Address,
		ZipCode:     c.Address.ZipCode,
	}
	return iyzico.Customer{
		Name:            c.Name,
		Surname:         c.Surname,
		GSMNumber:       c.GSMNumber,
		Email:           c.Email,
		IdentityNumber:  c.IdentityNumber,
		BillingAddress:  addr,
		ShippingAddress: addr,
	}
}

func buildCard(c request.SubscriptionCard) iyzico.PaymentCard {
	return iyzico.PaymentCard{
		CardHolderName: c.HolderName,
		CardNumber:     c.Number,
		ExpireMonth:    c.ExpireMonth,
		ExpireYear:     c.ExpireYear,
		CVC:            c.CVC,
	}
}
