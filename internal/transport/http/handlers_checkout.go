package httptransport

import (
	"errors"
	"net/http"

	"storefront/internal/api"
	"storefront/internal/checkout"
	dErrors "storefront/pkg/domain-errors"
)

type checkoutResponse struct {
	Step        checkout.Step             `json:"step"`
	Lines       []api.CartLine            `json:"lines"`
	Form        api.ShippingAddress       `json:"form"`
	FieldErrors map[string]string         `json:"fieldErrors,omitempty"`
	Shipping    checkout.ShippingMethod   `json:"shipping"`
	Methods     []checkout.ShippingMethod `json:"methods"`
	Totals      checkout.Totals           `json:"totals"`
}

func toCheckoutResponse(f *checkout.Flow) checkoutResponse {
	return checkoutResponse{
		Step:        f.Step(),
		Lines:       f.Lines(),
		Form:        f.Form(),
		FieldErrors: f.FieldErrors(),
		Shipping:    f.Shipping(),
		Methods:     checkout.ShippingMethods(),
		Totals:      f.Totals(),
	}
}

func (h *Handler) currentFlow() (*checkout.Flow, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.flow == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no checkout in progress")
	}
	return h.flow, nil
}

// handleCheckoutEnter loads a fresh cart snapshot and opens a draft.
// Anonymous sessions are sent to sign-in and an empty cart is rejected
// before any step runs, so checkout never operates on zero items.
func (h *Handler) handleCheckoutEnter(w http.ResponseWriter, r *http.Request) {
	snap := h.sessions.Current()
	if !snap.Authenticated() {
		writeError(w, dErrors.New(dErrors.CodeAuthRequired, "sign in to check out"))
		return
	}

	if err := h.cart.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	flow, err := checkout.NewFlow(h.client, h.cart.Lines(), h.logger,
		checkout.WithMetrics(h.metrics),
		checkout.WithPrefilledEmail(snap.User.Email),
	)
	if errors.Is(err, checkout.ErrEmptyCart) {
		writeError(w, dErrors.Wrap(dErrors.CodeConflict, "cart is empty", err))
		return
	}
	if err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeInternal, "failed to start checkout", err))
		return
	}

	h.mu.Lock()
	h.flow = flow
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, toCheckoutResponse(flow))
}

func (h *Handler) handleCheckoutGet(w http.ResponseWriter, r *http.Request) {
	flow, err := h.currentFlow()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckoutResponse(flow))
}

// handleCheckoutDiscard drops the draft, as navigating away does.
func (h *Handler) handleCheckoutDiscard(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.flow = nil
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type checkoutFieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

func (h *Handler) handleCheckoutFields(w http.ResponseWriter, r *http.Request) {
	flow, err := h.currentFlow()
	if err != nil {
		writeError(w, err)
		return
	}

	var req checkoutFieldsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	for name, value := range req.Fields {
		if err := flow.SetField(name, value); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toCheckoutResponse(flow))
}

type checkoutShippingRequest struct {
	MethodID string `json:"methodId"`
}

func (h *Handler) handleCheckoutShipping(w http.ResponseWriter, r *http.Request) {
	flow, err := h.currentFlow()
	if err != nil {
		writeError(w, err)
		return
	}

	var req checkoutShippingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := flow.SelectShipping(req.MethodID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckoutResponse(flow))
}

func (h *Handler) handleCheckoutNext(w http.ResponseWriter, r *http.Request) {
	flow, err := h.currentFlow()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := flow.Next(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckoutResponse(flow))
}

func (h *Handler) handleCheckoutBack(w http.ResponseWriter, r *http.Request) {
	flow, err := h.currentFlow()
	if err != nil {
		writeError(w, err)
		return
	}
	flow.Back()
	writeJSON(w, http.StatusOK, toCheckoutResponse(flow))
}

// handleCheckoutSubmit creates the order. Success clears the draft and
// reconciles the cart (the upstream empties it on order creation); failure
// keeps the draft on review for manual resubmission.
func (h *Handler) handleCheckoutSubmit(w http.ResponseWriter, r *http.Request) {
	flow, err := h.currentFlow()
	if err != nil {
		writeError(w, err)
		return
	}

	order, err := flow.Submit(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	h.mu.Lock()
	h.flow = nil
	h.mu.Unlock()

	if err := h.cart.Refresh(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "cart refresh after order failed", "error", err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"order": order,
		"step":  checkout.StepConfirmed,
	})
}
