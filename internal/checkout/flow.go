// Package checkout implements the multi-step checkout state machine:
// cart → shipping → review, linear forward with validation gates, free
// backward navigation, and order submission from review. A flow works over
// a cart snapshot taken once at entry and is never persisted; navigating
// away discards it.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"storefront/internal/api"
	"storefront/internal/platform/metrics"
	dErrors "storefront/pkg/domain-errors"
)

// Step is the checkout position.
type Step string

const (
	StepCart     Step = "cart"
	StepShipping Step = "shipping"
	StepReview   Step = "review"
	// StepConfirmed is terminal: the order was accepted and the caller
	// should discard the flow and redirect to confirmation.
	StepConfirmed Step = "confirmed"
)

// ErrEmptyCart rejects checkout entry with zero items. Callers redirect to
// the cart view; checkout never runs against an empty snapshot.
var ErrEmptyCart = errors.New("cart is empty")

// OrdersAPI is the slice of the store API the flow needs.
type OrdersAPI interface {
	CreateOrder(ctx context.Context, req api.OrderRequest) (api.Order, error)
}

// Totals is the aggregated pricing over the snapshot and selection.
type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shippingCost"`
	Total        float64 `json:"total"`
}

// Option configures a Flow.
type Option func(*Flow)

// WithMetrics counts submitted orders.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Flow) { f.metrics = m }
}

// WithPrefilledEmail seeds the email field from the signed-in identity.
func WithPrefilledEmail(email string) Option {
	return func(f *Flow) { f.form.Email = email }
}

// Flow is one checkout draft. Safe for concurrent use, though the driving
// UI is expected to be a single event loop.
type Flow struct {
	client  OrdersAPI
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu          sync.Mutex
	id          string
	step        Step
	lines       []api.CartLine
	form        api.ShippingAddress
	fieldErrors map[string]string
	shippingID  string
}

// NewFlow snapshots the given cart lines and opens the draft at the cart
// step with the default shipping preselected.
func NewFlow(client OrdersAPI, lines []api.CartLine, logger *slog.Logger, opts ...Option) (*Flow, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	snapshot := make([]api.CartLine, len(lines))
	copy(snapshot, lines)

	f := &Flow{
		client:      client,
		logger:      logger,
		id:          uuid.NewString(),
		step:        StepCart,
		lines:       snapshot,
		fieldErrors: make(map[string]string),
		shippingID:  DefaultShippingID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// ID identifies the draft in logs.
func (f *Flow) ID() string { return f.id }

// Step returns the current position.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Lines returns the snapshot taken at entry. It is not re-fetched per step.
func (f *Flow) Lines() []api.CartLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]api.CartLine, len(f.lines))
	copy(out, f.lines)
	return out
}

// SetField updates one shipping-form field and clears its pending error, so
// a user correcting a field sees the message disappear as they type.
func (f *Flow) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch name {
	case "fullName":
		f.form.FullName = value
	case "email":
		f.form.Email = value
	case "address":
		f.form.Address = value
	case "city":
		f.form.City = value
	case "postalCode":
		f.form.PostalCode = value
	case "country":
		f.form.Country = value
	default:
		return dErrors.New(dErrors.CodeBadRequest, "unknown field "+name)
	}
	delete(f.fieldErrors, name)
	return nil
}

// Form returns the entered shipping form. Values survive backward
// navigation untouched.
func (f *Flow) Form() api.ShippingAddress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// FieldErrors returns the per-field messages from the last blocked
// transition.
func (f *Flow) FieldErrors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		out[k] = v
	}
	return out
}

// SelectShipping picks a catalog method for the draft.
func (f *Flow) SelectShipping(methodID string) error {
	if _, ok := MethodByID(methodID); !ok {
		return dErrors.New(dErrors.CodeBadRequest, "unknown shipping method "+methodID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shippingID = methodID
	return nil
}

// Shipping returns the selected catalog method.
func (f *Flow) Shipping() ShippingMethod {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, _ := MethodByID(f.shippingID)
	return m
}

// Next advances one step. cart→shipping is gated on full form validation;
// failure attaches per-field errors and blocks navigation. shipping→review
// is unconditional because a shipping method is always selected. There is
// no skipping forward and no Next past review; review exits via Submit.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepCart:
		if errs := validateShippingForm(f.form); len(errs) > 0 {
			f.fieldErrors = errs
			return dErrors.New(dErrors.CodeValidationFailed, "shipping form is incomplete").
				WithFields(errs)
		}
		f.fieldErrors = make(map[string]string)
		f.step = StepShipping
		return nil
	case StepShipping:
		f.step = StepReview
		return nil
	default:
		return dErrors.New(dErrors.CodeBadRequest, "cannot advance from "+string(f.step))
	}
}

// Back walks review→shipping→cart without validation, preserving all
// entered values. At cart it is a no-op.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepReview:
		f.step = StepShipping
	case StepShipping:
		f.step = StepCart
	}
}

// Totals aggregates pricing: subtotal over the entry snapshot, plus the
// selected method's fixed cost.
func (f *Flow) Totals() Totals {
	f.mu.Lock()
	defer f.mu.Unlock()

	subtotal := 0.0
	for _, line := range f.lines {
		subtotal += line.Product.Price * float64(line.Quantity)
	}
	method, _ := MethodByID(f.shippingID)
	return Totals{
		Subtotal:     subtotal,
		ShippingCost: method.Cost,
		Total:        subtotal + method.Cost,
	}
}

// Submit creates the order from the review step. On failure the flow stays
// on review with the error surfaced, and the caller may resubmit; there is
// no automatic retry. On success the flow becomes terminal.
func (f *Flow) Submit(ctx context.Context) (api.Order, error) {
	f.mu.Lock()
	if f.step != StepReview {
		step := f.step
		f.mu.Unlock()
		return api.Order{}, dErrors.New(dErrors.CodeBadRequest, "cannot submit from "+string(step))
	}
	form := f.form
	method, _ := MethodByID(f.shippingID)
	f.mu.Unlock()

	order, err := f.client.CreateOrder(ctx, api.OrderRequest{
		ShippingAddress: form,
		ShippingMethod: api.OrderShippingMethod{
			Type:          method.Name,
			Cost:          method.Cost,
			EstimatedDays: method.ETADays,
		},
	})
	if err != nil {
		f.logger.WarnContext(ctx, "order submission failed",
			"draft_id", f.id, "error", err)
		return api.Order{}, dErrors.Wrap(dErrors.CodeRemoteFailure, "order submission failed", err)
	}

	f.mu.Lock()
	f.step = StepConfirmed
	f.mu.Unlock()

	if f.metrics != nil {
		f.metrics.OrdersSubmitted.Inc()
	}
	f.logger.InfoContext(ctx, "order submitted", "draft_id", f.id, "order_id", order.ID)
	return order, nil
}
