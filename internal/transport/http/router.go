// Package httptransport is the thin facade the presentation shell talks to.
// It delegates to the stores and flow without embedding business logic so
// transport concerns remain isolated.
package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/favorites"
	"storefront/internal/platform/metrics"
	"storefront/internal/platform/middleware"
	"storefront/internal/prefs"
	"storefront/internal/session"
	dErrors "storefront/pkg/domain-errors"
)

// StoreAPI is the slice of the remote client the facade calls directly:
// cart mutations (which are proxied upstream and then reconciled via
// refresh), order creation, and catalog reads.
type StoreAPI interface {
	AddToCart(ctx context.Context, productID string, quantity int, variant map[string]string) error
	UpdateCartLine(ctx context.Context, lineID string, quantity int, variant map[string]string) error
	RemoveCartLine(ctx context.Context, lineID string) error
	ClearCart(ctx context.Context) error
	CreateOrder(ctx context.Context, req api.OrderRequest) (api.Order, error)
	Products(ctx context.Context, lang string) ([]api.Product, error)
	FeaturedProducts(ctx context.Context, lang string) ([]api.Product, error)
	ProductBySlug(ctx context.Context, slug, lang string) (api.Product, error)
}

// Handler wires the client-state layer to HTTP.
type Handler struct {
	logger    *slog.Logger
	metrics   *metrics.Metrics
	sessions  *session.Manager
	cart      *cart.Store
	favorites *favorites.Store
	prefs     prefs.Store
	client    StoreAPI
	deviceID  string

	// One checkout draft at a time; it is never persisted.
	mu   sync.Mutex
	flow *checkout.Flow
}

// New creates the facade handler.
func New(
	logger *slog.Logger,
	m *metrics.Metrics,
	sessions *session.Manager,
	cartStore *cart.Store,
	favoritesStore *favorites.Store,
	prefStore prefs.Store,
	client StoreAPI,
	deviceID string,
) *Handler {
	return &Handler{
		logger:    logger,
		metrics:   m,
		sessions:  sessions,
		cart:      cartStore,
		favorites: favoritesStore,
		prefs:     prefStore,
		client:    client,
		deviceID:  deviceID,
	}
}

// NewRouter builds the chi router with the platform middleware chain.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Latency(h.metrics))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Post("/session/sign-in", h.handleSignIn)
		r.Post("/session/sign-up", h.handleSignUp)
		r.Post("/session/sign-out", h.handleSignOut)
		r.Get("/session", h.handleSession)

		r.Get("/store/cart", h.handleCartGet)
		r.Post("/store/cart/items", h.handleCartAdd)
		r.Patch("/store/cart/items/{lineID}", h.handleCartUpdate)
		r.Delete("/store/cart/items/{lineID}", h.handleCartRemove)
		r.Delete("/store/cart", h.handleCartClear)

		r.Get("/store/favorites", h.handleFavoritesGet)
		r.Put("/store/favorites/{productID}", h.handleFavoriteAdd)
		r.Delete("/store/favorites/{productID}", h.handleFavoriteRemove)
		r.Post("/store/favorites/{productID}/toggle", h.handleFavoriteToggle)

		r.Get("/store/preferences", h.handlePreferencesGet)
		r.Put("/store/preferences", h.handlePreferencesPut)
		r.Get("/store/format-price", h.handleFormatPrice)

		r.Get("/products", h.handleProducts)
		r.Get("/products/featured", h.handleFeaturedProducts)
		r.Get("/products/{slug}", h.handleProductBySlug)

		r.Post("/checkout", h.handleCheckoutEnter)
		r.Get("/checkout", h.handleCheckoutGet)
		r.Delete("/checkout", h.handleCheckoutDiscard)
		r.Post("/checkout/fields", h.handleCheckoutFields)
		r.Post("/checkout/shipping-method", h.handleCheckoutShipping)
		r.Post("/checkout/next", h.handleCheckoutNext)
		r.Post("/checkout/back", h.handleCheckoutBack)
		r.Post("/checkout/submit", h.handleCheckoutSubmit)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError centralizes domain error translation to the JSON error
// envelope, keeping one consistent shape for the presentation layer.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := "internal error"
	var fields map[string]string

	var de *dErrors.Error
	if errors.As(err, &de) {
		code = de.Code
		message = de.Message
		fields = de.Fields
	}

	body := map[string]any{
		"error":   string(code),
		"message": message,
	}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	writeJSON(w, dErrors.ToHTTPStatus(code), body)
}

func decodeBody(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
