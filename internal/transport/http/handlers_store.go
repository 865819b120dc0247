package httptransport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/currency"
	"storefront/internal/prefs"
	dErrors "storefront/pkg/domain-errors"
)

type cartResponse struct {
	Lines    []api.CartLine `json:"lines"`
	Count    int            `json:"count"`
	Subtotal float64        `json:"subtotal"`
	Loading  bool           `json:"loading"`
}

func (h *Handler) cartSnapshot() cartResponse {
	return cartResponse{
		Lines:    h.cart.Lines(),
		Count:    h.cart.Count(),
		Subtotal: h.cart.Subtotal(),
		Loading:  h.cart.Loading(),
	}
}

func (h *Handler) handleCartGet(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

type cartAddRequest struct {
	ProductID       string            `json:"productId"`
	Quantity        int               `json:"quantity"`
	SelectedVariant map[string]string `json:"selectedVariant,omitempty"`
}

type cartUpdateRequest struct {
	Quantity        int               `json:"quantity"`
	SelectedVariant map[string]string `json:"selectedVariant,omitempty"`
}

// Cart mutations proxy to the upstream API and then refresh the store. The
// local aggregate is never patched in place; reconciliation keeps pricing
// honest even when the upstream call partially failed.
func (h *Handler) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var req cartAddRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := cart.ValidateQuantity(req.Quantity); err != nil {
		writeError(w, err)
		return
	}

	if err := h.client.AddToCart(r.Context(), req.ProductID, req.Quantity, req.SelectedVariant); err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeRemoteFailure, "failed to add to cart", err))
		return
	}
	h.reconcileCart(w, r)
}

func (h *Handler) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")

	var req cartUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := cart.ValidateQuantity(req.Quantity); err != nil {
		writeError(w, err)
		return
	}

	if err := h.client.UpdateCartLine(r.Context(), lineID, req.Quantity, req.SelectedVariant); err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeRemoteFailure, "failed to update cart line", err))
		return
	}
	h.reconcileCart(w, r)
}

func (h *Handler) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")

	if err := h.client.RemoveCartLine(r.Context(), lineID); err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeRemoteFailure, "failed to remove cart line", err))
		return
	}
	h.reconcileCart(w, r)
}

func (h *Handler) handleCartClear(w http.ResponseWriter, r *http.Request) {
	if err := h.client.ClearCart(r.Context()); err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeRemoteFailure, "failed to clear cart", err))
		return
	}
	h.reconcileCart(w, r)
}

func (h *Handler) reconcileCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartSnapshot())
}

type favoritesResponse struct {
	IDs     []string `json:"ids"`
	Loading bool     `json:"loading"`
}

func (h *Handler) handleFavoritesGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, favoritesResponse{
		IDs:     h.favorites.IDs(),
		Loading: h.favorites.Loading(),
	})
}

func (h *Handler) handleFavoriteAdd(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if err := h.favorites.Add(r.Context(), productID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favoritesResponse{IDs: h.favorites.IDs()})
}

func (h *Handler) handleFavoriteRemove(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if err := h.favorites.Remove(r.Context(), productID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favoritesResponse{IDs: h.favorites.IDs()})
}

func (h *Handler) handleFavoriteToggle(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if err := h.favorites.Toggle(r.Context(), productID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ids":        h.favorites.IDs(),
		"isFavorite": h.favorites.IsFavorite(productID),
	})
}

type preferencesRequest struct {
	Currency string `json:"currency,omitempty"`
	Language string `json:"language,omitempty"`
}

func (h *Handler) handlePreferencesGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.prefs.Load(r.Context(), h.deviceID)
	if err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeUnavailable, "failed to load preferences", err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handlePreferencesPut(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Currency != "" {
		c, err := currency.Parse(req.Currency)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := h.prefs.SetCurrency(r.Context(), h.deviceID, c); err != nil {
			writeError(w, dErrors.Wrap(dErrors.CodeUnavailable, "failed to save currency", err))
			return
		}
	}
	if req.Language != "" {
		if err := h.prefs.SetLanguage(r.Context(), h.deviceID, prefs.ParseLanguage(req.Language)); err != nil {
			writeError(w, dErrors.Wrap(dErrors.CodeUnavailable, "failed to save language", err))
			return
		}
	}

	p, err := h.prefs.Load(r.Context(), h.deviceID)
	if err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeUnavailable, "failed to load preferences", err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleFormatPrice exposes the price formatter so the shell renders
// exactly what the gateway computes. The amount is in base currency (USD);
// the target defaults to the saved preference.
func (h *Handler) handleFormatPrice(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "amount must be a number"))
		return
	}

	target := r.URL.Query().Get("currency")
	var cur currency.Currency
	if target != "" {
		cur, err = currency.Parse(target)
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		p, err := h.prefs.Load(r.Context(), h.deviceID)
		if err != nil {
			writeError(w, dErrors.Wrap(dErrors.CodeUnavailable, "failed to load preferences", err))
			return
		}
		cur = p.Currency
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"currency":  string(cur),
		"formatted": currency.FormatPrice(amount, cur),
	})
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.client.Products(r.Context(), r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeRemoteFailure, "failed to load products", err))
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.client.FeaturedProducts(r.Context(), r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeRemoteFailure, "failed to load products", err))
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleProductBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.client.ProductBySlug(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeRemoteFailure, "failed to load product", err))
		return
	}
	writeJSON(w, http.StatusOK, product)
}
