package checkout

// ShippingMethod is one tier of the fixed shipping catalog. The catalog is
// static client-side; only the resolved selection is sent upstream with the
// order.
type ShippingMethod struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Cost    float64 `json:"cost"`
	ETADays int     `json:"etaDays"`
}

// DefaultShippingID is preselected on every new draft, which is why the
// shipping step never blocks forward navigation.
const DefaultShippingID = "standard"

var shippingMethods = []ShippingMethod{
	{ID: "standard", Name: "Standard Shipping", Cost: 0, ETADays: 5},
	{ID: "express", Name: "Express Shipping", Cost: 15, ETADays: 2},
	{ID: "overnight", Name: "Overnight", Cost: 35, ETADays: 1},
}

// ShippingMethods returns the catalog in display order.
func ShippingMethods() []ShippingMethod {
	out := make([]ShippingMethod, len(shippingMethods))
	copy(out, shippingMethods)
	return out
}

// MethodByID looks up a catalog entry.
func MethodByID(id string) (ShippingMethod, bool) {
	for _, m := range shippingMethods {
		if m.ID == id {
			return m, true
		}
	}
	return ShippingMethod{}, false
}
