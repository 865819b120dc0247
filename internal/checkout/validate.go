package checkout

import (
	"regexp"
	"strings"

	"storefront/internal/api"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// validateShippingForm returns per-field messages for the shipping form.
// Every field is required; email additionally needs a local@domain.tld
// shape. An empty map means the form passes.
func validateShippingForm(form api.ShippingAddress) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(form.FullName) == "" {
		errs["fullName"] = "full name is required"
	}
	switch {
	case strings.TrimSpace(form.Email) == "":
		errs["email"] = "email is required"
	case !emailPattern.MatchString(form.Email):
		errs["email"] = "email is invalid"
	}
	if strings.TrimSpace(form.Address) == "" {
		errs["address"] = "address is required"
	}
	if strings.TrimSpace(form.City) == "" {
		errs["city"] = "city is required"
	}
	if strings.TrimSpace(form.PostalCode) == "" {
		errs["postalCode"] = "postal code is required"
	}
	if strings.TrimSpace(form.Country) == "" {
		errs["country"] = "country is required"
	}

	return errs
}
