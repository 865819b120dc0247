// Package prefs persists the device-local display preferences: currency and
// language. These never affect stored prices or server state, only
// presentation, and mutate synchronously.
package prefs

import (
	"context"

	"storefront/internal/currency"
)

// Language is the UI language preference. Translation lookup itself lives
// in the presentation layer; only the persisted selection is owned here.
type Language string

const (
	LangEN Language = "en"
	LangRU Language = "ru"
	LangAR Language = "ar"
)

var knownLanguages = map[Language]bool{LangEN: true, LangRU: true, LangAR: true}

// ParseLanguage falls back to English for unknown values, mirroring how a
// corrupted saved preference is handled.
func ParseLanguage(s string) Language {
	l := Language(s)
	if knownLanguages[l] {
		return l
	}
	return LangEN
}

// Preferences is the persisted per-device selection.
type Preferences struct {
	Currency currency.Currency `json:"currency"`
	Language Language          `json:"language"`
}

// Defaults is what a fresh device sees.
func Defaults() Preferences {
	return Preferences{Currency: currency.USD, Language: LangEN}
}

// Store persists preferences per device. Load never fails on absent or
// unknown values; it falls back to defaults.
type Store interface {
	Load(ctx context.Context, deviceID string) (Preferences, error)
	SetCurrency(ctx context.Context, deviceID string, c currency.Currency) error
	SetLanguage(ctx context.Context, deviceID string, l Language) error
}
