package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and the remote client
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist upstream or in a store
// - ErrExpired: credential has expired
// - ErrUnauthorized: upstream rejected the session credential
// - ErrUnavailable: upstream or store temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
)
