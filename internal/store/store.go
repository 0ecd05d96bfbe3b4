// Package store is the data access layer for the hosted table backend. It
// exposes one operation per (entity, verb) pair; list operations order by
// creation time, newest first.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/wassimtechnew/Techsatwassim/internal/domain"
)

// CodeNoRows is the backend error code returned when a single-row lookup
// matches zero rows. It marks an absent record, not a failure.
const CodeNoRows = "PGRST116"

// Error wraps a failed table operation with the backend's machine-readable
// code and message.
type Error struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("store: %s (status %d)", e.Message, e.HTTPStatus)
	}
	return fmt.Sprintf("store: %s: %s (status %d)", e.Code, e.Message, e.HTTPStatus)
}

// IsNoRows reports whether err is the backend's zero-rows signal for
// single-row lookups.
func IsNoRows(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == CodeNoRows
	}
	return false
}

// Store provides CRUD access to the offers, boxes and settings tables.
// Implementations must treat a zero-row settings lookup as absent
// (ok=false, nil error), never as a failure.
type Store interface {
	ListOffers(ctx context.Context) ([]domain.Offer, error)
	InsertOffer(ctx context.Context, in domain.OfferInput) error
	UpdateOffer(ctx context.Context, id string, in domain.OfferInput) error
	DeleteOffer(ctx context.Context, id string) error

	ListBoxes(ctx context.Context) ([]domain.Box, error)
	InsertBox(ctx context.Context, in domain.BoxInput) error
	UpdateBox(ctx context.Context, id string, in domain.BoxInput) error
	DeleteBox(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (domain.Settings, bool, error)
	InsertSettings(ctx context.Context, in domain.SettingsInput) error
	UpdateSettings(ctx context.Context, id string, in domain.SettingsInput) error
}
