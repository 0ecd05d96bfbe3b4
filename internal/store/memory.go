package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wassimtechnew/Techsatwassim/internal/domain"
)

// MemoryStore is an in-process Store used by tests and local development.
// It mirrors the backend's behaviour: ids are assigned on insert, lists are
// ordered by creation time descending, and a missing settings row reads as
// absent.
type MemoryStore struct {
	mu       sync.Mutex
	clock    func() time.Time
	offers   map[string]domain.Offer
	boxes    map[string]domain.Box
	settings *domain.Settings
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clock:  time.Now,
		offers: make(map[string]domain.Offer),
		boxes:  make(map[string]domain.Box),
	}
}

// SetClock overrides the timestamp source. Intended for tests.
func (m *MemoryStore) SetClock(clock func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if clock != nil {
		m.clock = clock
	}
}

// ListOffers returns all offers, newest first.
func (m *MemoryStore) ListOffers(ctx context.Context) ([]domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Offer, 0, len(m.offers))
	for _, o := range m.offers {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// InsertOffer stores a new offer under a freshly assigned id.
func (m *MemoryStore) InsertOffer(ctx context.Context, in domain.OfferInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock().UTC()
	id := ulid.Make().String()
	m.offers[id] = domain.Offer{
		ID:          id,
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		DownloadURL: in.DownloadURL,
		AppName:     in.AppName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return nil
}

// UpdateOffer overwrites the writable fields of an existing offer.
func (m *MemoryStore) UpdateOffer(ctx context.Context, id string, in domain.OfferInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	offer, ok := m.offers[strings.TrimSpace(id)]
	if !ok {
		return &Error{Code: CodeNoRows, Message: "offer not found", HTTPStatus: 404}
	}
	offer.Name = in.Name
	offer.Price = in.Price
	offer.Description = in.Description
	offer.ImageURL = in.ImageURL
	offer.DownloadURL = in.DownloadURL
	offer.AppName = in.AppName
	offer.UpdatedAt = m.clock().UTC()
	m.offers[offer.ID] = offer
	return nil
}

// DeleteOffer removes an offer. Deleting a missing id is a no-op, matching
// the backend's filtered-delete semantics.
func (m *MemoryStore) DeleteOffer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.offers, strings.TrimSpace(id))
	return nil
}

// ListBoxes returns all boxes, newest first.
func (m *MemoryStore) ListBoxes(ctx context.Context) ([]domain.Box, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Box, 0, len(m.boxes))
	for _, b := range m.boxes {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// InsertBox stores a new box under a freshly assigned id.
func (m *MemoryStore) InsertBox(ctx context.Context, in domain.BoxInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock().UTC()
	id := ulid.Make().String()
	m.boxes[id] = domain.Box{
		ID:             id,
		Name:           in.Name,
		Price:          in.Price,
		Description:    in.Description,
		ImageURL:       in.ImageURL,
		PurchaseURL:    in.PurchaseURL,
		Specifications: in.Specifications,
		IsAvailable:    in.IsAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return nil
}

// UpdateBox overwrites the writable fields of an existing box.
func (m *MemoryStore) UpdateBox(ctx context.Context, id string, in domain.BoxInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	box, ok := m.boxes[strings.TrimSpace(id)]
	if !ok {
		return &Error{Code: CodeNoRows, Message: "box not found", HTTPStatus: 404}
	}
	box.Name = in.Name
	box.Price = in.Price
	box.Description = in.Description
	box.ImageURL = in.ImageURL
	box.PurchaseURL = in.PurchaseURL
	box.Specifications = in.Specifications
	box.IsAvailable = in.IsAvailable
	box.UpdatedAt = m.clock().UTC()
	m.boxes[box.ID] = box
	return nil
}

// DeleteBox removes a box.
func (m *MemoryStore) DeleteBox(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.boxes, strings.TrimSpace(id))
	return nil
}

// GetSettings returns the singleton settings row if present.
func (m *MemoryStore) GetSettings(ctx context.Context) (domain.Settings, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settings == nil {
		return domain.Settings{}, false, nil
	}
	return *m.settings, true, nil
}

// InsertSettings creates the singleton settings row.
func (m *MemoryStore) InsertSettings(ctx context.Context, in domain.SettingsInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock().UTC()
	m.settings = &domain.Settings{
		ID:            ulid.Make().String(),
		ServiceName:   in.ServiceName,
		AvailableApps: append([]string(nil), in.AvailableApps...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return nil
}

// UpdateSettings overwrites the settings row with the given id.
func (m *MemoryStore) UpdateSettings(ctx context.Context, id string, in domain.SettingsInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settings == nil || m.settings.ID != strings.TrimSpace(id) {
		return &Error{Code: CodeNoRows, Message: "settings not found", HTTPStatus: 404}
	}
	m.settings.ServiceName = in.ServiceName
	m.settings.AvailableApps = append([]string(nil), in.AvailableApps...)
	m.settings.UpdatedAt = m.clock().UTC()
	return nil
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*RESTStore)(nil)
