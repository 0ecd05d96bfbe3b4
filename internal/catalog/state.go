// Package catalog owns the in-memory projection of the remote tables. The
// cache is disposable: it is rebuilt wholesale after every successful
// mutation and never patched locally, so it always equals the last
// successful refresh (or its initial empty state).
package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wassimtechnew/Techsatwassim/internal/domain"
	"github.com/wassimtechnew/Techsatwassim/internal/store"
)

const (
	// DefaultOfferImage is applied when an offer is created without an
	// image reference.
	DefaultOfferImage = "https://images.pexels.com/photos/1201996/pexels-photo-1201996.jpeg?auto=compress&cs=tinysrgb&w=400"
	// DefaultBoxImage is applied when a box is created without an image
	// reference.
	DefaultBoxImage = "https://images.pexels.com/photos/4009402/pexels-photo-4009402.jpeg?auto=compress&cs=tinysrgb&w=400"
	// DefaultServiceName seeds the settings row when none exists yet.
	DefaultServiceName = "TechnSat chez Wassim"
)

// State holds the cached offers, boxes and settings. It is the single
// writer to the cache; views only read snapshots.
type State struct {
	store  store.Store
	logger *zap.Logger
	clock  func() time.Time

	// settingsMu serializes settings saves so two concurrent first-time
	// saves cannot both take the insert branch and duplicate the
	// singleton row.
	settingsMu sync.Mutex

	mu          sync.RWMutex
	offers      []domain.Offer
	boxes       []domain.Box
	settings    domain.Settings
	hasSettings bool
	loading     bool
	lastRefresh time.Time
	refreshErr  error
}

// Snapshot is a point-in-time copy of the cache handed to views.
type Snapshot struct {
	Offers      []domain.Offer
	Boxes       []domain.Box
	Settings    domain.Settings
	HasSettings bool
	Loading     bool
	LastRefresh time.Time
	RefreshErr  error
}

// AvailableBoxes returns the boxes shown on the public storefront.
func (s Snapshot) AvailableBoxes() []domain.Box {
	out := make([]domain.Box, 0, len(s.Boxes))
	for _, b := range s.Boxes {
		if b.IsAvailable {
			out = append(out, b)
		}
	}
	return out
}

// ServiceName returns the configured display name, falling back to the
// default when no settings row exists.
func (s Snapshot) ServiceName() string {
	if s.HasSettings && strings.TrimSpace(s.Settings.ServiceName) != "" {
		return s.Settings.ServiceName
	}
	return DefaultServiceName
}

// New constructs an empty State over the given store.
func New(st store.Store, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{
		store:  st,
		logger: logger,
		clock:  time.Now,
	}
}

// Refresh rebuilds the cache from the three remote tables. Failures are
// logged and recorded on the snapshot; the previous cache is kept intact
// (no partial overwrite). The loading flag is cleared on every path.
func (s *State) Refresh(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	offers, err := s.store.ListOffers(ctx)
	if err != nil {
		s.recordRefreshFailure("offers", err)
		return
	}
	boxes, err := s.store.ListBoxes(ctx)
	if err != nil {
		s.recordRefreshFailure("boxes", err)
		return
	}
	settings, hasSettings, err := s.store.GetSettings(ctx)
	if err != nil {
		s.recordRefreshFailure("settings", err)
		return
	}

	s.mu.Lock()
	s.offers = offers
	s.boxes = boxes
	s.settings = settings
	s.hasSettings = hasSettings
	s.lastRefresh = s.clock().UTC()
	s.refreshErr = nil
	s.mu.Unlock()
}

// CreateOffer inserts a new offer then reloads the cache. Blank optional
// fields receive fallback defaults.
func (s *State) CreateOffer(ctx context.Context, in domain.OfferInput) error {
	in = normalizeOfferInput(in)
	if in.ImageURL == "" {
		in.ImageURL = DefaultOfferImage
	}
	if in.AppName == "" {
		in.AppName = in.Name
	}
	if err := s.store.InsertOffer(ctx, in); err != nil {
		return err
	}
	s.Refresh(ctx)
	return nil
}

// UpdateOffer overwrites an offer then reloads the cache.
func (s *State) UpdateOffer(ctx context.Context, id string, in domain.OfferInput) error {
	if err := s.store.UpdateOffer(ctx, id, normalizeOfferInput(in)); err != nil {
		return err
	}
	s.Refresh(ctx)
	return nil
}

// DeleteOffer removes an offer then reloads the cache.
func (s *State) DeleteOffer(ctx context.Context, id string) error {
	if err := s.store.DeleteOffer(ctx, id); err != nil {
		return err
	}
	s.Refresh(ctx)
	return nil
}

// CreateBox inserts a new box then reloads the cache.
func (s *State) CreateBox(ctx context.Context, in domain.BoxInput) error {
	in = normalizeBoxInput(in)
	if in.ImageURL == "" {
		in.ImageURL = DefaultBoxImage
	}
	if err := s.store.InsertBox(ctx, in); err != nil {
		return err
	}
	s.Refresh(ctx)
	return nil
}

// UpdateBox overwrites a box then reloads the cache.
func (s *State) UpdateBox(ctx context.Context, id string, in domain.BoxInput) error {
	if err := s.store.UpdateBox(ctx, id, normalizeBoxInput(in)); err != nil {
		return err
	}
	s.Refresh(ctx)
	return nil
}

// DeleteBox removes a box then reloads the cache.
func (s *State) DeleteBox(ctx context.Context, id string) error {
	if err := s.store.DeleteBox(ctx, id); err != nil {
		return err
	}
	s.Refresh(ctx)
	return nil
}

// SaveSettings updates the singleton settings row, creating it on first
// save, then reloads the cache.
func (s *State) SaveSettings(ctx context.Context, in domain.SettingsInput) error {
	in.ServiceName = strings.TrimSpace(in.ServiceName)
	if in.ServiceName == "" {
		in.ServiceName = DefaultServiceName
	}
	in.AvailableApps = trimAll(in.AvailableApps)

	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	s.mu.RLock()
	hasSettings := s.hasSettings
	settingsID := s.settings.ID
	s.mu.RUnlock()

	var err error
	if hasSettings {
		err = s.store.UpdateSettings(ctx, settingsID, in)
	} else {
		err = s.store.InsertSettings(ctx, in)
	}
	if err != nil {
		return err
	}
	s.Refresh(ctx)
	return nil
}

// Snapshot returns a copy of the cache for rendering.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Offers:      append([]domain.Offer(nil), s.offers...),
		Boxes:       append([]domain.Box(nil), s.boxes...),
		Settings:    s.settings,
		HasSettings: s.hasSettings,
		Loading:     s.loading,
		LastRefresh: s.lastRefresh,
		RefreshErr:  s.refreshErr,
	}
}

// Offer looks up a cached offer by id.
func (s *State) Offer(id string) (domain.Offer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.offers {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Offer{}, false
}

// Box looks up a cached box by id.
func (s *State) Box(id string) (domain.Box, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.boxes {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Box{}, false
}

func (s *State) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *State) recordRefreshFailure(table string, err error) {
	s.logger.Error("catalog refresh failed",
		zap.String("table", table),
		zap.Error(err),
	)
	s.mu.Lock()
	s.refreshErr = err
	s.mu.Unlock()
}

func normalizeOfferInput(in domain.OfferInput) domain.OfferInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Price = strings.TrimSpace(in.Price)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.DownloadURL = strings.TrimSpace(in.DownloadURL)
	in.AppName = strings.TrimSpace(in.AppName)
	return in
}

func normalizeBoxInput(in domain.BoxInput) domain.BoxInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Price = strings.TrimSpace(in.Price)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.PurchaseURL = strings.TrimSpace(in.PurchaseURL)
	in.Specifications = strings.TrimSpace(in.Specifications)
	return in
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
