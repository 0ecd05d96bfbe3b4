package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/wassimtechnew/Techsatwassim/internal/domain"
)

const (
	offersTable   = "iptv_offers"
	boxesTable    = "android_boxes"
	settingsTable = "admin_settings"

	restPrefix = "/rest/v1"

	// pgrstObjectMedia asks the backend to return a bare object for
	// single-row lookups; zero rows then fail with CodeNoRows.
	pgrstObjectMedia = "application/vnd.pgrst.object+json"
)

// HTTPClient matches the subset of http.Client used by RESTStore.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// RESTStore implements Store against a PostgREST-compatible table backend.
type RESTStore struct {
	base   *url.URL
	apiKey string
	client HTTPClient
}

// NewRESTStore constructs a Store talking to the hosted backend at baseURL,
// authenticating every request with the public API key.
func NewRESTStore(baseURL, apiKey string, client HTTPClient) (*RESTStore, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("store: base URL is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("store: API key is required")
	}
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("store: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &RESTStore{
		base:   parsed,
		apiKey: apiKey,
		client: client,
	}, nil
}

// ListOffers returns all offers ordered by creation time, newest first.
func (s *RESTStore) ListOffers(ctx context.Context) ([]domain.Offer, error) {
	var offers []domain.Offer
	if err := s.list(ctx, offersTable, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// InsertOffer creates a new offer; the backend assigns id and timestamps.
func (s *RESTStore) InsertOffer(ctx context.Context, in domain.OfferInput) error {
	return s.insert(ctx, offersTable, in)
}

// UpdateOffer overwrites the writable fields of the offer with the given id.
func (s *RESTStore) UpdateOffer(ctx context.Context, id string, in domain.OfferInput) error {
	return s.update(ctx, offersTable, id, in)
}

// DeleteOffer removes the offer with the given id.
func (s *RESTStore) DeleteOffer(ctx context.Context, id string) error {
	return s.deleteByID(ctx, offersTable, id)
}

// ListBoxes returns all boxes ordered by creation time, newest first.
func (s *RESTStore) ListBoxes(ctx context.Context) ([]domain.Box, error) {
	var boxes []domain.Box
	if err := s.list(ctx, boxesTable, &boxes); err != nil {
		return nil, err
	}
	return boxes, nil
}

// InsertBox creates a new box; the backend assigns id and timestamps.
func (s *RESTStore) InsertBox(ctx context.Context, in domain.BoxInput) error {
	return s.insert(ctx, boxesTable, in)
}

// UpdateBox overwrites the writable fields of the box with the given id.
func (s *RESTStore) UpdateBox(ctx context.Context, id string, in domain.BoxInput) error {
	return s.update(ctx, boxesTable, id, in)
}

// DeleteBox removes the box with the given id.
func (s *RESTStore) DeleteBox(ctx context.Context, id string) error {
	return s.deleteByID(ctx, boxesTable, id)
}

// GetSettings fetches the singleton settings row. A zero-row result is
// reported as absent (ok=false) with a nil error.
func (s *RESTStore) GetSettings(ctx context.Context) (domain.Settings, bool, error) {
	endpoint := s.tableURL(settingsTable)
	q := endpoint.Query()
	q.Set("select", "*")
	q.Set("limit", "1")
	endpoint.RawQuery = q.Encode()

	req, err := s.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Settings{}, false, err
	}
	req.Header.Set("Accept", pgrstObjectMedia)

	resp, err := s.do(req)
	if err != nil {
		return domain.Settings{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := s.errorFromResponse(resp)
		if IsNoRows(err) {
			return domain.Settings{}, false, nil
		}
		return domain.Settings{}, false, err
	}

	var settings domain.Settings
	if err := json.NewDecoder(resp.Body).Decode(&settings); err != nil {
		return domain.Settings{}, false, fmt.Errorf("store: decode settings: %w", err)
	}
	return settings, true, nil
}

// InsertSettings creates the singleton settings row.
func (s *RESTStore) InsertSettings(ctx context.Context, in domain.SettingsInput) error {
	return s.insert(ctx, settingsTable, in)
}

// UpdateSettings overwrites the settings row with the given id.
func (s *RESTStore) UpdateSettings(ctx context.Context, id string, in domain.SettingsInput) error {
	return s.update(ctx, settingsTable, id, in)
}

func (s *RESTStore) list(ctx context.Context, table string, out any) error {
	endpoint := s.tableURL(table)
	q := endpoint.Query()
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	endpoint.RawQuery = q.Encode()

	req, err := s.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.errorFromResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("store: decode %s list: %w", table, err)
	}
	return nil
}

func (s *RESTStore) insert(ctx context.Context, table string, payload any) error {
	endpoint := s.tableURL(table)
	req, err := s.newJSONRequest(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return err
	}
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return s.errorFromResponse(resp)
	}
	return nil
}

func (s *RESTStore) update(ctx context.Context, table, id string, payload any) error {
	endpoint := s.tableURL(table)
	q := endpoint.Query()
	q.Set("id", "eq."+strings.TrimSpace(id))
	endpoint.RawQuery = q.Encode()

	req, err := s.newJSONRequest(ctx, http.MethodPatch, endpoint, payload)
	if err != nil {
		return err
	}
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return s.errorFromResponse(resp)
	}
	return nil
}

func (s *RESTStore) deleteByID(ctx context.Context, table, id string) error {
	endpoint := s.tableURL(table)
	q := endpoint.Query()
	q.Set("id", "eq."+strings.TrimSpace(id))
	endpoint.RawQuery = q.Encode()

	req, err := s.newRequest(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return s.errorFromResponse(resp)
	}
	return nil
}

func (s *RESTStore) tableURL(table string) *url.URL {
	endpoint := *s.base
	endpoint.Path = path.Join(endpoint.Path, restPrefix, table)
	return &endpoint
}

func (s *RESTStore) newRequest(ctx context.Context, method string, endpoint *url.URL, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("store: build request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	return req, nil
}

func (s *RESTStore) newJSONRequest(ctx context.Context, method string, endpoint *url.URL, payload any) (*http.Request, error) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("store: encode payload: %w", err)
	}
	req, err := s.newRequest(ctx, method, endpoint, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	return req, nil
}

func (s *RESTStore) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store: %s %s: %w", req.Method, req.URL.Path, err)
	}
	return resp, nil
}

// errorFromResponse decodes the backend's error envelope into *Error so
// callers can inspect the machine-readable code.
func (s *RESTStore) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))

	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || (payload.Code == "" && payload.Message == "") {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Message: msg, HTTPStatus: resp.StatusCode}
	}
	return &Error{
		Code:       payload.Code,
		Message:    payload.Message,
		HTTPStatus: resp.StatusCode,
	}
}
