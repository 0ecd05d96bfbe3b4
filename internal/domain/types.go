// Package domain defines the catalog records shared across layers. Field
// tags match the column names of the remote tables so the store clients can
// marshal records directly.
package domain

import "time"

// Offer is a sellable IPTV application/subscription catalog entry.
type Offer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	DownloadURL string    `json:"download_url"`
	AppName     string    `json:"app_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Box is a sellable Android TV hardware catalog entry.
type Box struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Price          string    `json:"price"`
	Description    string    `json:"description"`
	ImageURL       string    `json:"image_url"`
	PurchaseURL    string    `json:"purchase_url"`
	Specifications string    `json:"specifications"`
	IsAvailable    bool      `json:"is_available"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Settings is the single global configuration record for the service-wide
// display name and the list of available IPTV applications.
type Settings struct {
	ID            string    `json:"id"`
	ServiceName   string    `json:"service_name"`
	AvailableApps []string  `json:"available_apps"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OfferInput carries the writable fields of an Offer. The identifier and
// timestamps are assigned by the store and never accepted from callers.
type OfferInput struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	DownloadURL string `json:"download_url"`
	AppName     string `json:"app_name"`
}

// BoxInput carries the writable fields of a Box.
type BoxInput struct {
	Name           string `json:"name"`
	Price          string `json:"price"`
	Description    string `json:"description"`
	ImageURL       string `json:"image_url"`
	PurchaseURL    string `json:"purchase_url"`
	Specifications string `json:"specifications"`
	IsAvailable    bool   `json:"is_available"`
}

// SettingsInput carries the writable fields of the Settings record.
type SettingsInput struct {
	ServiceName   string   `json:"service_name"`
	AvailableApps []string `json:"available_apps"`
}
