// Package whatsapp builds the wa.me deep links used for sales
// conversations. Every outbound action on the storefront that has no
// dedicated URL falls back to one of these links.
package whatsapp

import (
	"fmt"
	"net/url"
)

// Linker builds deep links for one destination phone number (international
// format, digits only).
type Linker struct {
	phone string
}

// NewLinker constructs a Linker for the given phone number.
func NewLinker(phone string) Linker {
	return Linker{phone: phone}
}

// Link builds a wa.me URI carrying the given prefilled message.
func (l Linker) Link(message string) string {
	u := url.URL{
		Scheme: "https",
		Host:   "wa.me",
		Path:   "/" + l.phone,
	}
	if message != "" {
		q := url.Values{}
		q.Set("text", message)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Generic is the floating-button inquiry with no product context.
func (l Linker) Generic() string {
	return l.Link("Hello! I'm interested in your IPTV services. Can you help me?")
}

// DownloadRequest asks for an offer's download link when the catalog entry
// has none.
func (l Linker) DownloadRequest(offerName string) string {
	return l.Link(fmt.Sprintf("Hello! I would like to download %s. Please provide the download link.", offerName))
}

// PurchaseInquiry opens a purchase conversation for a box that has no
// purchase URL.
func (l Linker) PurchaseInquiry(boxName, price string) string {
	return l.Link(fmt.Sprintf("Hello! I'm interested in purchasing %s. Price: %s. Please provide more details.", boxName, price))
}

// BoxInfo asks for more information about a box.
func (l Linker) BoxInfo(boxName string) string {
	return l.Link(fmt.Sprintf("Hello! I'm interested in %s. Can you provide more information?", boxName))
}

// ContactMessage forwards a contact-form submission as a prefilled chat
// message.
func (l Linker) ContactMessage(name, message string) string {
	return l.Link(fmt.Sprintf("Hello! My name is %s. %s", name, message))
}
