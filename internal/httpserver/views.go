package httpserver

import (
	"net/http"
	"time"

	"github.com/wassimtechnew/Techsatwassim/internal/admin/editor"
	"github.com/wassimtechnew/Techsatwassim/internal/content"
	"github.com/wassimtechnew/Techsatwassim/internal/domain"
	mw "github.com/wassimtechnew/Techsatwassim/internal/httpserver/middleware"
	"github.com/wassimtechnew/Techsatwassim/internal/i18n"
)

// page carries the fields every template needs: language, direction, CSRF
// token and the translation lookup.
type page struct {
	bundle *i18n.Bundle

	Lang string
	Dir  string
	CSRF string
}

// T resolves a translation key in the page's language.
func (p page) T(key string) string {
	return p.bundle.T(p.Lang, key)
}

// OtherLang returns the locale the language switcher should offer.
func (p page) OtherLang() string {
	if p.Lang == i18n.LocaleAR {
		return i18n.LocaleFR
	}
	return i18n.LocaleAR
}

func (s *Server) newPage(r *http.Request) page {
	lang := s.bundle.ResolveRequest(r)
	return page{
		bundle: s.bundle,
		Lang:   lang,
		Dir:    i18n.Dir(lang),
		CSRF:   mw.CSRFTokenFromContext(r.Context()),
	}
}

// offerView pairs an offer with its resolved call-to-action link: the
// configured download URL, or a prefilled WhatsApp message when none is set.
type offerView struct {
	domain.Offer
	ActionLink string
}

// boxView pairs a box with its purchase link, falling back to WhatsApp.
type boxView struct {
	domain.Box
	ActionLink string
}

type homeView struct {
	page
	ServiceName  string
	Offers       []offerView
	Boxes        []boxView
	Apps         []string
	Site         content.Site
	ContactLink  string
	WhatsAppLink string
	Loading      bool
}

func (s *Server) newHomeView(r *http.Request) homeView {
	snap := s.catalog.Snapshot()
	v := homeView{
		page:         s.newPage(r),
		ServiceName:  snap.ServiceName(),
		Apps:         snap.Settings.AvailableApps,
		Site:         s.siteCopy.Site(s.bundle.ResolveRequest(r)),
		ContactLink:  s.wa.Generic(),
		WhatsAppLink: s.wa.Generic(),
		Loading:      snap.Loading && len(snap.Offers) == 0 && len(snap.Boxes) == 0,
	}
	for _, o := range snap.Offers {
		link := o.DownloadURL
		if link == "" {
			link = s.wa.DownloadRequest(o.Name)
		}
		v.Offers = append(v.Offers, offerView{Offer: o, ActionLink: link})
	}
	for _, b := range snap.AvailableBoxes() {
		link := b.PurchaseURL
		if link == "" {
			link = s.wa.PurchaseInquiry(b.Name, b.Price)
		}
		v.Boxes = append(v.Boxes, boxView{Box: b, ActionLink: link})
	}
	return v
}

// offerRow is one admin table row together with its editing state.
type offerRow struct {
	page
	domain.Offer
	Editing bool
	Form    editor.Form
	Status  editor.Status
}

type boxRow struct {
	page
	domain.Box
	Editing bool
	Form    editor.Form
	Status  editor.Status
}

// BadgeDelay returns the htmx load delay after which the row refetches
// itself, letting the expired badge drop off on the follow-up render.
// Empty when no badge is showing.
func (row offerRow) BadgeDelay() string { return badgeDelay(row.Status) }

func (row boxRow) BadgeDelay() string { return badgeDelay(row.Status) }

func badgeDelay(st editor.Status) string {
	switch st {
	case editor.StatusSuccess:
		return editor.SuccessBadgeWindow.String()
	case editor.StatusError:
		return editor.ErrorBadgeWindow.String()
	default:
		return ""
	}
}

type loginView struct {
	page
	Error bool
}

type dashboardView struct {
	page
	Tab         string
	Offers      []offerRow
	Boxes       []boxRow
	Settings    domain.Settings
	HasSettings bool
	LastRefresh time.Time
	Stale       bool
	Flash       string
}

func (s *Server) newDashboardView(r *http.Request, tab string) dashboardView {
	p := s.newPage(r)
	snap := s.catalog.Snapshot()
	ed := s.editorFor(r)
	now := s.clock()

	v := dashboardView{
		page:        p,
		Tab:         tab,
		Settings:    snap.Settings,
		HasSettings: snap.HasSettings,
		LastRefresh: snap.LastRefresh,
		Stale:       snap.RefreshErr != nil,
	}
	for _, o := range snap.Offers {
		v.Offers = append(v.Offers, s.newOfferRow(p, ed, o, now))
	}
	for _, b := range snap.Boxes {
		v.Boxes = append(v.Boxes, s.newBoxRow(p, ed, b, now))
	}
	return v
}

func (s *Server) newOfferRow(p page, ed *editor.State, o domain.Offer, now time.Time) offerRow {
	row := offerRow{page: p, Offer: o, Status: ed.Status(o.ID, now)}
	if f, ok := ed.FormFor(o.ID); ok {
		row.Editing = true
		row.Form = f
	}
	return row
}

func (s *Server) newBoxRow(p page, ed *editor.State, b domain.Box, now time.Time) boxRow {
	row := boxRow{page: p, Box: b, Status: ed.Status(b.ID, now)}
	if f, ok := ed.FormFor(b.ID); ok {
		row.Editing = true
		row.Form = f
	}
	return row
}

// editorFor returns the per-session row editor.
func (s *Server) editorFor(r *http.Request) *editor.State {
	return s.editors.Get(mw.SessionFromContext(r.Context()).ID)
}

func offerForm(o domain.Offer) editor.Form {
	return editor.Form{
		Name:        o.Name,
		Price:       o.Price,
		Description: o.Description,
		ImageURL:    o.ImageURL,
		DownloadURL: o.DownloadURL,
		AppName:     o.AppName,
	}
}

func boxForm(b domain.Box) editor.Form {
	return editor.Form{
		Name:           b.Name,
		Price:          b.Price,
		Description:    b.Description,
		ImageURL:       b.ImageURL,
		PurchaseURL:    b.PurchaseURL,
		Specifications: b.Specifications,
		IsAvailable:    b.IsAvailable,
	}
}
