package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wassimtechnew/Techsatwassim/internal/admin/editor"
	"github.com/wassimtechnew/Techsatwassim/internal/domain"
	mw "github.com/wassimtechnew/Techsatwassim/internal/httpserver/middleware"
)

const (
	tabOffers   = "offers"
	tabBoxes    = "boxes"
	tabSettings = "settings"
)

// flashSaveError flags the dashboard redirect after a failed write so the
// page can surface the error banner.
const flashSaveError = "save_error"

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if mw.SessionFromContext(r.Context()).Authenticated {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	s.render(w, "admin_login", loginView{page: s.newPage(r)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if !s.verifier.Verify(username, password) {
		s.logger.Warn("admin login rejected", zap.String("username", username))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, "admin_login", loginView{page: s.newPage(r), Error: true})
		return
	}

	data := mw.SessionFromContext(r.Context())
	data.Authenticated = true
	if err := s.sessions.Save(w, data); err != nil {
		s.logger.Error("session save failed", zap.Error(err))
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	s.logger.Info("admin login", zap.String("session_id", data.ID))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	data := mw.SessionFromContext(r.Context())
	s.editors.Drop(data.ID)
	s.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	tab := r.URL.Query().Get("tab")
	switch tab {
	case tabOffers, tabBoxes, tabSettings:
	default:
		tab = tabOffers
	}
	v := s.newDashboardView(r, tab)
	if r.URL.Query().Get("flash") == flashSaveError {
		v.Flash = flashSaveError
	}
	s.render(w, "admin", v)
}

// --- offers ---

func (s *Server) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in := domain.OfferInput{
		Name:        r.PostFormValue("name"),
		Price:       r.PostFormValue("price"),
		Description: r.PostFormValue("description"),
		ImageURL:    r.PostFormValue("image_url"),
		DownloadURL: r.PostFormValue("download_url"),
		AppName:     r.PostFormValue("app_name"),
	}
	if strings.TrimSpace(in.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if err := s.catalog.CreateOffer(r.Context(), in); err != nil {
		s.logger.Error("create offer failed", zap.Error(err))
		http.Redirect(w, r, "/admin?tab=offers&flash="+flashSaveError, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin?tab=offers", http.StatusSeeOther)
}

func (s *Server) handleEditOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	o, ok := s.catalog.Offer(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ed := s.editorFor(r)
	ed.Apply(editor.StartEdit{ID: id, Form: offerForm(o)}, s.clock())
	s.render(w, "offer_edit", s.newOfferRow(s.newPage(r), ed, o, s.clock()))
}

func (s *Server) handleOfferRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	o, ok := s.catalog.Offer(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ed := s.editorFor(r)
	if ed.EditingID() == id {
		ed.Apply(editor.CancelEdit{}, s.clock())
	}
	s.render(w, "offer_row", s.newOfferRow(s.newPage(r), ed, o, s.clock()))
}

func (s *Server) handleSaveOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.catalog.Offer(id); !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in := domain.OfferInput{
		Name:        r.PostFormValue("name"),
		Price:       r.PostFormValue("price"),
		Description: r.PostFormValue("description"),
		ImageURL:    r.PostFormValue("image_url"),
		DownloadURL: r.PostFormValue("download_url"),
		AppName:     r.PostFormValue("app_name"),
	}

	ed := s.editorFor(r)
	now := s.clock()
	ed.Apply(editor.BeginSave{ID: id}, now)
	err := s.catalog.UpdateOffer(r.Context(), id, in)
	if err != nil {
		s.logger.Error("save offer failed", zap.String("id", id), zap.Error(err))
	}
	ed.Apply(editor.FinishSave{ID: id, Err: err}, s.clock())

	o, ok := s.catalog.Offer(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, "offer_row", s.newOfferRow(s.newPage(r), ed, o, s.clock()))
}

func (s *Server) handleDeleteOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.catalog.DeleteOffer(r.Context(), id); err != nil {
		s.logger.Error("delete offer failed", zap.String("id", id), zap.Error(err))
		ed := s.editorFor(r)
		ed.Apply(editor.FinishSave{ID: id, Err: err}, s.clock())
		if o, ok := s.catalog.Offer(id); ok {
			s.render(w, "offer_row", s.newOfferRow(s.newPage(r), ed, o, s.clock()))
			return
		}
	}
	// An empty body removes the row from the table.
	w.WriteHeader(http.StatusOK)
}

// --- boxes ---

func boxInputFromForm(r *http.Request) domain.BoxInput {
	return domain.BoxInput{
		Name:           r.PostFormValue("name"),
		Price:          r.PostFormValue("price"),
		Description:    r.PostFormValue("description"),
		ImageURL:       r.PostFormValue("image_url"),
		PurchaseURL:    r.PostFormValue("purchase_url"),
		Specifications: r.PostFormValue("specifications"),
		IsAvailable:    r.PostFormValue("is_available") != "",
	}
}

func (s *Server) handleCreateBox(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in := boxInputFromForm(r)
	if strings.TrimSpace(in.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if err := s.catalog.CreateBox(r.Context(), in); err != nil {
		s.logger.Error("create box failed", zap.Error(err))
		http.Redirect(w, r, "/admin?tab=boxes&flash="+flashSaveError, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin?tab=boxes", http.StatusSeeOther)
}

func (s *Server) handleEditBox(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, ok := s.catalog.Box(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ed := s.editorFor(r)
	ed.Apply(editor.StartEdit{ID: id, Form: boxForm(b)}, s.clock())
	s.render(w, "box_edit", s.newBoxRow(s.newPage(r), ed, b, s.clock()))
}

func (s *Server) handleBoxRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, ok := s.catalog.Box(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ed := s.editorFor(r)
	if ed.EditingID() == id {
		ed.Apply(editor.CancelEdit{}, s.clock())
	}
	s.render(w, "box_row", s.newBoxRow(s.newPage(r), ed, b, s.clock()))
}

func (s *Server) handleSaveBox(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.catalog.Box(id); !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in := boxInputFromForm(r)

	ed := s.editorFor(r)
	ed.Apply(editor.BeginSave{ID: id}, s.clock())
	err := s.catalog.UpdateBox(r.Context(), id, in)
	if err != nil {
		s.logger.Error("save box failed", zap.String("id", id), zap.Error(err))
	}
	ed.Apply(editor.FinishSave{ID: id, Err: err}, s.clock())

	b, ok := s.catalog.Box(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, "box_row", s.newBoxRow(s.newPage(r), ed, b, s.clock()))
}

func (s *Server) handleDeleteBox(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.catalog.DeleteBox(r.Context(), id); err != nil {
		s.logger.Error("delete box failed", zap.String("id", id), zap.Error(err))
		ed := s.editorFor(r)
		ed.Apply(editor.FinishSave{ID: id, Err: err}, s.clock())
		if b, ok := s.catalog.Box(id); ok {
			s.render(w, "box_row", s.newBoxRow(s.newPage(r), ed, b, s.clock()))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// --- settings ---

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in := domain.SettingsInput{
		ServiceName:   r.PostFormValue("service_name"),
		AvailableApps: splitApps(r.PostFormValue("available_apps")),
	}
	if err := s.catalog.SaveSettings(r.Context(), in); err != nil {
		s.logger.Error("save settings failed", zap.Error(err))
		http.Redirect(w, r, "/admin?tab=settings&flash="+flashSaveError, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin?tab=settings", http.StatusSeeOther)
}

// splitApps accepts one app per line or a comma-separated list.
func splitApps(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
