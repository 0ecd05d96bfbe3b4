package httpserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wassimtechnew/Techsatwassim/internal/i18n"
	"github.com/wassimtechnew/Techsatwassim/internal/platform/httpx"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "home", s.newHomeView(r))
}

// handleReady reports readiness: the process is not ready until the catalog
// has loaded from the backend at least once.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Snapshot()
	if snap.LastRefresh.IsZero() {
		httpx.WriteError(r.Context(), w,
			httpx.NewError("catalog_unavailable", "catalog has not loaded yet", http.StatusServiceUnavailable))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":       "ok",
		"last_refresh": snap.LastRefresh.UTC().Format(time.RFC3339),
		"stale":        snap.RefreshErr != nil,
	})
}

// handleContact forwards a contact-form submission into a prefilled
// WhatsApp conversation.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	parts := make([]string, 0, 3)
	if phone := strings.TrimSpace(r.PostFormValue("phone")); phone != "" {
		parts = append(parts, "Phone: "+phone)
	}
	if service := strings.TrimSpace(r.PostFormValue("service")); service != "" {
		parts = append(parts, "Service: "+service)
	}
	if msg := strings.TrimSpace(r.PostFormValue("message")); msg != "" {
		parts = append(parts, msg)
	}
	http.Redirect(w, r, s.wa.ContactMessage(name, strings.Join(parts, " ")), http.StatusSeeOther)
}

// handleLang persists an explicit language choice and bounces back to the
// referring page.
func (s *Server) handleLang(w http.ResponseWriter, r *http.Request) {
	lang := strings.ToLower(r.URL.Query().Get("to"))
	if lang != i18n.LocaleFR && lang != i18n.LocaleAR {
		http.Error(w, "unsupported language", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     i18n.CookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	})

	back := r.URL.Query().Get("back")
	if back == "" {
		if ref, err := url.Parse(r.Header.Get("Referer")); err == nil && (ref.Host == "" || ref.Host == r.Host) {
			back = ref.RequestURI()
		}
	}
	// Only same-site relative paths are safe redirect targets.
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") {
		back = "/"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
