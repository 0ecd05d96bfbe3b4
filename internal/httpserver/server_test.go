package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wassimtechnew/Techsatwassim/internal/admin/editor"
	"github.com/wassimtechnew/Techsatwassim/internal/auth"
	"github.com/wassimtechnew/Techsatwassim/internal/catalog"
	"github.com/wassimtechnew/Techsatwassim/internal/content"
	"github.com/wassimtechnew/Techsatwassim/internal/domain"
	"github.com/wassimtechnew/Techsatwassim/internal/i18n"
	"github.com/wassimtechnew/Techsatwassim/internal/session"
	"github.com/wassimtechnew/Techsatwassim/internal/store"
	"github.com/wassimtechnew/Techsatwassim/internal/whatsapp"
)

const (
	testUser = "wassim1"
	testPass = "s3cret"
)

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	return newTestServerOver(t, mem), mem
}

func newTestServerOver(t *testing.T, st store.Store) *Server {
	return newTestServerAt(t, st, nil)
}

func newTestServerAt(t *testing.T, st store.Store, clock func() time.Time) *Server {
	t.Helper()

	state := catalog.New(st, zap.NewNop())

	bundle, err := i18n.Default()
	require.NoError(t, err)
	siteCopy, err := content.Default()
	require.NoError(t, err)

	sessions, err := session.NewManager(session.Config{HashKey: session.RandomKey()})
	require.NoError(t, err)

	srv, err := New(Config{
		Logger:   zap.NewNop(),
		Catalog:  state,
		Sessions: sessions,
		Verifier: auth.NewStaticVerifier(testUser, testPass),
		Bundle:   bundle,
		Copy:     siteCopy,
		WhatsApp: whatsapp.NewLinker("21655338664"),
		Clock:    clock,
	})
	require.NoError(t, err)
	return srv
}

func seedCatalog(t *testing.T, srv *Server, mem *store.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, mem.InsertOffer(ctx, domain.OfferInput{
		Name: "Abonnement 12 mois", Price: "60 DT", ImageURL: "https://example.com/offer.jpg",
	}))
	require.NoError(t, mem.InsertBox(ctx, domain.BoxInput{
		Name: "X96 Max", Price: "250 DT", IsAvailable: true, ImageURL: "https://example.com/box.jpg",
	}))
	require.NoError(t, mem.InsertBox(ctx, domain.BoxInput{
		Name: "Hidden Box", Price: "99 DT", IsAvailable: false, ImageURL: "https://example.com/box2.jpg",
	}))
	srv.catalog.Refresh(ctx)
}

// client replays cookies across requests against the router.
type client struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, srv *Server) *client {
	return &client{t: t, h: srv.Routes(), cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = &http.Cookie{Name: ck.Name, Value: ck.Value}
	}
	return rec
}

func (c *client) get(path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	return c.do(req)
}

func (c *client) form(method, path string, values url.Values, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	return c.do(req)
}

// login walks the full flow: fetch the form for a CSRF token, then post
// credentials.
func (c *client) login(t *testing.T) {
	t.Helper()
	rec := c.get("/admin/login", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := c.cookies["admin_csrf"].Value

	rec = c.form(http.MethodPost, "/admin/login", url.Values{
		"csrf_token": {token},
		"username":   {testUser},
		"password":   {testPass},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin", rec.Header().Get("Location"))
}

func (c *client) csrf() string { return c.cookies["admin_csrf"].Value }

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	// The full-document HTML5 parser discards <tr>/<td> outside a table,
	// so row fragments need a table wrapper to survive parsing.
	body := rec.Body.String()
	if strings.HasPrefix(strings.TrimSpace(body), "<tr") {
		body = "<table><tbody>" + body + "</tbody></table>"
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := newClient(t, srv).get("/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestReadyzReflectsCatalogState(t *testing.T) {
	srv, mem := newTestServer(t)
	c := newClient(t, srv)

	rec := c.get("/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog_unavailable")

	seedCatalog(t, srv, mem)
	rec = c.get("/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHomeRendersCatalog(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCatalog(t, srv, mem)

	rec := newClient(t, srv).get("/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)

	assert.Equal(t, "fr", doc.Find("html").AttrOr("lang", ""))
	assert.Equal(t, "ltr", doc.Find("html").AttrOr("dir", ""))
	assert.Contains(t, doc.Find("#offers").Text(), "Abonnement 12 mois")
	assert.Contains(t, doc.Find("#boxes").Text(), "X96 Max")
	// Unavailable boxes stay off the storefront.
	assert.NotContains(t, doc.Find("#boxes").Text(), "Hidden Box")
}

func TestHomeArabicIsRTL(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCatalog(t, srv, mem)

	rec := newClient(t, srv).get("/?lang=ar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)

	assert.Equal(t, "ar", doc.Find("html").AttrOr("lang", ""))
	assert.Equal(t, "rtl", doc.Find("html").AttrOr("dir", ""))
	assert.Contains(t, doc.Find("#hero h1").Text(), "بوابتكم")
}

func TestHomeWhatsAppFallbackLinks(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCatalog(t, srv, mem)

	rec := newClient(t, srv).get("/", nil)
	doc := parseHTML(t, rec)

	href := doc.Find("#offers .card a.btn").First().AttrOr("href", "")
	assert.Contains(t, href, "wa.me/21655338664")
	assert.Contains(t, href, url.QueryEscape("Abonnement 12 mois"))
}

func TestContactFormRedirectsToWhatsApp(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(t, srv)

	rec := c.form(http.MethodPost, "/contact", url.Values{
		"name":    {"Ahmed"},
		"service": {"IPTV 12 mois"},
		"message": {"Quand êtes-vous disponible ?"},
	}, nil)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get("Location")
	assert.Contains(t, loc, "wa.me/21655338664")
	assert.Contains(t, loc, url.QueryEscape("My name is Ahmed"))
	assert.Contains(t, loc, url.QueryEscape("IPTV 12 mois"))

	rec = c.form(http.MethodPost, "/contact", url.Values{"message": {"no name"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLangSwitchSetsCookieAndRedirects(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(t, srv)

	rec := c.get("/lang?to=ar", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	require.Contains(t, c.cookies, i18n.CookieName)
	assert.Equal(t, "ar", c.cookies[i18n.CookieName].Value)

	rec = c.get("/lang?to=de", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := newClient(t, srv).get("/admin", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestAdminFragmentUnauthenticatedGetsHXRedirect(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := newClient(t, srv).get("/admin/offers/x/edit", map[string]string{"HX-Request": "true"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("HX-Redirect"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(t, srv)

	c.get("/admin/login", nil)
	rec := c.form(http.MethodPost, "/admin/login", url.Values{
		"csrf_token": {c.csrf()},
		"username":   {testUser},
		"password":   {"wrong"},
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 1, doc.Find(".error").Length())
}

func TestLoginRequiresCSRFToken(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(t, srv)

	c.get("/admin/login", nil)
	rec := c.form(http.MethodPost, "/admin/login", url.Values{
		"username": {testUser},
		"password": {testPass},
	}, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCatalog(t, srv, mem)
	c := newClient(t, srv)

	c.login(t)

	rec := c.get("/admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Contains(t, doc.Find(".admin-table").Text(), "Abonnement 12 mois")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = c.form(http.MethodPost, "/admin/logout", url.Values{"csrf_token": {c.csrf()}}, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.get("/admin", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestOfferEditFragmentRequiresHTMX(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCatalog(t, srv, mem)
	c := newClient(t, srv)
	c.login(t)

	snap := srv.catalog.Snapshot()
	id := snap.Offers[0].ID

	rec := c.get("/admin/offers/"+id+"/edit", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.get("/admin/offers/"+id+"/edit", map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, "Abonnement 12 mois", doc.Find(`input[name="name"]`).AttrOr("value", ""))
}

func TestOfferSaveUpdatesStoreAndShowsBadge(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCatalog(t, srv, mem)
	c := newClient(t, srv)
	c.login(t)

	id := srv.catalog.Snapshot().Offers[0].ID
	hx := map[string]string{"HX-Request": "true", "X-CSRF-Token": c.csrf()}

	c.get("/admin/offers/"+id+"/edit", map[string]string{"HX-Request": "true"})
	rec := c.form(http.MethodPut, "/admin/offers/"+id, url.Values{
		"name":  {"Abonnement 12 mois (promo)"},
		"price": {"50 DT"},
	}, hx)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	assert.Contains(t, doc.Find("tr").Text(), "Abonnement 12 mois (promo)")
	assert.Equal(t, 1, doc.Find(".badge.success").Length())

	offers, err := mem.ListOffers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Abonnement 12 mois (promo)", offers[0].Name)
	assert.Equal(t, "50 DT", offers[0].Price)

	// The cache was reloaded after the write.
	assert.Equal(t, "Abonnement 12 mois (promo)", srv.catalog.Snapshot().Offers[0].Name)
}

func TestOfferSaveBadgeAutoClears(t *testing.T) {
	mem := store.NewMemoryStore()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	srv := newTestServerAt(t, mem, func() time.Time { return now })
	seedCatalog(t, srv, mem)
	c := newClient(t, srv)
	c.login(t)

	id := srv.catalog.Snapshot().Offers[0].ID
	hx := map[string]string{"HX-Request": "true", "X-CSRF-Token": c.csrf()}

	c.get("/admin/offers/"+id+"/edit", hx)
	rec := c.form(http.MethodPut, "/admin/offers/"+id, url.Values{
		"name":  {"Abonnement 12 mois"},
		"price": {"60 DT"},
	}, hx)
	require.Equal(t, http.StatusOK, rec.Code)

	// The saved row schedules its own refresh for when the badge expires.
	doc := parseHTML(t, rec)
	row := doc.Find("tr")
	assert.Equal(t, 1, doc.Find(".badge.success").Length())
	assert.Equal(t, "/admin/offers/"+id+"/row", row.AttrOr("hx-get", ""))
	assert.Equal(t, "load delay:2s", row.AttrOr("hx-trigger", ""))

	// The follow-up fetch lands after the display window: no badge, and
	// the row stops refreshing itself.
	now = now.Add(editor.SuccessBadgeWindow + time.Millisecond)
	rec = c.get("/admin/offers/"+id+"/row", hx)
	require.Equal(t, http.StatusOK, rec.Code)
	doc = parseHTML(t, rec)
	assert.Equal(t, 0, doc.Find(".badge").Length())
	assert.Equal(t, "", doc.Find("tr").AttrOr("hx-trigger", ""))
}

func TestOfferSaveErrorBadgeUsesLongerWindow(t *testing.T) {
	mem := store.NewMemoryStore()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	srv := newTestServerAt(t, &brokenWrites{Store: mem}, func() time.Time { return now })
	seedCatalog(t, srv, mem)
	c := newClient(t, srv)
	c.login(t)

	id := srv.catalog.Snapshot().Offers[0].ID
	hx := map[string]string{"HX-Request": "true", "X-CSRF-Token": c.csrf()}

	c.get("/admin/offers/"+id+"/edit", hx)
	rec := c.form(http.MethodPut, "/admin/offers/"+id, url.Values{
		"name": {"Abonnement 12 mois"},
	}, hx)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	row := doc.Find("tr")
	assert.Equal(t, 1, doc.Find(".badge.error").Length())
	assert.Equal(t, "load delay:3s", row.AttrOr("hx-trigger", ""))

	now = now.Add(editor.ErrorBadgeWindow + time.Millisecond)
	rec = c.get("/admin/offers/"+id+"/row", hx)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, parseHTML(t, rec).Find(".badge").Length())
}

func TestOfferCancelRestoresRow(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCatalog(t, srv, mem)
	c := newClient(t, srv)
	c.login(t)

	id := srv.catalog.Snapshot().Offers[0].ID
	hx := map[string]string{"HX-Request": "true"}

	c.get("/admin/offers/"+id+"/edit", hx)
	rec := c.get("/admin/offers/"+id+"/row", hx)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	assert.Equal(t, 0, doc.Find("form").Length())
	assert.Contains(t, doc.Find("tr").Text(), "Abonnement 12 mois")
	assert.Equal(t, "Abonnement 12 mois", mustListOffers(t, mem)[0].Name)
}

func TestBoxDeleteRemovesRow(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCatalog(t, srv, mem)
	c := newClient(t, srv)
	c.login(t)

	boxes := srv.catalog.Snapshot().Boxes
	require.Len(t, boxes, 2)
	id := boxes[0].ID

	noHX := httptest.NewRequest(http.MethodDelete, "/admin/boxes/"+id, nil)
	noHX.Header.Set("X-CSRF-Token", c.csrf())
	rec := c.do(noHX)
	assert.Equal(t, http.StatusNotFound, rec.Code, "delete fragment requires htmx")

	req := httptest.NewRequest(http.MethodDelete, "/admin/boxes/"+id, nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-CSRF-Token", c.csrf())
	rec = c.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, strings.TrimSpace(rec.Body.String()))

	remaining, err := mem.ListBoxes(context.Background())
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestCreateOfferAppliesDefaults(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCatalog(t, srv, mem)
	c := newClient(t, srv)
	c.login(t)

	rec := c.form(http.MethodPost, "/admin/offers", url.Values{
		"csrf_token": {c.csrf()},
		"name":       {"  Offre 6 mois  "},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?tab=offers", rec.Header().Get("Location"))

	offers := mustListOffers(t, mem)
	require.Len(t, offers, 2)
	assert.Equal(t, "Offre 6 mois", offers[0].Name)
	assert.Contains(t, offers[0].ImageURL, "pexels.com")
}

func TestSaveSettingsSplitsApps(t *testing.T) {
	srv, mem := newTestServer(t)
	seedCatalog(t, srv, mem)
	c := newClient(t, srv)
	c.login(t)

	rec := c.form(http.MethodPost, "/admin/settings", url.Values{
		"csrf_token":     {c.csrf()},
		"service_name":   {"TechnSat"},
		"available_apps": {"IBO Player\nDuplex, Smarters  \n"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	settings, ok, err := mem.GetSettings(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "TechnSat", settings.ServiceName)
	assert.Equal(t, []string{"IBO Player", "Duplex", "Smarters"}, settings.AvailableApps)
}

// failingStore makes ListOffers fail on demand to exercise the staleness
// indicator.
type failingStore struct {
	store.Store
	fail bool
}

func (f *failingStore) ListOffers(ctx context.Context) ([]domain.Offer, error) {
	if f.fail {
		return nil, errBackendDown
	}
	return f.Store.ListOffers(ctx)
}

var errBackendDown = errors.New("backend unavailable")

// brokenWrites fails every mutation to exercise the admin error feedback
// paths; reads pass through.
type brokenWrites struct {
	store.Store
}

func (*brokenWrites) InsertOffer(context.Context, domain.OfferInput) error {
	return errBackendDown
}

func (*brokenWrites) UpdateOffer(context.Context, string, domain.OfferInput) error {
	return errBackendDown
}

func (*brokenWrites) InsertSettings(context.Context, domain.SettingsInput) error {
	return errBackendDown
}

func TestCreateOfferFailureShowsFlash(t *testing.T) {
	mem := store.NewMemoryStore()
	srv := newTestServerOver(t, &brokenWrites{Store: mem})
	seedCatalog(t, srv, mem)
	c := newClient(t, srv)
	c.login(t)

	rec := c.form(http.MethodPost, "/admin/offers", url.Values{
		"csrf_token": {c.csrf()},
		"name":       {"Offre 6 mois"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin?tab=offers&flash=save_error", rec.Header().Get("Location"))

	rec = c.get(rec.Header().Get("Location"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 1, doc.Find(".flash.error").Length())
	// The failed insert never reached the store.
	assert.Len(t, mustListOffers(t, mem), 1)
}

func TestSaveSettingsFailureShowsFlash(t *testing.T) {
	mem := store.NewMemoryStore()
	srv := newTestServerOver(t, &brokenWrites{Store: mem})
	seedCatalog(t, srv, mem)
	c := newClient(t, srv)
	c.login(t)

	rec := c.form(http.MethodPost, "/admin/settings", url.Values{
		"csrf_token":   {c.csrf()},
		"service_name": {"TechnSat"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?tab=settings&flash=save_error", rec.Header().Get("Location"))
}

func TestStaleIndicatorShownAfterFailedRefresh(t *testing.T) {
	mem := store.NewMemoryStore()
	fs := &failingStore{Store: mem}
	srv := newTestServerOver(t, fs)
	seedCatalog(t, srv, mem)
	c := newClient(t, srv)
	c.login(t)

	fs.fail = true
	srv.catalog.Refresh(context.Background())

	rec := c.get("/admin?tab=offers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	assert.Equal(t, 1, doc.Find(".stale").Length())
	// The cache kept serving the last good data.
	assert.Contains(t, doc.Find(".admin-table").Text(), "Abonnement 12 mois")
}

func mustListOffers(t *testing.T, mem *store.MemoryStore) []domain.Offer {
	t.Helper()
	offers, err := mem.ListOffers(context.Background())
	require.NoError(t, err)
	return offers
}
