// Package i18n provides the bilingual (French/Arabic) string bundle for the
// storefront and admin panel.
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

const (
	// LocaleFR is the default storefront language.
	LocaleFR = "fr"
	// LocaleAR renders right-to-left.
	LocaleAR = "ar"

	// CookieName persists an explicit language choice across requests.
	CookieName = "technsat_lang"
)

// Bundle holds per-locale translation maps with a fallback chain.
type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported map[string]struct{}
}

// Load reads <locale>.json files from fsys for every supported locale. The
// fallback locale's file must exist; others may be missing.
func Load(fsys fs.FS, fallback string, supported []string) (*Bundle, error) {
	b := &Bundle{
		dict:      map[string]map[string]string{},
		fallback:  fallback,
		supported: map[string]struct{}{},
	}
	if len(supported) == 0 {
		supported = []string{LocaleFR, LocaleAR}
	}
	for _, l := range supported {
		b.supported[l] = struct{}{}
		raw, err := fs.ReadFile(fsys, l+".json")
		if err != nil {
			if l == fallback {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
	}
	return b, nil
}

// Supported returns the sorted list of supported locales.
func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.supported))
	for k := range b.supported {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// T returns the translation for key in lang, falling back to the default
// locale and finally the key itself.
func (b *Bundle) T(lang, key string) string {
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Dir returns the writing direction for lang ("rtl" for Arabic).
func Dir(lang string) string {
	if lang == LocaleAR {
		return "rtl"
	}
	return "ltr"
}

// ResolveRequest picks the language for a request: explicit ?lang= query,
// then the language cookie, then Accept-Language, then the fallback.
func (b *Bundle) ResolveRequest(r *http.Request) string {
	if lang := strings.ToLower(r.URL.Query().Get("lang")); b.isSupported(lang) {
		return lang
	}
	if c, err := r.Cookie(CookieName); err == nil && b.isSupported(c.Value) {
		return c.Value
	}
	return b.Resolve(r.Header.Get("Accept-Language"))
}

// Resolve chooses the best supported language from an Accept-Language
// header value.
func (b *Bundle) Resolve(acceptLang string) string {
	type langPref struct {
		base string
		q    float64
		pos  int
	}
	prefs := make([]langPref, 0, 8)
	for i, raw := range strings.Split(acceptLang, ",") {
		p := strings.TrimSpace(raw)
		if p == "" {
			continue
		}
		q := 1.0
		if sc := strings.IndexByte(p, ';'); sc != -1 {
			params := strings.TrimSpace(p[sc+1:])
			p = strings.TrimSpace(p[:sc])
			if strings.HasPrefix(params, "q=") {
				if v, err := strconv.ParseFloat(strings.TrimPrefix(params, "q="), 64); err == nil {
					q = v
				}
			}
		}
		base := p
		if dash := strings.IndexByte(p, '-'); dash != -1 {
			base = p[:dash]
		}
		prefs = append(prefs, langPref{base: strings.ToLower(base), q: q, pos: i})
	}
	sort.SliceStable(prefs, func(i, j int) bool {
		if prefs[i].q == prefs[j].q {
			return prefs[i].pos < prefs[j].pos
		}
		return prefs[i].q > prefs[j].q
	})
	for _, p := range prefs {
		if b.isSupported(p.base) {
			return p.base
		}
	}
	return b.fallback
}

func (b *Bundle) isSupported(lang string) bool {
	_, ok := b.supported[lang]
	return ok
}
