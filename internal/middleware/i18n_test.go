package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func runI18N(t *testing.T, req *http.Request, lookup CountryLookup) (locale, country string) {
	t.Helper()
	handler := I18N("en", lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return locale, country
}

func TestI18NLocaleHeaderWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Locale", "zh-CN")
	req.Header.Set("Accept-Language", "en-US")

	locale, country := runI18N(t, req, nil)
	if locale != "zh" {
		t.Fatalf("locale = %q, want zh", locale)
	}
	if country != "CN" {
		t.Fatalf("country = %q, want CN", country)
	}
}

func TestI18NAcceptLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"zh-TW,zh;q=0.9,en;q=0.8", "zh"},
		{"en-US,en;q=0.9", "en"},
		{"fr-FR", "en"},
		{"", "en"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Accept-Language", tt.header)
		}
		locale, _ := runI18N(t, req, nil)
		if locale != tt.want {
			t.Fatalf("Accept-Language %q: locale = %q, want %q", tt.header, locale, tt.want)
		}
	}
}

func TestI18NCountryHintHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-IPCountry", "hk")

	locale, country := runI18N(t, req, nil)
	if country != "HK" {
		t.Fatalf("country = %q, want HK", country)
	}
	if locale != "zh" {
		t.Fatalf("locale = %q, want zh for HK", locale)
	}
}

func TestI18NGeoIPFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4321"
	lookup := func(ip string) (string, error) {
		if ip != "203.0.113.9" {
			t.Fatalf("lookup called with %q", ip)
		}
		return "TW", nil
	}

	locale, country := runI18N(t, req, lookup)
	if country != "TW" || locale != "zh" {
		t.Fatalf("got locale %q country %q, want zh TW", locale, country)
	}
}

func TestI18NNonChineseCountryDefaultsEnglish(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Country-Code", "DE")

	locale, country := runI18N(t, req, nil)
	if country != "DE" || locale != "en" {
		t.Fatalf("got locale %q country %q, want en DE", locale, country)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")

	if got := ClientIP(req); got != "198.51.100.7" {
		t.Fatalf("ClientIP = %q", got)
	}
}
