package util

import (
	"net/http"
	"net/url"
	"testing"
)

func requestFor(t *testing.T, rawURL string) *http.Request {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("Expected valid URL, got %v", err)
	}
	return &http.Request{URL: u}
}

func TestNewProxyFunc_SchemeSelection(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:3128", "http://sproxy:3129", "")

	got, err := proxy(requestFor(t, "https://api.example.com/v1"))
	if err != nil || got == nil || got.Host != "sproxy:3129" {
		t.Errorf("Expected https traffic via sproxy:3129, got %v (err %v)", got, err)
	}

	got, err = proxy(requestFor(t, "http://api.example.com/v1"))
	if err != nil || got == nil || got.Host != "proxy:3128" {
		t.Errorf("Expected http traffic via proxy:3128, got %v (err %v)", got, err)
	}
}

func TestNewProxyFunc_NoProxyBypass(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:3128", "", "localhost, internal.example.com")

	for _, rawURL := range []string{
		"http://localhost:11434/api/tags",
		"http://svc.internal.example.com/health",
	} {
		got, err := proxy(requestFor(t, rawURL))
		if err != nil || got != nil {
			t.Errorf("Expected %s to bypass the proxy, got %v (err %v)", rawURL, got, err)
		}
	}

	got, err := proxy(requestFor(t, "http://external.example.org/"))
	if err != nil || got == nil {
		t.Errorf("Expected unlisted host to use the proxy, got %v (err %v)", got, err)
	}
}

func TestNewProxyFunc_HTTPProxyCoversHTTPSWhenAlone(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:3128", "", "")

	got, err := proxy(requestFor(t, "https://api.example.com/v1"))
	if err != nil || got == nil || got.Host != "proxy:3128" {
		t.Errorf("Expected https traffic to fall back to the http proxy, got %v (err %v)", got, err)
	}
}
