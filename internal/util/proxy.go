package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc builds the Proxy callback for an http.Transport from
// explicit settings. With no explicit proxy the standard environment
// handling applies. Hosts on the comma-separated noProxy list bypass
// the proxy, including their subdomains.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	bypass := splitHostList(noProxy)

	return func(req *http.Request) (*url.URL, error) {
		if hostMatches(req.URL.Hostname(), bypass) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

func splitHostList(s string) []string {
	var hosts []string
	for _, part := range strings.Split(s, ",") {
		if h := strings.TrimSpace(part); h != "" {
			hosts = append(hosts, strings.ToLower(h))
		}
	}
	return hosts
}

// hostMatches reports whether host equals an entry or sits under one
func hostMatches(host string, entries []string) bool {
	host = strings.ToLower(host)
	for _, e := range entries {
		if host == e || strings.HasSuffix(host, "."+e) {
			return true
		}
	}
	return false
}
