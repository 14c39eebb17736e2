package scraper

import (
	"net"
	"net/url"
	"strings"
)

// UserAgent identifies the crawler to every site it touches.
const UserAgent = "JobScout/0.1 (+https://github.com/jobscout)"

func httpHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      UserAgent,
		"Accept-Language": "en-US,en;q=0.9",
	}
}

func hostFromBaseURL(base string) string {
	base = strings.TrimSpace(base)
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	host := u.Host
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
