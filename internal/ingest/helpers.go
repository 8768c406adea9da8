package ingest

import (
	"net/url"
	"strings"
)

// normalizeSpace collapses multiple spaces into one and trims the string.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalizeURL lowercases the host, drops the fragment and removes common
// tracking parameters so URLs are stable dedup keys.
func CanonicalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(k, "utm_") {
			q.Del(k)
		}
	}
	for _, p := range []string{"fbclid", "gclid", "mc_cid", "mc_eid", "ref", "session"} {
		q.Del(p)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// resolveURL makes link absolute against base. Unparseable input is returned
// as-is.
func resolveURL(base, link string) string {
	if strings.HasPrefix(link, "http") {
		return link
	}
	b, err := url.Parse(base)
	if err != nil {
		return link
	}
	rel, err := url.Parse(link)
	if err != nil {
		return link
	}
	return b.ResolveReference(rel).String()
}
